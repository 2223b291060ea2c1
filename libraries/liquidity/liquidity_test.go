package liquidity

import (
	"errors"
	"math/big"
	"testing"

	"valence/core/types"
	"valence/libraries"
)

func mustAddr(t *testing.T, seed string) types.Address {
	t.Helper()
	b := make([]byte, 20)
	copy(b, seed)
	a, err := types.NewAddress("neutron", b)
	if err != nil {
		t.Fatalf("address: %v", err)
	}
	return a
}

type fakePool struct {
	denomA, denomB string
	deposited      bool
	withdrawn      bool
}

func (p *fakePool) DenomPair() (string, string, error) {
	return p.denomA, p.denomB, nil
}

func (p *fakePool) Deposit(types.Address, *big.Int, *big.Int) (*big.Int, error) {
	p.deposited = true
	return big.NewInt(100), nil
}

func (p *fakePool) Withdraw(types.Address, *big.Int) (*big.Int, *big.Int, error) {
	p.withdrawn = true
	return big.NewInt(1), big.NewInt(1), nil
}

func newTestLibrary(t *testing.T, pool PoolView) (*Library, types.Address, types.Address) {
	t.Helper()
	owner := mustAddr(t, "owner")
	processor := mustAddr(t, "processor")
	account := mustAddr(t, "account")
	lib, err := New(mustAddr(t, "lib"), owner, processor, nil, Config{Account: account, DenomA: "untrn", DenomB: "uusdc"}, pool)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return lib, owner, processor
}

func TestDepositSucceedsWhenDenomPairAligned(t *testing.T) {
	pool := &fakePool{denomA: "untrn", denomB: "uusdc"}
	lib, _, processor := newTestLibrary(t, pool)

	err := lib.ProcessFunction(processor, libraries.FunctionCall{
		Name: "deposit",
		Args: map[string]any{"amount_a": big.NewInt(10), "amount_b": big.NewInt(10)},
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !pool.deposited {
		t.Fatalf("expected pool.Deposit to be called")
	}
}

func TestDepositRejectsMismatchedDenomPair(t *testing.T) {
	pool := &fakePool{denomA: "untrn", denomB: "uatom"}
	lib, _, processor := newTestLibrary(t, pool)

	err := lib.ProcessFunction(processor, libraries.FunctionCall{
		Name: "deposit",
		Args: map[string]any{"amount_a": big.NewInt(10), "amount_b": big.NewInt(10)},
	})
	if !errors.Is(err, ErrDenomPairMismatch) {
		t.Fatalf("expected ErrDenomPairMismatch, got %v", err)
	}
	if pool.deposited {
		t.Fatalf("pool.Deposit must not be called when the denom pair mismatches")
	}
}

func TestWithdrawSucceeds(t *testing.T) {
	pool := &fakePool{denomA: "uusdc", denomB: "untrn"}
	lib, _, processor := newTestLibrary(t, pool)

	err := lib.ProcessFunction(processor, libraries.FunctionCall{
		Name: "withdraw",
		Args: map[string]any{"shares": big.NewInt(5)},
	})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !pool.withdrawn {
		t.Fatalf("expected pool.Withdraw to be called")
	}
}

func TestProcessFunctionRejectsNonProcessorSender(t *testing.T) {
	pool := &fakePool{denomA: "untrn", denomB: "uusdc"}
	lib, _, _ := newTestLibrary(t, pool)

	err := lib.ProcessFunction(mustAddr(t, "stranger"), libraries.FunctionCall{Name: "deposit"})
	if !errors.Is(err, libraries.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
