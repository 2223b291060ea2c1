package lending

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
	collateral, borrow string
	calls              []string
}

func (p *fakePool) DenomPair() (string, string, error) {
	return p.collateral, p.borrow, nil
}

func (p *fakePool) Supply(types.Address, *big.Int) error {
	p.calls = append(p.calls, "supply")
	return nil
}

func (p *fakePool) Borrow(types.Address, *big.Int) error {
	p.calls = append(p.calls, "borrow")
	return nil
}

func (p *fakePool) Repay(types.Address, *big.Int) error {
	p.calls = append(p.calls, "repay")
	return nil
}

func (p *fakePool) Withdraw(types.Address, *big.Int) error {
	p.calls = append(p.calls, "withdraw")
	return nil
}

func newTestLibrary(t *testing.T, pool PoolView) (*Library, types.Address) {
	t.Helper()
	owner := mustAddr(t, "owner")
	processor := mustAddr(t, "processor")
	account := mustAddr(t, "account")
	lib, err := New(mustAddr(t, "lib"), owner, processor, nil, Config{Account: account, CollateralDenom: "untrn", BorrowDenom: "uusdc"}, pool)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return lib, processor
}

func TestSupplyAndBorrow(t *testing.T) {
	pool := &fakePool{collateral: "untrn", borrow: "uusdc"}
	lib, processor := newTestLibrary(t, pool)

	if err := lib.ProcessFunction(processor, libraries.FunctionCall{Name: "supply", Args: map[string]any{"amount": big.NewInt(100)}}); err != nil {
		t.Fatalf("supply: %v", err)
	}
	if err := lib.ProcessFunction(processor, libraries.FunctionCall{Name: "borrow", Args: map[string]any{"amount": big.NewInt(50)}}); err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if len(pool.calls) != 2 || pool.calls[0] != "supply" || pool.calls[1] != "borrow" {
		t.Fatalf("unexpected call sequence: %v", pool.calls)
	}
}

func TestDenomPairMismatchRejectsAllFunctions(t *testing.T) {
	pool := &fakePool{collateral: "uatom", borrow: "uusdc"}
	lib, processor := newTestLibrary(t, pool)

	err := lib.ProcessFunction(processor, libraries.FunctionCall{Name: "supply", Args: map[string]any{"amount": big.NewInt(1)}})
	if !errors.Is(err, ErrDenomPairMismatch) {
		t.Fatalf("expected ErrDenomPairMismatch, got %v", err)
	}
	if len(pool.calls) != 0 {
		t.Fatalf("pool must not be called when the denom pair mismatches")
	}
}

func TestRepayAndWithdraw(t *testing.T) {
	pool := &fakePool{collateral: "untrn", borrow: "uusdc"}
	lib, processor := newTestLibrary(t, pool)

	if err := lib.ProcessFunction(processor, libraries.FunctionCall{Name: "repay", Args: map[string]any{"amount": big.NewInt(10)}}); err != nil {
		t.Fatalf("repay: %v", err)
	}
	if err := lib.ProcessFunction(processor, libraries.FunctionCall{Name: "withdraw", Args: map[string]any{"amount": big.NewInt(10)}}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
}

func TestMissingAmountArgument(t *testing.T) {
	pool := &fakePool{collateral: "untrn", borrow: "uusdc"}
	lib, processor := newTestLibrary(t, pool)

	err := lib.ProcessFunction(processor, libraries.FunctionCall{Name: "supply", Args: map[string]any{}})
	if err == nil {
		t.Fatalf("expected error for missing amount argument")
	}
}

func TestProcessFunctionRejectsNonProcessorSender(t *testing.T) {
	pool := &fakePool{collateral: "untrn", borrow: "uusdc"}
	lib, _ := newTestLibrary(t, pool)

	err := lib.ProcessFunction(mustAddr(t, "stranger"), libraries.FunctionCall{Name: "supply"})
	if !errors.Is(err, libraries.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
