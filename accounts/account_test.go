package accounts

import (
	"errors"
	"math/big"
	"testing"

	"valence/core/types"
)

func addr(t *testing.T, prefix, seed string) types.Address {
	t.Helper()
	b := make([]byte, 20)
	copy(b, seed)
	a, err := types.NewAddress(types.DomainPrefix(prefix), b)
	if err != nil {
		t.Fatalf("new address: %v", err)
	}
	return a
}

// TestAccountLibraryApprovedTransfer exercises an approved library moves
// funds out of the account it was approved on.
func TestAccountLibraryApprovedTransfer(t *testing.T) {
	owner := addr(t, "neutron", "owner")
	lib := addr(t, "neutron", "lib1")
	recipient := addr(t, "neutron", "recipient")
	acctAddr := addr(t, "neutron", "account")

	bank := NewMemBank()
	if err := bank.Mint(acctAddr, types.Coins{types.NewCoin("untrn", big.NewInt(1_000_000))}); err != nil {
		t.Fatalf("mint: %v", err)
	}

	account := NewAccount(acctAddr, owner, []types.Address{lib}, bank)

	err := account.ExecuteMsg(lib, []Msg{SendMsg{To: recipient, Coins: types.Coins{types.NewCoin("untrn", big.NewInt(1_000_000))}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := bank.Balance(acctAddr, "untrn"); got.Sign() != 0 {
		t.Fatalf("expected account balance to be drained, got %s", got)
	}
	if got := bank.Balance(recipient, "untrn"); got.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("expected recipient to receive 1_000_000, got %s", got)
	}
}

// TestAccountNonApprovedSenderRejected exercises the rule that an
// unapproved sender can never produce a state-changing effect.
func TestAccountNonApprovedSenderRejected(t *testing.T) {
	owner := addr(t, "neutron", "owner")
	intruder := addr(t, "neutron", "intruder")
	acctAddr := addr(t, "neutron", "account")
	bank := NewMemBank()
	account := NewAccount(acctAddr, owner, nil, bank)

	err := account.ExecuteMsg(intruder, []Msg{SendMsg{To: owner, Coins: types.Coins{types.NewCoin("untrn", big.NewInt(1))}}})
	if !errors.Is(err, ErrNotAdminOrApprovedService) {
		t.Fatalf("expected ErrNotAdminOrApprovedService, got %v", err)
	}
}

// TestApproveLibraryRequiresOwner exercises a non-owner cannot approve a
// library and the approved-library set is left unchanged.
func TestApproveLibraryRequiresOwner(t *testing.T) {
	owner := addr(t, "neutron", "owner")
	intruder := addr(t, "neutron", "intruder")
	lib := addr(t, "neutron", "lib")
	acctAddr := addr(t, "neutron", "account")
	account := NewAccount(acctAddr, owner, nil, NewMemBank())

	err := account.ApproveLibrary(intruder, lib)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if account.Libraries.IsApproved(lib) {
		t.Fatalf("library must not be approved after rejected call")
	}
}

// TestTwoPhaseOwnershipTransfer exercises the two-phase propose/accept ownership handoff.
func TestTwoPhaseOwnershipTransfer(t *testing.T) {
	owner := addr(t, "neutron", "owner")
	newOwner := addr(t, "neutron", "new-owner")
	intruder := addr(t, "neutron", "intruder")
	acctAddr := addr(t, "neutron", "account")
	account := NewAccount(acctAddr, owner, nil, NewMemBank())

	if err := account.ProposeOwner(owner, newOwner); err != nil {
		t.Fatalf("propose: %v", err)
	}

	if err := account.AcceptOwnership(intruder); err == nil {
		t.Fatalf("expected acceptance by a third party to fail")
	}

	if err := account.AcceptOwnership(newOwner); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if !account.Ownership.Owner().Equal(newOwner) {
		t.Fatalf("expected owner to be %s, got %s", newOwner, account.Ownership.Owner())
	}
	if _, ok := account.Ownership.PendingOwner(); ok {
		t.Fatalf("expected no pending owner after acceptance")
	}
}

func TestRenounceOwnershipIsTerminal(t *testing.T) {
	owner := addr(t, "neutron", "owner")
	acctAddr := addr(t, "neutron", "account")
	account := NewAccount(acctAddr, owner, nil, NewMemBank())

	if err := account.RenounceOwnership(owner); err != nil {
		t.Fatalf("renounce: %v", err)
	}
	if err := account.ProposeOwner(owner, owner); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected renounced ownership to reject further proposals, got %v", err)
	}
}
