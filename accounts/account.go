package accounts

import (
	"errors"
	"math/big"

	"valence/core/events"
	"valence/core/types"
)

// ErrNotAdminOrApprovedService is returned when a sender is neither the
// owner nor a currently approved library.
var ErrNotAdminOrApprovedService = errors.New("accounts: sender is not owner or an approved library")

// Account is the asset-custodian account kind: it holds a balance view
// backed by a BankKeeper and authorizes state-changing effects purely by
// sender identity, never by inspecting message content.
type Account struct {
	Address   types.Address
	Ownership Ownership
	Libraries LibrarySet
	Bank      BankKeeper
	emitter   events.Emitter
}

// NewAccount instantiates an asset account with an owner and an initial
// approved-library set.
func NewAccount(addr types.Address, owner types.Address, initialLibraries []types.Address, bank BankKeeper) *Account {
	return &Account{
		Address:   addr,
		Ownership: NewOwnership(owner),
		Libraries: newLibrarySet(initialLibraries),
		Bank:      bank,
		emitter:   events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter; nil resets to a no-op emitter.
func (a *Account) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	a.emitter = emitter
}

// authorizeActor enforces that a state-changing effect may only
// originate from the owner or a currently approved library.
func (a *Account) authorizeActor(sender types.Address) error {
	if a.Ownership.Owner().Equal(sender) {
		return nil
	}
	if a.Libraries.IsApproved(sender) {
		return nil
	}
	return ErrNotAdminOrApprovedService
}

// ApproveLibrary grants addr execute rights; owner only.
func (a *Account) ApproveLibrary(sender, addr types.Address) error {
	if err := a.Ownership.RequireOwner(sender); err != nil {
		return err
	}
	a.Libraries.Approve(addr)
	emit(a.emitter, events.LibraryApproved{Account: a.Address.String(), Library: addr.String()})
	return nil
}

// RemoveLibrary revokes addr's execute rights; owner only.
func (a *Account) RemoveLibrary(sender, addr types.Address) error {
	if err := a.Ownership.RequireOwner(sender); err != nil {
		return err
	}
	a.Libraries.Remove(addr)
	emit(a.emitter, events.LibraryRemoved{Account: a.Address.String(), Library: addr.String()})
	return nil
}

// ExecuteMsg dispatches opaque domain-native sub-messages as if the account
// itself were the actor. The account never interprets msgs; it only
// checks that sender is authorized before forwarding each message to the
// bank keeper. A failing sub-message aborts the remaining ones and
// propagates the domain error unchanged.
func (a *Account) ExecuteMsg(sender types.Address, msgs []Msg) error {
	if err := a.authorizeActor(sender); err != nil {
		return err
	}
	for _, msg := range msgs {
		if err := msg.ApplyTo(a.Bank, a.Address); err != nil {
			return err
		}
	}
	return nil
}

// Balance reports the account's view of a denom's balance, delegating to
// the bank keeper.
func (a *Account) Balance(denom string) *big.Int {
	if a.Bank == nil {
		return big.NewInt(0)
	}
	return a.Bank.Balance(a.Address, denom)
}

// ProposeOwner begins a two-phase ownership transfer.
func (a *Account) ProposeOwner(sender, proposed types.Address) error {
	return a.Ownership.ProposeOwner(sender, proposed, a.Address.String(), a.emitter)
}

// AcceptOwnership completes a two-phase ownership transfer.
func (a *Account) AcceptOwnership(sender types.Address) error {
	return a.Ownership.AcceptOwnership(sender, a.Address.String(), a.emitter)
}

// RenounceOwnership gives up ownership permanently.
func (a *Account) RenounceOwnership(sender types.Address) error {
	return a.Ownership.Renounce(sender, a.Address.String(), a.emitter)
}
