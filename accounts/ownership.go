package accounts

import (
	"errors"

	"valence/core/events"
	"valence/core/types"
)

// Errors surfaced by ownership transitions.
var (
	ErrNotOwner           = errors.New("accounts: sender is not the owner")
	ErrNoPendingOwner     = errors.New("accounts: no ownership transfer in progress")
	ErrNotPendingOwner    = errors.New("accounts: sender is not the proposed owner")
	ErrOwnershipRenounced = errors.New("accounts: ownership has been renounced")
)

// Ownership implements the two-step (propose/accept) or one-step (renounce)
// owner transfer shared by accounts, libraries, and the authorization
// contract. A renounced owner is terminal: once owner is the zero address
// no further ProposeOwner call can succeed.
type Ownership struct {
	owner        types.Address
	pendingOwner types.Address
	renounced    bool
}

// NewOwnership constructs an Ownership record with an initial owner.
func NewOwnership(owner types.Address) Ownership {
	return Ownership{owner: owner}
}

// Owner returns the current owner, or the zero Address if renounced.
func (o Ownership) Owner() types.Address {
	return o.owner
}

// PendingOwner returns the proposed-but-not-yet-accepted owner, if any.
func (o Ownership) PendingOwner() (types.Address, bool) {
	if o.pendingOwner.IsZero() {
		return types.Address{}, false
	}
	return o.pendingOwner, true
}

// IsRenounced reports whether ownership was permanently given up.
func (o Ownership) IsRenounced() bool {
	return o.renounced
}

// RequireOwner fails with ErrNotOwner unless sender is the current owner.
func (o Ownership) RequireOwner(sender types.Address) error {
	if o.renounced || !o.owner.Equal(sender) {
		return ErrNotOwner
	}
	return nil
}

// ProposeOwner begins a two-phase transfer. Only the current owner may
// propose; proposing overwrites any prior pending owner rather than
// requiring it be accepted or cancelled first.
func (o *Ownership) ProposeOwner(sender, proposed types.Address, subject string, emitter events.Emitter) error {
	if err := o.RequireOwner(sender); err != nil {
		return err
	}
	o.pendingOwner = proposed
	emit(emitter, events.OwnershipProposed{
		Subject:       subject,
		CurrentOwner:  o.owner.String(),
		ProposedOwner: proposed.String(),
	})
	return nil
}

// AcceptOwnership completes a two-phase transfer. The accepting sender must
// equal the previously proposed pending owner.
func (o *Ownership) AcceptOwnership(sender types.Address, subject string, emitter events.Emitter) error {
	pending, ok := o.PendingOwner()
	if !ok {
		return ErrNoPendingOwner
	}
	if !pending.Equal(sender) {
		return ErrNotPendingOwner
	}
	o.owner = pending
	o.pendingOwner = types.Address{}
	emit(emitter, events.OwnershipAccepted{Subject: subject, NewOwner: o.owner.String()})
	return nil
}

// Renounce gives up ownership unilaterally and permanently; the resulting
// None state is terminal.
func (o *Ownership) Renounce(sender types.Address, subject string, emitter events.Emitter) error {
	if err := o.RequireOwner(sender); err != nil {
		return err
	}
	former := o.owner
	o.owner = types.Address{}
	o.pendingOwner = types.Address{}
	o.renounced = true
	emit(emitter, events.OwnershipRenounced{Subject: subject, FormerOwner: former.String()})
	return nil
}

func emit(emitter events.Emitter, e events.Event) {
	if emitter == nil {
		return
	}
	emitter.Emit(e)
}
