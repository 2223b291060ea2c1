package events

const (
	// TypeLibraryApproved is emitted when an account owner approves a
	// library to act on the account's behalf.
	TypeLibraryApproved = "account.library_approved"
	// TypeLibraryRemoved is emitted when an approved library is revoked.
	TypeLibraryRemoved = "account.library_removed"
	// TypeOwnershipProposed marks the first phase of a two-step transfer.
	TypeOwnershipProposed = "ownership.proposed"
	// TypeOwnershipAccepted marks the second phase of a two-step transfer.
	TypeOwnershipAccepted = "ownership.accepted"
	// TypeOwnershipRenounced marks a one-phase renounce.
	TypeOwnershipRenounced = "ownership.renounced"
)

// LibraryApproved records a library gaining execute rights over an account.
type LibraryApproved struct {
	Account string
	Library string
}

func (LibraryApproved) EventType() string { return TypeLibraryApproved }

// Attributes renders the event as a flat string map, the shape an
// RPC/indexer surface expects from every emitted event.
func (e LibraryApproved) Attributes() map[string]string {
	return map[string]string{"account": e.Account, "library": e.Library}
}

// LibraryRemoved records a library losing execute rights over an account.
type LibraryRemoved struct {
	Account string
	Library string
}

func (LibraryRemoved) EventType() string { return TypeLibraryRemoved }

func (e LibraryRemoved) Attributes() map[string]string {
	return map[string]string{"account": e.Account, "library": e.Library}
}

// OwnershipProposed records a pending-owner transfer proposal.
type OwnershipProposed struct {
	Subject       string
	CurrentOwner  string
	ProposedOwner string
}

func (OwnershipProposed) EventType() string { return TypeOwnershipProposed }

func (e OwnershipProposed) Attributes() map[string]string {
	return map[string]string{"subject": e.Subject, "currentOwner": e.CurrentOwner, "proposedOwner": e.ProposedOwner}
}

// OwnershipAccepted records a pending owner accepting the transfer.
type OwnershipAccepted struct {
	Subject  string
	NewOwner string
}

func (OwnershipAccepted) EventType() string { return TypeOwnershipAccepted }

func (e OwnershipAccepted) Attributes() map[string]string {
	return map[string]string{"subject": e.Subject, "newOwner": e.NewOwner}
}

// OwnershipRenounced records an owner giving up ownership entirely.
type OwnershipRenounced struct {
	Subject     string
	FormerOwner string
}

func (OwnershipRenounced) EventType() string { return TypeOwnershipRenounced }

func (e OwnershipRenounced) Attributes() map[string]string {
	return map[string]string{"subject": e.Subject, "formerOwner": e.FormerOwner}
}
