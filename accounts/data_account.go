package accounts

import (
	"sync"

	"valence/core/events"
	"valence/core/types"
)

// DataAccount is the typed-data-blob custodian account kind: a
// key→ValenceType mapping instead of an asset balance, authorized
// identically to Account.
type DataAccount struct {
	Address   types.Address
	Ownership Ownership
	Libraries LibrarySet
	emitter   events.Emitter

	mu   sync.RWMutex
	blob map[string]types.ValenceType
}

// NewDataAccount instantiates a data account, optionally seeding initial
// blobs.
func NewDataAccount(addr, owner types.Address, initialLibraries []types.Address, seeds map[string]types.ValenceType) *DataAccount {
	blob := make(map[string]types.ValenceType, len(seeds))
	for k, v := range seeds {
		blob[k] = v
	}
	return &DataAccount{
		Address:   addr,
		Ownership: NewOwnership(owner),
		Libraries: newLibrarySet(initialLibraries),
		emitter:   events.NoopEmitter{},
		blob:      blob,
	}
}

// SetEmitter configures the event emitter; nil resets to a no-op emitter.
func (d *DataAccount) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	d.emitter = emitter
}

func (d *DataAccount) authorizeActor(sender types.Address) error {
	if d.Ownership.Owner().Equal(sender) {
		return nil
	}
	if d.Libraries.IsApproved(sender) {
		return nil
	}
	return ErrNotAdminOrApprovedService
}

// ApproveLibrary grants addr execute rights; owner only.
func (d *DataAccount) ApproveLibrary(sender, addr types.Address) error {
	if err := d.Ownership.RequireOwner(sender); err != nil {
		return err
	}
	d.Libraries.Approve(addr)
	emit(d.emitter, events.LibraryApproved{Account: d.Address.String(), Library: addr.String()})
	return nil
}

// RemoveLibrary revokes addr's execute rights; owner only.
func (d *DataAccount) RemoveLibrary(sender, addr types.Address) error {
	if err := d.Ownership.RequireOwner(sender); err != nil {
		return err
	}
	d.Libraries.Remove(addr)
	emit(d.emitter, events.LibraryRemoved{Account: d.Address.String(), Library: addr.String()})
	return nil
}

// StoreValenceType overwrites the value at key, sender must be owner or an
// approved library. Prior values are silently overwritten.
func (d *DataAccount) StoreValenceType(sender types.Address, key string, value types.ValenceType) error {
	if err := d.authorizeActor(sender); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blob[key] = value
	return nil
}

// Query returns the ValenceType stored at key, if any. Queries are
// unauthenticated; only state-changing effects are gated.
func (d *DataAccount) Query(key string) (types.ValenceType, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.blob[key]
	return v, ok
}

// ProposeOwner begins a two-phase ownership transfer.
func (d *DataAccount) ProposeOwner(sender, proposed types.Address) error {
	return d.Ownership.ProposeOwner(sender, proposed, d.Address.String(), d.emitter)
}

// AcceptOwnership completes a two-phase ownership transfer.
func (d *DataAccount) AcceptOwnership(sender types.Address) error {
	return d.Ownership.AcceptOwnership(sender, d.Address.String(), d.emitter)
}

// RenounceOwnership gives up ownership permanently.
func (d *DataAccount) RenounceOwnership(sender types.Address) error {
	return d.Ownership.Renounce(sender, d.Address.String(), d.emitter)
}
