package accounts

import (
	"sort"

	"valence/core/types"
)

// LibrarySet is the approved-library allowlist shared by asset and data
// accounts: insertion order is irrelevant and uniqueness is enforced.
type LibrarySet struct {
	approved map[string]types.Address
}

func newLibrarySet(initial []types.Address) LibrarySet {
	set := LibrarySet{approved: make(map[string]types.Address, len(initial))}
	for _, lib := range initial {
		set.approved[lib.String()] = lib
	}
	return set
}

// IsApproved reports whether addr currently holds execute rights.
func (s LibrarySet) IsApproved(addr types.Address) bool {
	_, ok := s.approved[addr.String()]
	return ok
}

// Approve adds addr to the set; re-approving an already-approved library is
// a harmless no-op (uniqueness is enforced by the map key).
func (s *LibrarySet) Approve(addr types.Address) {
	if s.approved == nil {
		s.approved = make(map[string]types.Address)
	}
	s.approved[addr.String()] = addr
}

// Remove revokes addr's execute rights; removing an absent library is a
// no-op.
func (s *LibrarySet) Remove(addr types.Address) {
	delete(s.approved, addr.String())
}

// List returns the approved libraries sorted for deterministic output.
func (s LibrarySet) List() []types.Address {
	out := make([]types.Address, 0, len(s.approved))
	for _, addr := range s.approved {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
