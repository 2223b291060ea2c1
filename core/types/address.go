// Package types holds the domain-agnostic primitives shared by every
// Valence component: addresses, coins, and the ValenceType data envelope.
package types

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// DomainPrefix is the human-readable bech32 prefix a domain registers its
// addresses under (e.g. "neutron", "osmo", "noble"). Unlike a chain with a
// single fixed prefix, Valence addresses carry whichever domain they were
// minted on, since one program spans many domains at once.
type DomainPrefix string

// Address is a 20-byte account/library identity scoped to a domain prefix.
// Two addresses with identical bytes but different prefixes refer to
// distinct on-chain entities and must never compare equal.
type Address struct {
	prefix DomainPrefix
	bytes  []byte
}

// NewAddress constructs an Address from raw bytes, requiring the canonical
// 20-byte width used across every supported domain.
func NewAddress(prefix DomainPrefix, b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, fmt.Errorf("types: address must be 20 bytes, got %d", len(b))
	}
	cloned := append([]byte(nil), b...)
	return Address{prefix: prefix, bytes: cloned}, nil
}

// MustNewAddress is NewAddress but panics on error; reserved for constants
// and test fixtures where the input is known-good.
func MustNewAddress(prefix DomainPrefix, b []byte) Address {
	addr, err := NewAddress(prefix, b)
	if err != nil {
		panic(err)
	}
	return addr
}

// FromEVMAddress derives an Address from a go-ethereum 20-byte address,
// used by domains whose execution environment is EVM-compatible.
func FromEVMAddress(prefix DomainPrefix, evmAddr [20]byte) Address {
	return MustNewAddress(prefix, evmAddr[:])
}

// IsZero reports whether the address carries no bytes, as an unset
// owner/pending-owner field does. A renounced owner is also the zero
// Address; IsZero alone does not tell the two apart.
func (a Address) IsZero() bool {
	return len(a.bytes) == 0
}

// Equal compares two addresses by prefix and bytes.
func (a Address) Equal(other Address) bool {
	if a.prefix != other.prefix {
		return false
	}
	if len(a.bytes) != len(other.bytes) {
		return false
	}
	for i := range a.bytes {
		if a.bytes[i] != other.bytes[i] {
			return false
		}
	}
	return true
}

// String renders the bech32 human-readable form.
func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	conv, err := bech32.ConvertBits(a.bytes, 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Bytes returns a defensive copy of the raw address bytes.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a.bytes...)
}

// Prefix returns the domain prefix the address was minted under.
func (a Address) Prefix() DomainPrefix {
	return a.prefix
}

// DecodeAddress parses a bech32-encoded address string.
func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("types: invalid bech32 address: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("types: error converting bits: %w", err)
	}
	return NewAddress(DomainPrefix(prefix), conv)
}

// ValidateEVMChecksum is a lightweight sanity check used by libraries that
// forward to an EVM-domain recipient: it confirms the string parses as a
// 20-byte hex address before a remote-transfer library hands it to a bridge
// channel, surfacing a cheap local failure instead of a round trip.
func ValidateEVMChecksum(hexAddr string) error {
	if !ethcommon.IsHexAddress(hexAddr) {
		return fmt.Errorf("types: %q is not a valid EVM address", hexAddr)
	}
	return nil
}
