// Package crypto manages the ECDSA operator identity a domain binds to an
// EVM-style external domain: the bridge adapter's DomainBinding.ProcessorAddr
// for an EVM target is derived from this keypair rather than a bech32
// address, since EVM domains address accounts by the rightmost 20 bytes of
// a keccak256 public-key hash, not bech32 (core/types.Address's scheme).
package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PrivateKey is a domain operator's secp256k1 signing key.
type PrivateKey struct {
	*ecdsa.PrivateKey
}

// PublicKey is the corresponding public key.
type PublicKey struct {
	*ecdsa.PublicKey
}

// GeneratePrivateKey creates a new random operator key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the raw private key bytes.
func (k *PrivateKey) Bytes() []byte {
	return crypto.FromECDSA(k.PrivateKey)
}

// PubKey derives the public key.
func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{&k.PrivateKey.PublicKey}
}

// EVMAddress derives the keccak256-based EVM address this key controls,
// used as an EVM-domain processor's on-chain identity
// (bridge.DomainBinding.ProcessorAddr for a TargetDomain running the EVM
// encoder).
func (k *PublicKey) EVMAddress() common.Address {
	return crypto.PubkeyToAddress(*k.PublicKey)
}

// PrivateKeyFromBytes reconstructs a PrivateKey from its raw bytes.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}
