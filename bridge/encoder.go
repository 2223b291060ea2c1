package bridge

import (
	"errors"
	"fmt"
)

// ErrEncoderNotRegistered is returned when dispatch targets a domain whose
// execution-environment/version binding has no registered encoder.
var ErrEncoderNotRegistered = errors.New("bridge: no encoder registered for execution environment")

// Encoder serializes and deserializes an Envelope for one execution
// environment, using the domain's registered encoder. Concrete
// implementations bind to a specific on-chain ABI: EVM domains use RLP,
// CosmWasm domains use protobuf/JSON.
type Encoder interface {
	Encode(Envelope) ([]byte, error)
	Decode([]byte) (Envelope, error)
}

// EncoderKey identifies one execution-environment/version pair; the
// registry below maps each key to its encoder.
type EncoderKey struct {
	ExecutionEnvironment string
	Version              string
}

// EncoderRegistry is the broker-mediated encoder selection table: domains
// are registered with a specific encoder binding and may be upgraded by
// re-registering the same key with a new Encoder.
type EncoderRegistry struct {
	encoders map[EncoderKey]Encoder
}

// NewEncoderRegistry constructs an empty registry.
func NewEncoderRegistry() *EncoderRegistry {
	return &EncoderRegistry{encoders: make(map[EncoderKey]Encoder)}
}

// Register binds key to encoder, replacing any prior binding (an upgrade).
func (r *EncoderRegistry) Register(key EncoderKey, encoder Encoder) {
	r.encoders[key] = encoder
}

// Get looks up the encoder bound to key.
func (r *EncoderRegistry) Get(key EncoderKey) (Encoder, error) {
	enc, ok := r.encoders[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrEncoderNotRegistered, key.ExecutionEnvironment, key.Version)
	}
	return enc, nil
}
