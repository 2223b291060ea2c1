package bridge

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// EVMEncoder implements Encoder using RLP, the domain-native ABI for
// EVM-compatible execution environments. rlp.Encode requires fixed-shape
// structs, so Envelope is flattened into rlpEnvelope before encoding and
// reassembled on decode.
type EVMEncoder struct{}

type rlpMessage struct {
	LibraryAddress string
	FunctionName   string
	MessageType    string
	Payload        []byte
}

type rlpEnvelope struct {
	ExecutionID     uint64
	Label           string
	HomeDomain      string
	TargetDomain    string
	Atomic          bool
	Messages        []rlpMessage
	TTLKind         uint8
	TTLValue        uint64
	RetryMaxRetries uint32
	Priority        uint8
}

// Encode implements Encoder.
func (EVMEncoder) Encode(e Envelope) ([]byte, error) {
	msgs := make([]rlpMessage, len(e.Subroutine.Messages))
	for i, m := range e.Subroutine.Messages {
		msgs[i] = rlpMessage{
			LibraryAddress: m.LibraryAddress,
			FunctionName:   m.FunctionName,
			MessageType:    m.MessageType,
			Payload:        m.Payload,
		}
	}
	wire := rlpEnvelope{
		ExecutionID:     e.ExecutionID,
		Label:           e.Label,
		HomeDomain:      e.HomeDomain,
		TargetDomain:    e.TargetDomain,
		Atomic:          e.Subroutine.Atomic,
		Messages:        msgs,
		TTLKind:         uint8(e.TTL.Kind),
		TTLValue:        e.TTL.Value,
		RetryMaxRetries: e.Retry.MaxRetries,
		Priority:        uint8(e.Priority),
	}
	return rlp.EncodeToBytes(wire)
}

// Decode implements Encoder.
func (EVMEncoder) Decode(b []byte) (Envelope, error) {
	var wire rlpEnvelope
	if err := rlp.DecodeBytes(b, &wire); err != nil {
		return Envelope{}, err
	}
	msgs := make([]Message, len(wire.Messages))
	for i, m := range wire.Messages {
		msgs[i] = Message{
			LibraryAddress: m.LibraryAddress,
			FunctionName:   m.FunctionName,
			MessageType:    m.MessageType,
			Payload:        m.Payload,
		}
	}
	return Envelope{
		ExecutionID:  wire.ExecutionID,
		Label:        wire.Label,
		HomeDomain:   wire.HomeDomain,
		TargetDomain: wire.TargetDomain,
		Subroutine:   Subroutine{Atomic: wire.Atomic, Messages: msgs},
		TTL:          TTL{Kind: TTLKind(wire.TTLKind), Value: wire.TTLValue},
		Retry:        RetryPolicy{MaxRetries: wire.RetryMaxRetries},
		Priority:     Priority(wire.Priority),
	}, nil
}
