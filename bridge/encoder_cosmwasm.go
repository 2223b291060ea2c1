package bridge

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// CosmWasmEncoder implements Encoder using protobuf's JSON binary mapping
// without a generated message schema: the envelope is represented as a
// structpb.Struct and marshaled via protojson, which is itself a real
// protobuf wire format.
type CosmWasmEncoder struct{}

// Encode implements Encoder.
func (CosmWasmEncoder) Encode(e Envelope) ([]byte, error) {
	messages := make([]any, len(e.Subroutine.Messages))
	for i, m := range e.Subroutine.Messages {
		messages[i] = map[string]any{
			"library_address": m.LibraryAddress,
			"function_name":   m.FunctionName,
			"message_type":    m.MessageType,
			"payload_b64":     base64.StdEncoding.EncodeToString(m.Payload),
		}
	}
	fields := map[string]any{
		"execution_id":  float64(e.ExecutionID),
		"label":         e.Label,
		"home_domain":   e.HomeDomain,
		"target_domain": e.TargetDomain,
		"atomic":        e.Subroutine.Atomic,
		"messages":      messages,
		"ttl_kind":      float64(e.TTL.Kind),
		"ttl_value":     float64(e.TTL.Value),
		"max_retries":   float64(e.Retry.MaxRetries),
		"priority":      float64(e.Priority),
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("bridge: cosmwasm encode: %w", err)
	}
	return protojson.Marshal(s)
}

// Decode implements Encoder.
func (CosmWasmEncoder) Decode(b []byte) (Envelope, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(b, &s); err != nil {
		return Envelope{}, fmt.Errorf("bridge: cosmwasm decode: %w", err)
	}
	fields := s.AsMap()

	var env Envelope
	env.ExecutionID = uint64(asFloat(fields["execution_id"]))
	env.Label, _ = fields["label"].(string)
	env.HomeDomain, _ = fields["home_domain"].(string)
	env.TargetDomain, _ = fields["target_domain"].(string)
	env.Subroutine.Atomic, _ = fields["atomic"].(bool)
	env.TTL = TTL{Kind: TTLKind(asFloat(fields["ttl_kind"])), Value: uint64(asFloat(fields["ttl_value"]))}
	env.Retry = RetryPolicy{MaxRetries: uint32(asFloat(fields["max_retries"]))}
	env.Priority = Priority(asFloat(fields["priority"]))

	rawMessages, _ := fields["messages"].([]any)
	env.Subroutine.Messages = make([]Message, len(rawMessages))
	for i, rm := range rawMessages {
		m, ok := rm.(map[string]any)
		if !ok {
			continue
		}
		payload, err := base64.StdEncoding.DecodeString(stringOf(m["payload_b64"]))
		if err != nil {
			return Envelope{}, fmt.Errorf("bridge: cosmwasm decode payload: %w", err)
		}
		env.Subroutine.Messages[i] = Message{
			LibraryAddress: stringOf(m["library_address"]),
			FunctionName:   stringOf(m["function_name"]),
			MessageType:    stringOf(m["message_type"]),
			Payload:        payload,
		}
	}
	return env, nil
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
