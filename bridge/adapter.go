package bridge

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"valence/core/events"
)

// ErrDomainNotRegistered is returned when Dispatch targets a domain with no
// registered binding. OnAck reports an unknown ticket/domain pair with its
// own error instead.
var ErrDomainNotRegistered = errors.New("bridge: external domain not registered")

// Transport is the opaque outbound channel a concrete deployment binds
// (IBC relayer, CCTP attestation service, a direct RPC call to another
// domain's processor); the adapter treats it as a black box, sending only
// opaque bytes once an envelope is encoded.
type Transport interface {
	Send(externalDomain string, payload []byte) (ticket string, err error)
}

// CallbackRouter routes a resolved outcome back to the Authorization
// contract's pending-callback state.
type CallbackRouter interface {
	RouteCallback(executionID uint64, outcome Outcome)
}

// DomainBinding is one external domain's registration: which encoder
// serializes envelopes bound for it, and the address its processor
// answers at.
type DomainBinding struct {
	Encoder       EncoderKey
	ProcessorAddr string
}

type ticketRecord struct {
	externalDomain string
	executionID    uint64
}

// Adapter implements the Cross-Domain Bridge Adapter: it serializes
// envelopes via the registered encoder, hands them to the transport, and
// maps acks back to execution ids with at-most-once, idempotent delivery
// per (external_domain, execution_id).
type Adapter struct {
	mu        sync.Mutex
	encoders  *EncoderRegistry
	domains   map[string]DomainBinding
	transport Transport
	router    CallbackRouter
	emitter   events.Emitter

	ticketToExecution map[string]ticketRecord
	delivered         map[string]struct{} // key: externalDomain + "/" + executionID
}

// NewAdapter constructs an Adapter. emitter may be nil (defaults to a
// no-op emitter).
func NewAdapter(encoders *EncoderRegistry, transport Transport, router CallbackRouter, emitter events.Emitter) *Adapter {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Adapter{
		encoders:          encoders,
		domains:           make(map[string]DomainBinding),
		transport:         transport,
		router:            router,
		emitter:           emitter,
		ticketToExecution: make(map[string]ticketRecord),
		delivered:         make(map[string]struct{}),
	}
}

// RegisterDomain binds an external domain name to an encoder and
// processor address; re-registering an existing name performs an encoder
// upgrade.
func (a *Adapter) RegisterDomain(name string, binding DomainBinding) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.domains[name] = binding
}

// Dispatch serializes envelope using externalDomain's registered encoder
// and hands the result to the transport, returning a transport-local
// ticket. The returned ticket is also generated defensively by the
// adapter itself (via uuid) when the transport does not mint one, so
// every dispatch is trackable even against a bare echo transport in tests.
func (a *Adapter) Dispatch(externalDomain string, envelope Envelope) (string, error) {
	a.mu.Lock()
	binding, ok := a.domains[externalDomain]
	a.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrDomainNotRegistered, externalDomain)
	}

	encoder, err := a.encoders.Get(binding.Encoder)
	if err != nil {
		return "", err
	}
	payload, err := encoder.Encode(envelope)
	if err != nil {
		return "", fmt.Errorf("bridge: encode: %w", err)
	}

	ticket, err := a.transport.Send(externalDomain, payload)
	if err != nil {
		return "", fmt.Errorf("bridge: transport send: %w", err)
	}
	if ticket == "" {
		ticket = uuid.NewString()
	}

	a.mu.Lock()
	a.ticketToExecution[ticket] = ticketRecord{externalDomain: externalDomain, executionID: envelope.ExecutionID}
	a.mu.Unlock()

	a.emitter.Emit(events.Dispatched{ExternalDomain: externalDomain, ExecutionID: envelope.ExecutionID, Ticket: ticket})
	return ticket, nil
}

// OnAck is delivered by the transport once a foreign domain resolves an
// envelope. Duplicate acks for the same (external_domain, execution_id)
// are idempotent no-ops.
func (a *Adapter) OnAck(externalDomain, ticket string, outcome Outcome) error {
	a.mu.Lock()
	rec, ok := a.ticketToExecution[ticket]
	if !ok || rec.externalDomain != externalDomain {
		a.mu.Unlock()
		return fmt.Errorf("bridge: unknown ticket %q for domain %s", ticket, externalDomain)
	}
	key := fmt.Sprintf("%s/%d", externalDomain, rec.executionID)
	if _, already := a.delivered[key]; already {
		a.mu.Unlock()
		a.emitter.Emit(events.AckDuplicate{ExternalDomain: externalDomain, ExecutionID: rec.executionID, Ticket: ticket})
		return nil
	}
	a.delivered[key] = struct{}{}
	a.mu.Unlock()

	a.router.RouteCallback(rec.executionID, outcome)
	a.emitter.Emit(events.AckReceived{ExternalDomain: externalDomain, ExecutionID: rec.executionID, Outcome: outcomeString(outcome.Kind)})
	return nil
}

func outcomeString(kind OutcomeKind) string {
	switch kind {
	case OutcomeSuccess:
		return "success"
	case OutcomePartialSuccess:
		return "partial_success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}
