// Package bridge implements the Cross-Domain Bridge Adapter: one-to-many
// fan-out of envelopes from the home Authorization contract to
// foreign-domain processors, and acknowledgement ingestion in reverse. The
// adapter never interprets a payload; it only serializes opaque bytes via
// a registered Encoder and tracks ticket-to-execution mappings.
package bridge

// TTLKind discriminates whether an envelope's time-to-live is expressed in
// block height or wall-clock time. The envelope always carries an
// explicit discriminator rather than overloading a single numeric field.
type TTLKind uint8

const (
	TTLHeight TTLKind = iota
	TTLTime
)

// TTL pairs a TTLKind with its deadline value (a block height, or a Unix
// second count).
type TTL struct {
	Kind  TTLKind
	Value uint64
}

// Priority is the processor queue an envelope is routed into.
type Priority uint8

const (
	PriorityMedium Priority = iota
	PriorityHigh
)

// RetryPolicy is copied verbatim from the admitting authorization record
// into the envelope, along with TTL and priority.
type RetryPolicy struct {
	MaxRetries uint32
}

// Message is one opaque sub-message of a subroutine, paired with the
// library address and function name the processor dispatches it to. The
// encoder is responsible for the wire shape of Payload; bridge itself
// never inspects it.
type Message struct {
	LibraryAddress string
	FunctionName   string
	MessageType    string
	Payload        []byte
}

// Subroutine is an ordered sequence of messages forming one logical
// cross-domain operation, with its atomic/non-atomic execution mode.
type Subroutine struct {
	Atomic   bool
	Messages []Message
}

// Envelope is the serialized unit passed from the Authorization contract
// to a processor. It is encoder-agnostic at this layer; a concrete
// Encoder turns it into wire bytes for a specific
// execution-environment/version pair.
type Envelope struct {
	ExecutionID  uint64
	Label        string
	HomeDomain   string
	TargetDomain string
	Subroutine   Subroutine
	TTL          TTL
	Retry        RetryPolicy
	Priority     Priority
}

// OutcomeKind is the terminal state of an envelope's execution, reported
// back via ack: success, partial success, or failure.
type OutcomeKind uint8

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomePartialSuccess
	OutcomeFailure
)

// Outcome is the terminal result an ack carries back to the Authorization
// contract's callback state.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}
