package events

const (
	// TypeEnvelopeEnqueued marks an envelope being accepted into a
	// processor's priority queue.
	TypeEnvelopeEnqueued = "processor.enqueued"
	// TypeTickExecuted marks a successful Tick, regardless of the
	// subroutine's own outcome.
	TypeTickExecuted = "processor.tick"
	// TypeTickNoop marks a Tick call that found every queue empty.
	TypeTickNoop = "processor.tick.noop"
	// TypeEnvelopeExpired marks a TTL-expired envelope being dropped.
	TypeEnvelopeExpired = "processor.envelope.expired"
	// TypeBatchRetried marks a retryable failure being re-enqueued.
	TypeBatchRetried = "processor.batch.retried"
	// TypePaused / TypeResumed mark pause-state transitions.
	TypePaused  = "processor.paused"
	TypeResumed = "processor.resumed"
)

// EnvelopeEnqueued records an envelope entering a priority queue.
type EnvelopeEnqueued struct {
	Domain      string
	ExecutionID uint64
	Priority    string
}

func (EnvelopeEnqueued) EventType() string { return TypeEnvelopeEnqueued }

// TickExecuted records one Tick dispatching an envelope.
type TickExecuted struct {
	Domain      string
	ExecutionID uint64
	Outcome     string
}

func (TickExecuted) EventType() string { return TypeTickExecuted }

// TickNoop records a Tick call over empty queues.
type TickNoop struct {
	Domain string
}

func (TickNoop) EventType() string { return TypeTickNoop }

// EnvelopeExpired records a TTL-expired envelope being dropped.
type EnvelopeExpired struct {
	Domain      string
	ExecutionID uint64
}

func (EnvelopeExpired) EventType() string { return TypeEnvelopeExpired }

// BatchRetried records a retryable failure being re-enqueued.
type BatchRetried struct {
	Domain      string
	ExecutionID uint64
	Attempt     uint32
}

func (BatchRetried) EventType() string { return TypeBatchRetried }

// Paused records a processor entering the paused state.
type Paused struct {
	Domain string
}

func (Paused) EventType() string { return TypePaused }

// Resumed records a processor leaving the paused state.
type Resumed struct {
	Domain string
}

func (Resumed) EventType() string { return TypeResumed }
