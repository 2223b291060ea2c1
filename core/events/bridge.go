package events

const (
	// TypeDispatched marks an envelope handed to a transport.
	TypeDispatched = "bridge.dispatched"
	// TypeAckReceived marks an acknowledgement routed back to the
	// originating authorization contract.
	TypeAckReceived = "bridge.ack"
	// TypeAckDuplicate marks a duplicate ack being dropped idempotently.
	TypeAckDuplicate = "bridge.ack.duplicate"
)

// Dispatched records an envelope leaving for a foreign domain.
type Dispatched struct {
	ExternalDomain string
	ExecutionID    uint64
	Ticket         string
}

func (Dispatched) EventType() string { return TypeDispatched }

// AckReceived records an acknowledgement being routed to its callback state.
type AckReceived struct {
	ExternalDomain string
	ExecutionID    uint64
	Outcome        string
}

func (AckReceived) EventType() string { return TypeAckReceived }

// AckDuplicate records a replayed ack being ignored.
type AckDuplicate struct {
	ExternalDomain string
	ExecutionID    uint64
	Ticket         string
}

func (AckDuplicate) EventType() string { return TypeAckDuplicate }
