package events

const (
	// TypeObligationRegistered marks a successfully enqueued obligation.
	TypeObligationRegistered = "clearingqueue.registered"
	// TypeObligationErrored marks an obligation that was accepted in id
	// order but whose registration error was swallowed per-obligation,
	// recorded with an Error status rather than enqueued.
	TypeObligationErrored = "clearingqueue.errored"
	// TypeObligationSettled marks the head obligation being paid out.
	TypeObligationSettled = "clearingqueue.settled"
)

// ObligationRegistered records a new obligation entering the queue.
type ObligationRegistered struct {
	ID        uint64
	Recipient string
}

func (ObligationRegistered) EventType() string { return TypeObligationRegistered }

// ObligationErrored records a swallowed per-obligation failure.
type ObligationErrored struct {
	ID     uint64
	Reason string
}

func (ObligationErrored) EventType() string { return TypeObligationErrored }

// ObligationSettled records the head obligation being paid out.
type ObligationSettled struct {
	ID        uint64
	Recipient string
}

func (ObligationSettled) EventType() string { return TypeObligationSettled }
