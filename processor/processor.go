// Package processor implements the full and lite processor variants
// (component design §4.4): the full processor maintains two FIFO priority
// queues and advances one envelope per Tick; the lite processor is a
// stateless single-envelope, atomic-only variant for domains that cannot
// host a queue (e.g. an EVM deployment with a tight gas-per-tx ceiling).
package processor

import (
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"valence/bridge"
	"valence/core/events"
	"valence/core/types"
)

// Errors surfaced by processor operations.
var (
	ErrPaused             = errors.New("processor: paused")
	ErrUnauthorized       = errors.New("processor: sender is not the configured admin")
	ErrRateLimited        = errors.New("processor: tick rate limit exceeded")
	ErrExecutionNotFound  = errors.New("processor: execution id not found in any queue")
	ErrLiteRequiresAtomic = errors.New("processor: lite processor only accepts atomic subroutines")
)

// LibraryDispatcher is the processor's handle to the home domain's
// concrete library instances: it resolves msg.LibraryAddress and invokes
// msg.FunctionName with msg.Payload, surfacing the library's error
// unchanged.
type LibraryDispatcher interface {
	Dispatch(msg bridge.Message) error
}

// Clock supplies the height/time an envelope's TTL is checked against.
type Clock struct {
	Height uint64
	Time   int64 // unix seconds
}

type queuedExecution struct {
	envelope      bridge.Envelope
	attempt       uint32
	nextStepIndex int
}

func (q queuedExecution) ttlExpired(clock Clock) bool {
	switch q.envelope.TTL.Kind {
	case bridge.TTLHeight:
		return clock.Height > q.envelope.TTL.Value
	case bridge.TTLTime:
		return uint64(clock.Time) > q.envelope.TTL.Value
	default:
		return false
	}
}

// Full is the full processor: two FIFO priority queues, drained High
// before Medium, with pause/resume and remove-by-id under admin control.
type Full struct {
	Domain string
	admin  types.Address

	executor LibraryDispatcher
	router   bridge.CallbackRouter
	emitter  events.Emitter
	limiter  *rate.Limiter

	high   []queuedExecution
	medium []queuedExecution
	paused bool
}

// NewFull constructs a full processor. admin is the only sender permitted
// to call the processor's sender-checked operations (RemoveByID, Pause,
// Resume); in practice this is the home domain's Authorization contract
// address. Enqueue takes no sender and is not checked against admin.
// tickRate/burst throttle
// Tick itself, protecting a gas-constrained domain from a flooded
// strategist.
func NewFull(domain string, admin types.Address, executor LibraryDispatcher, router bridge.CallbackRouter, tickRate rate.Limit, burst int) *Full {
	return &Full{
		Domain:   domain,
		admin:    admin,
		executor: executor,
		router:   router,
		emitter:  events.NoopEmitter{},
		limiter:  rate.NewLimiter(tickRate, burst),
	}
}

// SetEmitter configures the event emitter; nil resets to a no-op emitter.
func (p *Full) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	p.emitter = emitter
}

func (p *Full) requireAdmin(sender types.Address) error {
	if !sender.Equal(p.admin) {
		return ErrUnauthorized
	}
	return nil
}

// Enqueue accepts an envelope into the priority queue named by its
// Priority field. It takes no sender argument and does not check the
// caller; the Authorization contract's SendMsgs calls it for locally
// targeted envelopes.
func (p *Full) Enqueue(envelope bridge.Envelope) error {
	q := queuedExecution{envelope: envelope}
	switch envelope.Priority {
	case bridge.PriorityHigh:
		p.high = append(p.high, q)
	default:
		p.medium = append(p.medium, q)
	}
	p.emitter.Emit(events.EnvelopeEnqueued{Domain: p.Domain, ExecutionID: envelope.ExecutionID, Priority: priorityString(envelope.Priority)})
	return nil
}

// RemoveByID removes a still-pending envelope from whichever queue holds
// it. Admin only.
func (p *Full) RemoveByID(sender types.Address, executionID uint64) error {
	if err := p.requireAdmin(sender); err != nil {
		return err
	}
	if removed, ok := removeByID(p.high, executionID); ok {
		p.high = removed
		return nil
	}
	if removed, ok := removeByID(p.medium, executionID); ok {
		p.medium = removed
		return nil
	}
	return ErrExecutionNotFound
}

func removeByID(queue []queuedExecution, executionID uint64) ([]queuedExecution, bool) {
	for i, q := range queue {
		if q.envelope.ExecutionID == executionID {
			return append(append([]queuedExecution{}, queue[:i]...), queue[i+1:]...), true
		}
	}
	return queue, false
}

// Pause stops Tick from executing further envelopes until Resume is
// called.
func (p *Full) Pause(sender types.Address) error {
	if err := p.requireAdmin(sender); err != nil {
		return err
	}
	p.paused = true
	p.emitter.Emit(events.Paused{Domain: p.Domain})
	return nil
}

// Resume clears the paused state.
func (p *Full) Resume(sender types.Address) error {
	if err := p.requireAdmin(sender); err != nil {
		return err
	}
	p.paused = false
	p.emitter.Emit(events.Resumed{Domain: p.Domain})
	return nil
}

// Paused reports whether the processor currently rejects Tick.
func (p *Full) Paused() bool {
	return p.paused
}

// QueueDepth reports the current length of the named priority's queue.
func (p *Full) QueueDepth(priority bridge.Priority) int {
	if priority == bridge.PriorityHigh {
		return len(p.high)
	}
	return len(p.medium)
}

// Tick selects and executes the head of the highest-priority non-empty
// queue. Permissionless: anyone can call it. Once a batch is selected it
// runs to completion regardless of arrivals during its own execution,
// since Go gives Tick exclusive control of the queues for its duration.
func (p *Full) Tick(clock Clock) error {
	if p.paused {
		return ErrPaused
	}
	if !p.limiter.Allow() {
		return ErrRateLimited
	}

	queue := &p.high
	if len(*queue) == 0 {
		queue = &p.medium
	}
	if len(*queue) == 0 {
		p.emitter.Emit(events.TickNoop{Domain: p.Domain})
		return nil
	}

	head := (*queue)[0]
	*queue = (*queue)[1:]

	if head.ttlExpired(clock) {
		p.emitter.Emit(events.EnvelopeExpired{Domain: p.Domain, ExecutionID: head.envelope.ExecutionID})
		p.router.RouteCallback(head.envelope.ExecutionID, bridge.Outcome{Kind: bridge.OutcomeFailure, Reason: "TtlExpired"})
		return nil
	}

	outcome, requeue := p.execute(head)
	if requeue != nil {
		if head.envelope.Priority == bridge.PriorityHigh {
			p.high = append(p.high, *requeue)
		} else {
			p.medium = append(p.medium, *requeue)
		}
		p.emitter.Emit(events.BatchRetried{Domain: p.Domain, ExecutionID: head.envelope.ExecutionID, Attempt: requeue.attempt})
		return nil
	}

	p.emitter.Emit(events.TickExecuted{Domain: p.Domain, ExecutionID: head.envelope.ExecutionID, Outcome: outcomeString(outcome.Kind)})
	p.router.RouteCallback(head.envelope.ExecutionID, outcome)
	return nil
}

// execute runs one queued envelope's subroutine and returns either a
// terminal outcome, or a requeue candidate when the retry policy has not
// yet been exhausted.
func (p *Full) execute(q queuedExecution) (bridge.Outcome, *queuedExecution) {
	if q.envelope.Subroutine.Atomic {
		return p.executeAtomic(q)
	}
	return p.executeNonAtomic(q)
}

// executeAtomic dispatches every sub-message in order; any failure fails
// the whole batch. This relies on the host domain's own atomic-transaction
// guarantee: the processor itself does not attempt compensating writes.
func (p *Full) executeAtomic(q queuedExecution) (bridge.Outcome, *queuedExecution) {
	var failure error
	for _, msg := range q.envelope.Subroutine.Messages {
		if err := p.executor.Dispatch(msg); err != nil {
			failure = err
			break
		}
	}
	if failure == nil {
		return bridge.Outcome{Kind: bridge.OutcomeSuccess}, nil
	}
	if q.attempt < q.envelope.Retry.MaxRetries {
		next := q
		next.attempt++
		return bridge.Outcome{}, &next
	}
	return bridge.Outcome{Kind: bridge.OutcomeFailure, Reason: failure.Error()}, nil
}

// executeNonAtomic dispatches sub-messages one at a time, retrying the
// failing step per its retry policy; once retries are exhausted it halts
// the batch and reports a partial completion.
func (p *Full) executeNonAtomic(q queuedExecution) (bridge.Outcome, *queuedExecution) {
	messages := q.envelope.Subroutine.Messages
	for i := q.nextStepIndex; i < len(messages); i++ {
		if err := p.executor.Dispatch(messages[i]); err != nil {
			if q.attempt < q.envelope.Retry.MaxRetries {
				next := q
				next.attempt++
				next.nextStepIndex = i
				return bridge.Outcome{}, &next
			}
			if i == 0 {
				return bridge.Outcome{Kind: bridge.OutcomeFailure, Reason: err.Error()}, nil
			}
			return bridge.Outcome{Kind: bridge.OutcomePartialSuccess, Reason: fmt.Sprintf("step %d: %s", i, err)}, nil
		}
		q.attempt = 0
	}
	return bridge.Outcome{Kind: bridge.OutcomeSuccess}, nil
}

func priorityString(p bridge.Priority) string {
	if p == bridge.PriorityHigh {
		return "high"
	}
	return "medium"
}

func outcomeString(kind bridge.OutcomeKind) string {
	switch kind {
	case bridge.OutcomeSuccess:
		return "success"
	case bridge.OutcomePartialSuccess:
		return "partial_success"
	case bridge.OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}
