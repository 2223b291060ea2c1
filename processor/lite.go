package processor

import (
	"valence/bridge"
	"valence/core/events"
)

// Lite is the lite processor: a stateless, atomic-only dispatcher for
// domains too gas-constrained to host a priority queue. It processes a
// single envelope atomically and reports the outcome synchronously. It
// keeps no state between calls; every Execute is a complete unit.
type Lite struct {
	Domain   string
	executor LibraryDispatcher
	router   bridge.CallbackRouter
	emitter  events.Emitter
}

// NewLite constructs a lite processor.
func NewLite(domain string, executor LibraryDispatcher, router bridge.CallbackRouter) *Lite {
	return &Lite{Domain: domain, executor: executor, router: router, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter; nil resets to a no-op emitter.
func (l *Lite) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	l.emitter = emitter
}

// Execute dispatches envelope's subroutine in-line and reports its
// outcome synchronously via the callback router. It rejects non-atomic
// subroutines outright since a lite domain has no retry/requeue facility
// to fall back on partial completion.
func (l *Lite) Execute(envelope bridge.Envelope) error {
	if !envelope.Subroutine.Atomic {
		return ErrLiteRequiresAtomic
	}

	var outcome bridge.Outcome
	var failure error
	for _, msg := range envelope.Subroutine.Messages {
		if err := l.executor.Dispatch(msg); err != nil {
			failure = err
			break
		}
	}
	if failure == nil {
		outcome = bridge.Outcome{Kind: bridge.OutcomeSuccess}
	} else {
		outcome = bridge.Outcome{Kind: bridge.OutcomeFailure, Reason: failure.Error()}
	}

	l.emitter.Emit(events.TickExecuted{Domain: l.Domain, ExecutionID: envelope.ExecutionID, Outcome: outcomeString(outcome.Kind)})
	l.router.RouteCallback(envelope.ExecutionID, outcome)
	return nil
}
