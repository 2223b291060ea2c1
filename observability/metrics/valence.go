package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"valence/core/events"
)

// ValenceMetrics bundles the Prometheus series exported by a running
// domain's processor, authorization contract, clearing queue, and bridge
// adapter.
type ValenceMetrics struct {
	queueDepth          *prometheus.GaugeVec
	ticksTotal          *prometheus.CounterVec
	sendMsgsTotal       *prometheus.CounterVec
	obligationsTotal    *prometheus.CounterVec
	bridgeDispatchTotal *prometheus.CounterVec
}

var (
	valenceOnce     sync.Once
	valenceRegistry *ValenceMetrics
)

// Valence returns the process-wide Valence metrics registry, registering
// its series with the default Prometheus registerer on first use.
func Valence() *ValenceMetrics {
	valenceOnce.Do(func() {
		valenceRegistry = &ValenceMetrics{
			queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "processor_queue_depth",
				Help: "Current number of envelopes pending in a processor priority queue.",
			}, []string{"domain", "priority"}),
			ticksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "processor_ticks_total",
				Help: "Count of processor Tick calls by outcome.",
			}, []string{"domain", "outcome"}),
			sendMsgsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "authorization_sendmsgs_total",
				Help: "Count of SendMsgs calls by label and admission outcome.",
			}, []string{"label", "outcome"}),
			obligationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "clearingqueue_obligations_total",
				Help: "Count of clearing queue obligation registrations by outcome.",
			}, []string{"outcome"}),
			bridgeDispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "bridge_dispatch_total",
				Help: "Count of bridge adapter dispatches by target domain and outcome.",
			}, []string{"domain", "outcome"}),
		}
		prometheus.MustRegister(
			valenceRegistry.queueDepth,
			valenceRegistry.ticksTotal,
			valenceRegistry.sendMsgsTotal,
			valenceRegistry.obligationsTotal,
			valenceRegistry.bridgeDispatchTotal,
		)
	})
	return valenceRegistry
}

// SetQueueDepth records a processor priority queue's current depth.
func (m *ValenceMetrics) SetQueueDepth(domain, priority string, depth int) {
	m.queueDepth.WithLabelValues(domain, priority).Set(float64(depth))
}

// EventRecorder adapts ValenceMetrics to events.Emitter, incrementing
// counters as the corresponding domain events are emitted. It is meant to
// be composed with other emitters via a fan-out, not used standalone,
// since most components accept exactly one events.Emitter.
type EventRecorder struct {
	Domain  string
	Metrics *ValenceMetrics
}

// Emit implements events.Emitter.
func (r EventRecorder) Emit(e events.Event) {
	switch ev := e.(type) {
	case events.TickExecuted:
		r.Metrics.ticksTotal.WithLabelValues(r.Domain, ev.Outcome).Inc()
	case events.TickNoop:
		r.Metrics.ticksTotal.WithLabelValues(r.Domain, "noop").Inc()
	case events.EnvelopeExpired:
		r.Metrics.ticksTotal.WithLabelValues(r.Domain, "ttl_expired").Inc()
	case events.SendMsgsAdmitted:
		r.Metrics.sendMsgsTotal.WithLabelValues(ev.Label, "admitted").Inc()
	case events.SendMsgsRejected:
		r.Metrics.sendMsgsTotal.WithLabelValues(ev.Label, "rejected").Inc()
	case events.ObligationRegistered:
		r.Metrics.obligationsTotal.WithLabelValues("registered").Inc()
	case events.ObligationErrored:
		r.Metrics.obligationsTotal.WithLabelValues("errored").Inc()
	case events.ObligationSettled:
		r.Metrics.obligationsTotal.WithLabelValues("settled").Inc()
	case events.Dispatched:
		r.Metrics.bridgeDispatchTotal.WithLabelValues(ev.ExternalDomain, "dispatched").Inc()
	case events.AckReceived:
		r.Metrics.bridgeDispatchTotal.WithLabelValues(r.Domain, "ack").Inc()
	case events.AckDuplicate:
		r.Metrics.bridgeDispatchTotal.WithLabelValues(r.Domain, "ack_duplicate").Inc()
	}
}
