package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ledger module.
type Metrics struct {
	EventsAppended  *prometheus.CounterVec
	AppendFailures  *prometheus.CounterVec
	AppendLatency   prometheus.Histogram
	PublishFailures prometheus.Counter
	ChainChecks     *prometheus.CounterVec
}

// New creates the ledger metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		EventsAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assetcore_ledger_events_appended_total",
			Help: "Ledger events appended by event type",
		}, []string{"type"}),

		AppendFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assetcore_ledger_append_failures_total",
			Help: "Failed ledger appends by reason",
		}, []string{"reason"}), // reason: "invalid", "conflict", "unavailable", "internal"

		AppendLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "assetcore_ledger_append_duration_seconds",
			Help:    "Duration of ledger appends including hashing",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),

		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assetcore_ledger_publish_failures_total",
			Help: "Ledger events that could not be published to the event stream",
		}),

		ChainChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assetcore_ledger_chain_checks_total",
			Help: "Chain verifications by outcome",
		}, []string{"outcome"}), // outcome: "valid", "truncated", "broken"
	}
}

func (m *Metrics) IncrementAppended(eventType string) {
	if m != nil {
		m.EventsAppended.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) IncrementAppendFailure(reason string) {
	if m != nil {
		m.AppendFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ObserveAppendLatency(d time.Duration) {
	if m != nil {
		m.AppendLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementPublishFailure() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}

func (m *Metrics) IncrementChainCheck(outcome string) {
	if m != nil {
		m.ChainChecks.WithLabelValues(outcome).Inc()
	}
}
