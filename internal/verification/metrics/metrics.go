package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for verification requests.
type Metrics struct {
	// Decision outcomes by decision and policy
	DecisionOutcome *prometheus.CounterVec

	// Evaluate-and-record latency
	VerifyLatency prometheus.Histogram

	// Ledger write retries by event type
	LedgerRetries *prometheus.CounterVec

	Revocations prometheus.Counter

	// Replay audits by outcome: match, mismatch
	Replays *prometheus.CounterVec

	PipelinePanics prometheus.Counter
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return &Metrics{
		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assetcore_verification_decisions_total",
			Help: "Total recorded decisions by decision and policy",
		}, []string{"decision", "policy"}),

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "assetcore_verification_duration_seconds",
			Help:    "Duration of evaluation including the ledger write",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		LedgerRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assetcore_verification_ledger_retries_total",
			Help: "Ledger write retries after transient failures",
		}, []string{"event_type"}),

		Revocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assetcore_verification_revocations_total",
			Help: "Total revoked decisions",
		}),

		Replays: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assetcore_verification_replays_total",
			Help: "Replay audits by outcome",
		}, []string{"outcome"}),

		PipelinePanics: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assetcore_verification_pipeline_panics_total",
			Help: "Recovered panics in the decision pipeline",
		}),
	}
}

func (m *Metrics) IncrementOutcome(decision, policy string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(decision, policy).Inc()
	}
}

func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementLedgerRetry(eventType string) {
	if m != nil {
		m.LedgerRetries.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) IncrementRevocation() {
	if m != nil {
		m.Revocations.Inc()
	}
}

func (m *Metrics) IncrementReplay(match bool) {
	if m == nil {
		return
	}
	outcome := "match"
	if !match {
		outcome = "mismatch"
	}
	m.Replays.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementPanic() {
	if m != nil {
		m.PipelinePanics.Inc()
	}
}
