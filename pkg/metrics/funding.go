package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FundingMetrics records checkout and reconciliation outcomes.
type FundingMetrics struct {
	checkoutStarted  *prometheus.CounterVec
	reconcileOutcome *prometheus.CounterVec
	reconcileLatency *prometheus.HistogramVec
}

// NewFundingMetrics registers the funding metrics on the provided registerer.
func NewFundingMetrics(reg prometheus.Registerer) *FundingMetrics {
	if reg == nil {
		return &FundingMetrics{}
	}
	checkoutStarted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "funding_checkout_started",
		Help: "Hosted checkout sessions created, labelled by result.",
	}, []string{"result"})
	reconcileOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "funding_reconcile_outcome",
		Help: "Checkout reconciliation outcomes.",
	}, []string{"outcome"})
	reconcileLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "funding_reconcile_duration_seconds",
		Help:    "Duration of checkout reconciliation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(checkoutStarted, reconcileOutcome, reconcileLatency)
	return &FundingMetrics{
		checkoutStarted:  checkoutStarted,
		reconcileOutcome: reconcileOutcome,
		reconcileLatency: reconcileLatency,
	}
}

// IncCheckoutStarted increments the checkout counter for the given result.
func (f *FundingMetrics) IncCheckoutStarted(result string) {
	if f == nil || f.checkoutStarted == nil {
		return
	}
	f.checkoutStarted.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncReconcileOutcome increments the reconciliation counter for the outcome.
func (f *FundingMetrics) IncReconcileOutcome(outcome string) {
	if f == nil || f.reconcileOutcome == nil {
		return
	}
	f.reconcileOutcome.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveReconcile records how long one reconciliation took.
func (f *FundingMetrics) ObserveReconcile(outcome string, duration time.Duration) {
	if f == nil || f.reconcileLatency == nil {
		return
	}
	f.reconcileLatency.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
