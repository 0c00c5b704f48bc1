package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFundingMetricsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFundingMetrics(reg)

	m.IncCheckoutStarted("ok")
	m.IncCheckoutStarted("ok")
	m.IncCheckoutStarted("rejected")
	m.IncReconcileOutcome("recorded")
	m.IncReconcileOutcome("")
	m.ObserveReconcile("recorded", 120*time.Millisecond)

	if got := testutil.ToFloat64(m.checkoutStarted.WithLabelValues("ok")); got != 2 {
		t.Fatalf("expected 2 ok checkouts, got %v", got)
	}
	if got := testutil.ToFloat64(m.reconcileOutcome.WithLabelValues("recorded")); got != 1 {
		t.Fatalf("expected 1 recorded outcome, got %v", got)
	}
	if got := testutil.ToFloat64(m.reconcileOutcome.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("blank outcome should map to unknown, got %v", got)
	}
}

func TestFundingMetricsNilSafe(t *testing.T) {
	var m *FundingMetrics
	m.IncCheckoutStarted("ok")
	m.IncReconcileOutcome("recorded")
	m.ObserveReconcile("recorded", time.Second)

	empty := NewFundingMetrics(nil)
	empty.IncCheckoutStarted("ok")
}
