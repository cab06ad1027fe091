package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInvoiceMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newInvoiceMetrics(registry, Config{ServiceName: "kuppel-test", Environment: "test"})

	m.ObserveTransition("draft", "issued", true)
	m.ObserveTransition("issued", "draft", false)
	m.ObserveTransition("draft", "issued", true)
	m.IncMutationBlocked("issued", "add")

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("draft", "issued", "applied")); got != 2 {
		t.Fatalf("expected 2 applied transitions, got %v", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("issued", "draft", "rejected")); got != 1 {
		t.Fatalf("expected 1 rejected transition, got %v", got)
	}
	if got := testutil.ToFloat64(m.mutationsBlocked.WithLabelValues("issued", "add")); got != 1 {
		t.Fatalf("expected 1 blocked mutation, got %v", got)
	}
}

func TestInvoiceMetricsNilSafe(t *testing.T) {
	var m *InvoiceMetrics
	m.ObserveTransition("draft", "issued", true)
	m.IncCashClosure("critical")
	m.IncEInvoiceSubmission("dataico", "failed")
}
