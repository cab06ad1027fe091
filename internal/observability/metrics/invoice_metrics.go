package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type InvoiceMetrics struct {
	transitions      *prometheus.CounterVec
	mutationsBlocked *prometheus.CounterVec
	issuedAmount     *prometheus.HistogramVec
	overdueSweep     *prometheus.CounterVec
	cashClosures     *prometheus.CounterVec
	einvoiceSubmits  *prometheus.CounterVec
}

var (
	invoiceMetricsOnce sync.Once
	invoiceMetrics     *InvoiceMetrics
)

func Invoicing() *InvoiceMetrics {
	return InvoicingWithConfig(Config{})
}

func InvoicingWithConfig(cfg Config) *InvoiceMetrics {
	invoiceMetricsOnce.Do(func() {
		invoiceMetrics = newInvoiceMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return invoiceMetrics
}

func ResetInvoiceMetricsForTest() {
	invoiceMetricsOnce = sync.Once{}
	invoiceMetrics = nil
}

func newInvoiceMetrics(registerer prometheus.Registerer, cfg Config) *InvoiceMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName(cfg),
		"env":     environment,
	}

	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "kuppel_invoice_transitions_total",
			Help:        "Invoice status transitions by source, target and result.",
			ConstLabels: constLabels,
		},
		[]string{"from", "to", "result"}, // result: applied | rejected
	)

	mutationsBlocked := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "kuppel_invoice_item_mutations_blocked_total",
			Help:        "Item mutations rejected because the invoice is no longer a draft.",
			ConstLabels: constLabels,
		},
		[]string{"status", "op"},
	)

	issuedAmount := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "kuppel_invoice_issued_amount",
			Help:        "Grand total of issued invoices in major currency units.",
			Buckets:     prometheus.ExponentialBuckets(1000, 4, 10),
			ConstLabels: constLabels,
		},
		[]string{"currency"},
	)

	overdueSweep := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "kuppel_invoice_overdue_sweep_total",
			Help:        "Invoices processed by the overdue sweep.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // marked | skipped | failed
	)

	cashClosures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "kuppel_cash_session_closed_total",
			Help:        "Closed cash register sessions by variance alert level.",
			ConstLabels: constLabels,
		},
		[]string{"alert"},
	)

	einvoiceSubmits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "kuppel_einvoice_submissions_total",
			Help:        "Electronic invoice submissions by provider and result.",
			ConstLabels: constLabels,
		},
		[]string{"provider", "result"},
	)

	registerer.MustRegister(
		transitions,
		mutationsBlocked,
		issuedAmount,
		overdueSweep,
		cashClosures,
		einvoiceSubmits,
	)

	return &InvoiceMetrics{
		transitions:      transitions,
		mutationsBlocked: mutationsBlocked,
		issuedAmount:     issuedAmount,
		overdueSweep:     overdueSweep,
		cashClosures:     cashClosures,
		einvoiceSubmits:  einvoiceSubmits,
	}
}

func (m *InvoiceMetrics) ObserveTransition(from, to string, applied bool) {
	if m == nil {
		return
	}
	result := "applied"
	if !applied {
		result = "rejected"
	}
	m.transitions.WithLabelValues(from, to, result).Inc()
}

func (m *InvoiceMetrics) IncMutationBlocked(status, op string) {
	if m == nil {
		return
	}
	m.mutationsBlocked.WithLabelValues(status, op).Inc()
}

func (m *InvoiceMetrics) ObserveIssued(currency string, total float64) {
	if m == nil {
		return
	}
	m.issuedAmount.WithLabelValues(currency).Observe(total)
}

func (m *InvoiceMetrics) IncOverdueSweep(result string) {
	if m == nil {
		return
	}
	m.overdueSweep.WithLabelValues(result).Inc()
}

func (m *InvoiceMetrics) IncCashClosure(alert string) {
	if m == nil {
		return
	}
	m.cashClosures.WithLabelValues(alert).Inc()
}

func (m *InvoiceMetrics) IncEInvoiceSubmission(provider, result string) {
	if m == nil {
		return
	}
	m.einvoiceSubmits.WithLabelValues(provider, result).Inc()
}
