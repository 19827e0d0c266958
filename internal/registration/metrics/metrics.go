package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the registration workflow.
type Metrics struct {
	SubmissionsTotal   prometheus.Counter
	DecisionsTotal     *prometheus.CounterVec
	ReconcileApplied   prometheus.Counter
	CertificateRenders prometheus.Counter
	SubmitDuration     prometheus.Histogram
}

// New creates and registers all workflow metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SubmissionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "birthregistry_submissions_total",
			Help: "Total parent registrations submitted",
		}),
		DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "birthregistry_decisions_total",
			Help: "Admin decisions by outcome",
		}, []string{"outcome"}),
		ReconcileApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "birthregistry_reconcile_applied_total",
			Help: "Reconciliations that applied a newer admin action",
		}),
		CertificateRenders: promauto.NewCounter(prometheus.CounterOpts{
			Name: "birthregistry_certificate_renders_total",
			Help: "Certificates rendered",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "birthregistry_submit_duration_seconds",
			Help:    "Submit operation latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncSubmissions() {
	if m == nil {
		return
	}
	m.SubmissionsTotal.Inc()
}

func (m *Metrics) IncDecision(outcome string) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncReconcileApplied() {
	if m == nil {
		return
	}
	m.ReconcileApplied.Inc()
}

func (m *Metrics) IncCertificateRenders() {
	if m == nil {
		return
	}
	m.CertificateRenders.Inc()
}

func (m *Metrics) ObserveSubmitDuration(seconds float64) {
	if m == nil {
		return
	}
	m.SubmitDuration.Observe(seconds)
}
