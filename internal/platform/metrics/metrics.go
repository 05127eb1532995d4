package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	StatutesResolved  prometheus.Counter
	DueDatesComputed  prometheus.Counter
	RefusalMenusBuilt prometheus.Counter
	BodiesConfirmed   prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		StatutesResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foicore_statutes_resolved_total",
			Help: "Total number of default-statute resolutions served",
		}),
		DueDatesComputed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foicore_due_dates_computed_total",
			Help: "Total number of statutory due dates computed",
		}),
		RefusalMenusBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foicore_refusal_menus_built_total",
			Help: "Total number of refusal-reason menus assembled",
		}),
		BodiesConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foicore_public_bodies_confirmed_total",
			Help: "Total number of public bodies confirmed (first transitions only)",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foicore_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "status"}),
	}
}

// IncrementStatutesResolved increments the resolution counter by 1.
func (m *Metrics) IncrementStatutesResolved() {
	if m != nil {
		m.StatutesResolved.Inc()
	}
}

// IncrementDueDatesComputed increments the due-date counter by 1.
func (m *Metrics) IncrementDueDatesComputed() {
	if m != nil {
		m.DueDatesComputed.Inc()
	}
}

// IncrementRefusalMenusBuilt increments the menu counter by 1.
func (m *Metrics) IncrementRefusalMenusBuilt() {
	if m != nil {
		m.RefusalMenusBuilt.Inc()
	}
}

// IncrementBodiesConfirmed increments the confirmation counter by 1.
func (m *Metrics) IncrementBodiesConfirmed() {
	if m != nil {
		m.BodiesConfirmed.Inc()
	}
}
