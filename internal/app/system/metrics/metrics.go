// Package metrics holds the Prometheus collectors for donor operations and logins.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes used as the "outcome" label.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
	OutcomeLimited   = "rate_limited"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	DonorOperations *prometheus.CounterVec
	Logins          *prometheus.CounterVec
	SearchDuration  prometheus.Histogram
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DonorOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "donorhub_donor_operations_total",
			Help: "Donor registry operations by operation and outcome",
		}, []string{"op", "outcome"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "donorhub_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "donorhub_donor_search_duration_seconds",
			Help:    "Duration of donor searches",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// DonorOp counts one donor operation.
func (m *Metrics) DonorOp(op, outcome string) {
	if m == nil {
		return
	}
	m.DonorOperations.WithLabelValues(op, outcome).Inc()
}

// Login counts one login attempt.
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// ObserveSearch records a search duration. Call with time.Now() taken at the start.
func (m *Metrics) ObserveSearch(start time.Time) {
	if m == nil {
		return
	}
	m.SearchDuration.Observe(time.Since(start).Seconds())
}
