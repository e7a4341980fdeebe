package adaptive

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports integration diagnostics to Prometheus.
//
// One Metrics value can be shared by any number of concurrent runs; the
// underlying collectors are safe for concurrent use.
//
// Example:
//
//	m := adaptive.NewMetrics(prometheus.DefaultRegisterer)
//	cfg := adaptive.DefaultConfig()
//	cfg.Metrics = m
//	res, err := adaptive.IntegrateWithConfig(f, 0, 1, cfg)
type Metrics struct {
	Integrations  prometheus.Counter
	Evaluations   prometheus.Counter
	DepthLimited  prometheus.Counter
	BudgetLimited prometheus.Counter
	NonFinite     prometheus.Counter
	PerRun        prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if registration fails (same contract as MustRegister).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Integrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adaptive",
			Name:      "integrations_total",
			Help:      "Completed integration runs.",
		}),
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adaptive",
			Name:      "evaluations_total",
			Help:      "Integrand evaluations across all runs.",
		}),
		DepthLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adaptive",
			Name:      "depth_limited_leaves_total",
			Help:      "Leaves accepted because the depth ceiling was reached.",
		}),
		BudgetLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adaptive",
			Name:      "budget_limited_leaves_total",
			Help:      "Leaves accepted because the evaluation ceiling was reached.",
		}),
		NonFinite: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adaptive",
			Name:      "nonfinite_results_total",
			Help:      "Runs whose estimate was NaN or infinite.",
		}),
		PerRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "adaptive",
			Name:      "evaluations_per_integration",
			Help:      "Integrand evaluations per run.",
			Buckets:   prometheus.ExponentialBuckets(5, 4, 10), // 5 .. ~1.3M
		}),
	}

	reg.MustRegister(
		m.Integrations,
		m.Evaluations,
		m.DepthLimited,
		m.BudgetLimited,
		m.NonFinite,
		m.PerRun,
	)
	return m
}

// observe records one finished run. Safe on a nil receiver.
func (m *Metrics) observe(res Result) {
	if m == nil {
		return
	}
	m.Integrations.Inc()
	m.Evaluations.Add(float64(res.Evaluations))
	m.DepthLimited.Add(float64(res.DepthLimited))
	m.BudgetLimited.Add(float64(res.BudgetLimited))
	if res.NonFinite {
		m.NonFinite.Inc()
	}
	m.PerRun.Observe(float64(res.Evaluations))
}
