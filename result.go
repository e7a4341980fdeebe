package adaptive

import (
	"log/slog"
	"math"
	"sync/atomic"
)

// Result describes one integration run.
//
// Only Value is part of the core contract; the rest is bookkeeping the
// engine does for free while it recurses.
type Result struct {
	Value         float64 // Integral estimate
	Evaluations   int     // Integrand calls, always 3 + 2·Refinements (0 for a zero-width interval)
	Refinements   int     // Refine calls that evaluated their two quarter points
	Splits        int     // Subdivisions performed
	ErrorEstimate float64 // Σ |s2 - s| / 15 over accepted leaves; budget-limited leaves add nothing
	MaxLevel      int     // Deepest tree level reached (root = 0)
	DepthLimited  int     // Leaves accepted only because depth ran out
	BudgetLimited int     // Leaves accepted only because MaxEvaluations ran out
	NonFinite     bool    // Value is NaN or ±Inf
}

// Converged reports whether every leaf met its share of the tolerance.
func (r Result) Converged() bool {
	return r.DepthLimited == 0 && r.BudgetLimited == 0
}

// LogValue implements slog.LogValuer.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("value", r.Value),
		slog.Int("evaluations", r.Evaluations),
		slog.Int("refinements", r.Refinements),
		slog.Int("splits", r.Splits),
		slog.Float64("error_estimate", r.ErrorEstimate),
		slog.Int("max_level", r.MaxLevel),
		slog.Int("depth_limited", r.DepthLimited),
		slog.Int("budget_limited", r.BudgetLimited),
		slog.Bool("non_finite", r.NonFinite),
	)
}

// counters is shared by every node of one run. Atomic so the concurrent
// engine can use the same refinement code.
type counters struct {
	evaluations   atomic.Int64
	refinements   atomic.Int64
	splits        atomic.Int64
	depthLimited  atomic.Int64
	budgetLimited atomic.Int64
	maxLevel      atomic.Int64
}

// reserve claims n evaluations against limit (0 = unlimited).
func (c *counters) reserve(n, limit int64) bool {
	if limit == 0 {
		c.evaluations.Add(n)
		return true
	}
	if c.evaluations.Add(n) > limit {
		c.evaluations.Add(-n)
		return false
	}
	return true
}

func (c *counters) observeLevel(level int) {
	l := int64(level)
	for {
		cur := c.maxLevel.Load()
		if l <= cur || c.maxLevel.CompareAndSwap(cur, l) {
			return
		}
	}
}

func (c *counters) result(est estimate) Result {
	value := est.value
	return Result{
		Value:         value,
		Evaluations:   int(c.evaluations.Load()),
		Refinements:   int(c.refinements.Load()),
		Splits:        int(c.splits.Load()),
		ErrorEstimate: est.err,
		MaxLevel:      int(c.maxLevel.Load()),
		DepthLimited:  int(c.depthLimited.Load()),
		BudgetLimited: int(c.budgetLimited.Load()),
		NonFinite:     math.IsNaN(value) || math.IsInf(value, 0),
	}
}
