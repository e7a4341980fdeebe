package adaptive

import (
	"math"
	"sort"
	"testing"
)

// AssertionConfig contains thresholds for quadrature properties.
type AssertionConfig struct {
	// Relative error allowed when the answer should be exact (cubics)
	ExactRelTolerance float64

	// Rounding slack when checking that tighter tolerances never hurt
	MonotoneSlack float64

	// Minimum fitted convergence order
	MinOrder float64

	// Minimum R² for the convergence fit
	MinRSquared float64
}

// DefaultAssertionConfig returns conservative thresholds.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		ExactRelTolerance: 1e-12, // a few thousand ulps
		MonotoneSlack:     1e-14, // rounding floor near 1.0
		MinOrder:          1.0,   // error must at least fall like 1/N
		MinRSquared:       0.5,   // adaptive sweeps are staircase-shaped
	}
}

// AssertExact verifies the engine reproduces exact to rounding.
//
// Simpson's rule integrates cubics exactly, so for any polynomial of
// degree ≤ 3 the embedded estimate is pure rounding noise and the first
// refinement is accepted.
func AssertExact(t *testing.T, f Func, a, b, exact float64, cfg AssertionConfig) {
	t.Helper()

	res, err := IntegrateWithConfig(f, a, b, DefaultConfig())
	if err != nil {
		t.Fatalf("Integrate failed: %v", err)
	}

	limit := cfg.ExactRelTolerance * math.Max(1, math.Abs(exact))
	if diff := math.Abs(res.Value - exact); diff > limit {
		t.Errorf("Not exact on [%g, %g]: got %.17g, want %.17g (|Δ| = %.3g > %.3g)",
			a, b, res.Value, exact, diff, limit)
	}

	t.Logf("✓ Exact: %.17g (%d evaluations)", res.Value, res.Evaluations)
}

// AssertWithinTolerance verifies |Integrate(f) - exact| ≤ allowed.
func AssertWithinTolerance(t *testing.T, f Func, a, b, tolerance, exact, allowed float64) Result {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Tolerance = tolerance
	res, err := IntegrateWithConfig(f, a, b, cfg)
	if err != nil {
		t.Fatalf("Integrate failed: %v", err)
	}

	if diff := math.Abs(res.Value - exact); diff > allowed {
		t.Errorf("Error too large: |%.15g - %.15g| = %.3g (allowed: %.3g)",
			res.Value, exact, diff, allowed)
	} else {
		t.Logf("✓ Within %.1e: error = %.3e, %d evaluations, %d splits",
			allowed, diff, res.Evaluations, res.Splits)
	}

	return res
}

// AssertEvaluationReuse verifies no point is ever evaluated twice and that
// the call count matches 3 + 2·Refinements.
func AssertEvaluationReuse(t *testing.T, f Func, a, b float64, cfg Config) Result {
	t.Helper()

	rec := NewRecorder()
	res, err := IntegrateWithConfig(rec.Wrap(f), a, b, cfg)
	if err != nil {
		t.Fatalf("Integrate failed: %v", err)
	}

	if rec.Calls() != res.Evaluations {
		t.Errorf("Counted %d calls, result reports %d", rec.Calls(), res.Evaluations)
	}
	if want := 3 + 2*res.Refinements; res.Evaluations != want {
		t.Errorf("Evaluations = %d, want 3 + 2·%d = %d", res.Evaluations, res.Refinements, want)
	}
	if dup := rec.Duplicates(); len(dup) > 0 {
		t.Errorf("%d points evaluated more than once (first: %g)", len(dup), dup[0])
	}

	t.Logf("✓ Evaluation reuse: %d calls, %d distinct, %d refinements",
		rec.Calls(), rec.Distinct(), res.Refinements)
	return res
}

// AssertToleranceMonotone verifies a sweep's error never grows as the
// tolerance shrinks (up to cfg.MonotoneSlack).
func AssertToleranceMonotone(t *testing.T, points []SweepPoint, cfg AssertionConfig) {
	t.Helper()

	sorted := make([]SweepPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Tolerance > sorted[j].Tolerance
	})

	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		if curr.AbsError > prev.AbsError+cfg.MonotoneSlack {
			t.Errorf("Error grew when tolerance tightened: tol %.0e → %.0e, error %.3e → %.3e",
				prev.Tolerance, curr.Tolerance, prev.AbsError, curr.AbsError)
		}
		if curr.Evaluations < prev.Evaluations {
			t.Errorf("Fewer evaluations at tighter tolerance: tol %.0e → %.0e, %d → %d",
				prev.Tolerance, curr.Tolerance, prev.Evaluations, curr.Evaluations)
		}
	}

	t.Logf("✓ Tolerance monotone over %d levels", len(sorted))
}

// AssertConvergenceOrder verifies the fitted order is at least cfg.MinOrder.
func AssertConvergenceOrder(t *testing.T, points []SweepPoint, cfg AssertionConfig) ConvergenceFit {
	t.Helper()

	fit, err := FitConvergence(points)
	if err != nil {
		t.Fatalf("FitConvergence failed: %v", err)
	}

	if fit.Order < cfg.MinOrder {
		t.Errorf("Convergence order %.2f below minimum %.2f", fit.Order, cfg.MinOrder)
	}
	if fit.RSquared < cfg.MinRSquared {
		t.Errorf("Poor fit: R² = %.3f (min: %.3f)", fit.RSquared, cfg.MinRSquared)
	}

	t.Logf("✓ Convergence: E(N) ≈ %.3g · N^-%.2f (R² = %.3f)", fit.Constant, fit.Order, fit.RSquared)
	return fit
}

// AssertTerminates verifies a run on a hostile integrand stops within the
// worst-case evaluation bound and returns a finite number.
func AssertTerminates(t *testing.T, f Func, a, b float64, cfg Config) Result {
	t.Helper()

	res, err := IntegrateWithConfig(f, a, b, cfg)
	if err != nil {
		t.Fatalf("Integrate failed: %v", err)
	}

	bound := WorstCaseEvaluations(cfg.MaxDepth)
	if cfg.MaxEvaluations > 0 && cfg.MaxEvaluations < bound {
		bound = cfg.MaxEvaluations
	}
	if res.Evaluations > bound {
		t.Errorf("Evaluations %d exceed bound %d", res.Evaluations, bound)
	}
	if res.NonFinite {
		t.Errorf("Result is not finite: %v", res.Value)
	}

	t.Logf("✓ Terminated: %d evaluations (bound %d), depth-limited leaves %d, budget-limited %d",
		res.Evaluations, bound, res.DepthLimited, res.BudgetLimited)
	return res
}

// PrintSweep outputs a tolerance sweep to the test log.
func PrintSweep(t *testing.T, points []SweepPoint) {
	t.Helper()

	t.Logf("\n=== Tolerance Sweep ===")
	t.Logf("  Tolerance   Value               AbsError     Evals    Converged")
	t.Logf("  ---------   -----------------   ----------   ------   ---------")
	for _, p := range points {
		t.Logf("  %-9.0e   %.15f   %.3e   %6d   %v",
			p.Tolerance, p.Value, p.AbsError, p.Evaluations, p.Converged)
	}

	if fit, err := FitConvergence(points); err == nil {
		t.Logf("\nFit: E(N) ≈ %.3g · N^-%.2f (R² = %.3f)", fit.Constant, fit.Order, fit.RSquared)
	}
}

// PrintComparison outputs a fixed-rule table to the test log.
func PrintComparison(t *testing.T, rows []RuleComparison) {
	t.Helper()

	t.Logf("\n=== Fixed Rules ===")
	t.Logf("  %-6s %-20s %-12s %-20s %-12s", "N", "Trapezoidal", "Error", "Simpson", "Error")
	for _, r := range rows {
		t.Logf("  %-6d %.15f   %.5e  %.15f   %.5e",
			r.Panels, r.Trapezoid, r.TrapezoidErr, r.Simpson, r.SimpsonErr)
	}

	if trap, simp, err := FitRules(rows); err == nil {
		t.Logf("\nOrder: trapezoid %.2f, simpson %.2f", trap.Order, simp.Order)
	}
}
