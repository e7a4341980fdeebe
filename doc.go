// Package adaptive provides adaptive Simpson quadrature with an embedded
// error estimate and a hard recursion ceiling.
//
// # Overview
//
// Given f, [a, b] and an absolute tolerance, the engine estimates
// ∫ₐᵇ f(x) dx using as few evaluations of f as it can. It keeps splitting
// only where the integrand is hard, and it always stops: pathological
// input (jumps, noise, peaks narrower than the tolerance can resolve) runs
// into the depth ceiling and gets the best estimate available at that point.
//
// # Quick Start
//
//	v, err := adaptive.Integrate(math.Sin, 0, math.Pi, 1e-8)
//	if err != nil {
//	    log.Fatal(err) // only invalid arguments fail
//	}
//	fmt.Printf("%.12f\n", v) // 2.000000000000
//
// With diagnostics:
//
//	cfg := adaptive.DefaultConfig()
//	cfg.Tolerance = 1e-10
//	cfg.MaxEvaluations = 100000
//
//	res, err := adaptive.IntegrateWithConfig(f, 0, 1, cfg)
//	if !res.Converged() {
//	    // some leaf hit the depth or evaluation ceiling
//	}
//
// # The Algorithm
//
// Simpson's rule on [a, b] with midpoint m:
//
//	S(a, b) = (b-a)/6 · (f(a) + 4·f(m) + f(b))
//
// Each node of the recursion compares the one-panel estimate S with the
// two-panel estimate S2 = S(a, m) + S(m, b). Halving the panel shrinks
// Simpson's error by 16, so
//
//	error ≈ |S2 - S| / 15
//
// If error ≤ eps (or depth is exhausted) the node returns the Richardson
// extrapolated value S2 + (S2 - S)/15. Otherwise both halves recurse with
// eps/2 and depth-1, and the node returns their sum.
//
// Properties:
//   - Exact for polynomials of degree ≤ 3
//   - Each distinct point is evaluated once: evaluations = 3 + 2·refinements
//   - Tolerance is halved per split, never rebalanced between siblings
//   - Depth ceiling 50 by default: at most 3 + 2·(2^51 - 1) evaluations,
//     reached only by integrands that defeat the estimator everywhere
//
// # Concurrency
//
// Integrate and IntegrateWithConfig are sequential and reentrant: any
// number of goroutines may call them at once with different integrands.
// IntegrateConcurrent hands independent sibling subtrees to a bounded
// worker pool (golang.org/x/sync/errgroup) and produces the same value.
//
// # Baselines
//
// Trapezoid, Simpson and GaussLegendre are fixed-step rules with no error
// control. Sweep, CompareRules and FitConvergence tabulate and fit error
// against work, which is how the adaptive engine is compared against them.
//
// # Testing
//
// Assertion helpers check quadrature properties in callers' tests:
//
//	func TestMyIntegrand(t *testing.T) {
//	    cfg := adaptive.DefaultAssertionConfig()
//	    adaptive.AssertExact(t, cubic, -1, 2, exact, cfg)
//	    adaptive.AssertEvaluationReuse(t, myFunc, 0, 1, adaptive.DefaultConfig())
//
//	    points, _ := adaptive.Sweep(myFunc, 0, 1, exact, adaptive.DefaultSweepConfig())
//	    adaptive.AssertToleranceMonotone(t, points, cfg)
//	}
//
// # See Also
//
//   - examples/ - runnable comparisons against fixed-step rules
package adaptive
