package adaptive

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Convergence analysis: how fast does the error fall as work is added?
//
// For a rule of order p the error after N evaluations behaves like
//
//	E(N) ≈ C · N^(-p)
//
// Taking logs makes it linear:
//
//	log E = log C - p · log N
//
// so a least-squares line through (log N, log E) recovers p and C.
// Composite trapezoid is p = 2, composite Simpson p = 4.

// SweepPoint is one tolerance level of a sweep.
type SweepPoint struct {
	Tolerance   float64 // Requested absolute tolerance
	Value       float64 // Integral estimate
	AbsError    float64 // |Value - exact|
	Evaluations int     // Integrand calls used
	Converged   bool    // No leaf hit the depth or evaluation ceiling
}

// SweepConfig controls a tolerance sweep.
type SweepConfig struct {
	Tolerances     []float64 // Tolerances to run, any order
	MaxDepth       int       // Recursion ceiling for every run
	MaxEvaluations int       // Evaluation ceiling for every run (0 = unlimited)
}

// DefaultSweepConfig returns decades from 1e-2 down to 1e-10.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Tolerances:     []float64{1e-2, 1e-3, 1e-4, 1e-5, 1e-6, 1e-7, 1e-8, 1e-9, 1e-10},
		MaxDepth:       DefaultMaxDepth,
		MaxEvaluations: 0,
	}
}

// ConvergenceFit is the fitted power law E(N) ≈ Constant · N^(-Order).
type ConvergenceFit struct {
	Order    float64 // p: error falls like N^-p
	Constant float64 // C
	RSquared float64 // Goodness of fit in log space (1.0 = perfect)
}

// RuleComparison is one row of a fixed-rule table.
type RuleComparison struct {
	Panels       int     // Number of equal panels
	Evaluations  int     // Integrand calls per rule (n+1)
	Trapezoid    float64 // Composite trapezoid estimate
	TrapezoidErr float64 // |Trapezoid - exact|
	Simpson      float64 // Composite Simpson estimate
	SimpsonErr   float64 // |Simpson - exact|
}

// Sweep integrates f over [a, b] once per tolerance and measures the true
// error against exact.
func Sweep(f Func, a, b, exact float64, cfg SweepConfig) ([]SweepPoint, error) {
	points := make([]SweepPoint, 0, len(cfg.Tolerances))

	for _, tol := range cfg.Tolerances {
		run := DefaultConfig()
		run.Tolerance = tol
		run.MaxDepth = cfg.MaxDepth
		run.MaxEvaluations = cfg.MaxEvaluations

		res, err := IntegrateWithConfig(f, a, b, run)
		if err != nil {
			return nil, fmt.Errorf("sweep at tolerance %g: %w", tol, err)
		}

		points = append(points, SweepPoint{
			Tolerance:   tol,
			Value:       res.Value,
			AbsError:    math.Abs(res.Value - exact),
			Evaluations: res.Evaluations,
			Converged:   res.Converged(),
		})
	}

	return points, nil
}

// CompareRules tabulates composite trapezoid against composite Simpson for
// each panel count. Panel counts must be even.
func CompareRules(f Func, a, b, exact float64, panels []int) ([]RuleComparison, error) {
	rows := make([]RuleComparison, 0, len(panels))

	for _, n := range panels {
		trap, err := Trapezoid(f, a, b, n)
		if err != nil {
			return nil, fmt.Errorf("trapezoid at n=%d: %w", n, err)
		}
		simp, err := Simpson(f, a, b, n)
		if err != nil {
			return nil, fmt.Errorf("simpson at n=%d: %w", n, err)
		}

		rows = append(rows, RuleComparison{
			Panels:       n,
			Evaluations:  n + 1,
			Trapezoid:    trap,
			TrapezoidErr: math.Abs(trap - exact),
			Simpson:      simp,
			SimpsonErr:   math.Abs(simp - exact),
		})
	}

	return rows, nil
}

// FitConvergence fits E(N) = C · N^(-p) to sweep points by linear least
// squares in log-log space (gonum stat.LinearRegression).
//
// Points with zero error (exact to the last bit) carry no slope information
// and are skipped, as are points with no evaluations.
func FitConvergence(points []SweepPoint) (ConvergenceFit, error) {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))

	for _, p := range points {
		if p.AbsError <= 0 || p.Evaluations <= 0 || math.IsNaN(p.AbsError) || math.IsInf(p.AbsError, 0) {
			continue
		}
		xs = append(xs, math.Log(float64(p.Evaluations)))
		ys = append(ys, math.Log(p.AbsError))
	}

	if len(xs) < 3 {
		return ConvergenceFit{}, fmt.Errorf("%w: need at least 3 points with nonzero error, got %d", ErrTooFewPoints, len(xs))
	}
	if floats.Max(xs) == floats.Min(xs) {
		return ConvergenceFit{}, fmt.Errorf("%w: all points use the same number of evaluations", ErrTooFewPoints)
	}

	// log E = c0 + c1 · log N
	c0, c1 := stat.LinearRegression(xs, ys, nil, false)

	rSquared := 1.0
	if floats.Max(ys) != floats.Min(ys) {
		rSquared = stat.RSquared(xs, ys, nil, c0, c1)
	}

	return ConvergenceFit{
		Order:    -c1,
		Constant: math.Exp(c0),
		RSquared: rSquared,
	}, nil
}

// PredictError estimates the error after the given number of evaluations.
func (c ConvergenceFit) PredictError(evaluations int) float64 {
	if evaluations <= 0 {
		return math.Inf(1)
	}
	return c.Constant * math.Pow(float64(evaluations), -c.Order)
}

// EvaluationsFor estimates the evaluations needed to reach the target error.
func (c ConvergenceFit) EvaluationsFor(target float64) float64 {
	if target <= 0 || c.Order <= 0 {
		return math.Inf(1)
	}
	return math.Pow(c.Constant/target, 1/c.Order)
}

// FitRules fits the trapezoid and Simpson columns of a CompareRules table
// separately, using n+1 evaluations per row.
func FitRules(rows []RuleComparison) (trapezoid, simpson ConvergenceFit, err error) {
	trapPoints := make([]SweepPoint, 0, len(rows))
	simpPoints := make([]SweepPoint, 0, len(rows))
	for _, r := range rows {
		trapPoints = append(trapPoints, SweepPoint{Value: r.Trapezoid, AbsError: r.TrapezoidErr, Evaluations: r.Evaluations})
		simpPoints = append(simpPoints, SweepPoint{Value: r.Simpson, AbsError: r.SimpsonErr, Evaluations: r.Evaluations})
	}

	trapezoid, err = FitConvergence(trapPoints)
	if err != nil {
		return ConvergenceFit{}, ConvergenceFit{}, fmt.Errorf("trapezoid: %w", err)
	}
	simpson, err = FitConvergence(simpPoints)
	if err != nil {
		return ConvergenceFit{}, ConvergenceFit{}, fmt.Errorf("simpson: %w", err)
	}
	return trapezoid, simpson, nil
}
