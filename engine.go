package adaptive

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
)

// Func is the integrand: any real-valued function of one real variable.
// It should be free of side effects; the engine may call it many times and
// IntegrateConcurrent calls it from several goroutines.
type Func func(x float64) float64

// intervalTask is one node of the recursion tree.
//
// fa, fb and fm were evaluated by the parent (or by the entry call) and are
// never recomputed. s is the parent's one-panel Simpson estimate for [a, b].
// Sibling budgets sum to the parent's eps.
type intervalTask struct {
	a, b       float64
	fa, fb, fm float64
	s          float64
	eps        float64
	depth      int // remaining splits allowed
	level      int // distance from the root
}

// estimate is what a subtree contributes: its integral and the summed
// error estimate of its accepted leaves.
type estimate struct {
	value float64
	err   float64
}

// Integrate approximates ∫ₐᵇ f(x) dx to within tolerance using adaptive
// Simpson quadrature with a depth ceiling of DefaultMaxDepth.
//
// The only error is ErrInvalidArgument, returned before f is called. A run
// that hits the depth ceiling still returns its best estimate; use
// IntegrateWithConfig to find out whether that happened.
//
// Example:
//
//	v, err := adaptive.Integrate(math.Sin, 0, math.Pi, 1e-8)
//	// v ≈ 2.0
func Integrate(f Func, a, b, tolerance float64) (float64, error) {
	cfg := DefaultConfig()
	cfg.Tolerance = tolerance
	res, err := IntegrateWithConfig(f, a, b, cfg)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// MustIntegrate is like Integrate but panics on invalid input.
// Use when the bounds and tolerance are constants.
func MustIntegrate(f Func, a, b, tolerance float64) float64 {
	v, err := Integrate(f, a, b, tolerance)
	if err != nil {
		panic(fmt.Sprintf("adaptive: integrate failed: %v", err))
	}
	return v
}

// IntegrateWithConfig runs the sequential engine and returns the estimate
// together with its diagnostics.
func IntegrateWithConfig(f Func, a, b float64, cfg Config) (Result, error) {
	return run(context.Background(), f, a, b, cfg, false)
}

// IntegrateConcurrent runs the same algorithm, handing independent sibling
// subtrees near the root to a bounded pool of goroutines.
//
// Siblings share nothing (disjoint intervals, separate budgets) and every
// parent still adds left + right in that order, so without an evaluation
// ceiling the result is bit-identical to IntegrateWithConfig. With a
// ceiling, which branches run out first depends on scheduling.
//
// f must be safe for concurrent use. Cancelling ctx stops refinement at the
// next node and returns ctx.Err().
func IntegrateConcurrent(ctx context.Context, f Func, a, b float64, cfg Config) (Result, error) {
	return run(ctx, f, a, b, cfg, true)
}

func run(ctx context.Context, f Func, a, b float64, cfg Config, concurrent bool) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := validateBounds(f, a, b); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	log := cfg.logger()

	if a == b {
		res := Result{}
		cfg.Metrics.observe(res)
		log.Debug("zero-width interval", "a", a)
		return res, nil
	}

	c := &counters{}
	c.evaluations.Add(3)

	m := 0.5 * (a + b)
	fa := f(a)
	fb := f(b)
	fm := f(m)
	s := (b - a) / 6.0 * (fa + 4.0*fm + fb)

	r := &refiner{
		f:     f,
		limit: int64(cfg.MaxEvaluations),
		c:     c,
		done:  ctx.Done(),
	}

	root := intervalTask{
		a: a, b: b,
		fa: fa, fb: fb, fm: fm,
		s:     s,
		eps:   cfg.Tolerance,
		depth: cfg.MaxDepth,
	}

	var est estimate
	if concurrent {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.workers())
		r.group = g
		r.ctx = gctx
		r.done = gctx.Done()
		r.spawnDepth = cfg.SpawnDepth
		est = r.refine(root)
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
	} else {
		est = r.refine(root)
	}

	res := c.result(est)
	cfg.Metrics.observe(res)

	if res.NonFinite {
		log.Warn("non-finite integral estimate", "a", a, "b", b, "result", res)
	} else {
		log.Debug("integration complete",
			slog.Float64("a", a),
			slog.Float64("b", b),
			slog.Float64("tolerance", cfg.Tolerance),
			slog.Any("result", res),
		)
	}

	return res, nil
}

// refiner carries the per-run state shared by every node.
type refiner struct {
	f     Func
	limit int64 // MaxEvaluations, 0 = unlimited
	c     *counters
	done  <-chan struct{}

	// Set only for the concurrent engine.
	ctx        context.Context
	group      *errgroup.Group
	spawnDepth int
}

// refine is the recursive core. Two integrand calls per node:
//
//	s_left  = h/12 · (fa + 4·f(lm) + fm)
//	s_right = h/12 · (fm + 4·f(rm) + fb)
//	error   = |s_left + s_right - s| / 15
//
// Simpson's error shrinks 16x per halving, so s2 - s is about 15x the
// error of s2. Accepted leaves return s2 + (s2 - s)/15.
func (r *refiner) refine(t intervalTask) estimate {
	select {
	case <-r.done:
		return estimate{value: t.s}
	default:
	}

	// Out of budget: no second estimate, so no error estimate either.
	if !r.c.reserve(2, r.limit) {
		r.c.budgetLimited.Add(1)
		return estimate{value: t.s}
	}
	r.c.refinements.Add(1)
	r.c.observeLevel(t.level)

	m := 0.5 * (t.a + t.b)
	h := t.b - t.a
	lm := 0.5 * (t.a + m)
	rm := 0.5 * (m + t.b)

	flm := r.f(lm)
	frm := r.f(rm)

	sLeft := (h * 0.5) / 6.0 * (t.fa + 4.0*flm + t.fm)
	sRight := (h * 0.5) / 6.0 * (t.fm + 4.0*frm + t.fb)
	s2 := sLeft + sRight

	errEst := math.Abs(s2-t.s) / 15.0

	if errEst <= t.eps || t.depth == 0 {
		// NaN fails the comparison, so a poisoned leaf counts as limited.
		if !(errEst <= t.eps) {
			r.c.depthLimited.Add(1)
		}
		return estimate{
			value: s2 + (s2-t.s)/15.0,
			err:   errEst,
		}
	}

	r.c.splits.Add(1)
	half := t.eps * 0.5

	left := intervalTask{
		a: t.a, b: m,
		fa: t.fa, fb: t.fm, fm: flm,
		s:     sLeft,
		eps:   half,
		depth: t.depth - 1,
		level: t.level + 1,
	}
	right := intervalTask{
		a: m, b: t.b,
		fa: t.fm, fb: t.fb, fm: frm,
		s:     sRight,
		eps:   half,
		depth: t.depth - 1,
		level: t.level + 1,
	}

	l, rr := r.children(t.level, left, right)
	return estimate{
		value: l.value + rr.value,
		err:   l.err + rr.err,
	}
}

// children refines both halves, offering the left one to the worker pool
// when running concurrently and a slot is free. Otherwise it runs inline.
func (r *refiner) children(level int, left, right intervalTask) (estimate, estimate) {
	if r.group == nil || level >= r.spawnDepth {
		return r.refine(left), r.refine(right)
	}

	var l estimate
	finished := make(chan struct{})
	spawned := r.group.TryGo(func() error {
		defer close(finished)
		l = r.refine(left)
		return r.ctx.Err()
	})
	if !spawned {
		return r.refine(left), r.refine(right)
	}

	rr := r.refine(right)
	<-finished
	return l, rr
}
