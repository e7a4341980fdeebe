package adaptive

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

// TestIntegrateConcurrent_MatchesSequential: same tree, same sums, same bits.
func TestIntegrateConcurrent_MatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name string
		f    Func
		a, b float64
		cfg  func(*Config)
	}{
		{"gaussian peak", gaussianPeak, 0, 1, func(c *Config) {}},
		{"sine tight", math.Sin, 0, math.Pi, func(c *Config) { c.Tolerance = 1e-12 }},
		{"step", stepAtThird, 0, 1, func(c *Config) {}},
		{"noise full tree", noise, 0, 1, func(c *Config) { c.MaxDepth = 10; c.Tolerance = 1e-300 }},
		{"single worker", gaussianPeak, 0, 1, func(c *Config) { c.Workers = 1 }},
		{"no spawning", gaussianPeak, 0, 1, func(c *Config) { c.SpawnDepth = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Workers = 4
			tt.cfg(&cfg)

			want, err := IntegrateWithConfig(tt.f, tt.a, tt.b, cfg)
			if err != nil {
				t.Fatalf("sequential failed: %v", err)
			}
			got, err := IntegrateConcurrent(context.Background(), tt.f, tt.a, tt.b, cfg)
			if err != nil {
				t.Fatalf("concurrent failed: %v", err)
			}

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("concurrent result differs (-sequential +concurrent):\n%s", diff)
			}

			t.Logf("✓ %s: %.15f in %d evaluations", tt.name, got.Value, got.Evaluations)
		})
	}
}

// TestIntegrateConcurrent_EvaluationReuse instruments concurrent calls.
func TestIntegrateConcurrent_EvaluationReuse(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := NewRecorder()
	cfg := DefaultConfig()
	cfg.Workers = 8

	res, err := IntegrateConcurrent(context.Background(), rec.Wrap(gaussianPeak), 0, 1, cfg)
	if err != nil {
		t.Fatalf("IntegrateConcurrent failed: %v", err)
	}

	if rec.Calls() != res.Evaluations {
		t.Errorf("Counted %d calls, result reports %d", rec.Calls(), res.Evaluations)
	}
	if dup := rec.Duplicates(); len(dup) > 0 {
		t.Errorf("%d points evaluated more than once", len(dup))
	}
}

// TestIntegrateConcurrent_EvaluationCeiling never overshoots the ceiling.
func TestIntegrateConcurrent_EvaluationCeiling(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := DefaultConfig()
	cfg.Tolerance = 1e-300
	cfg.MaxEvaluations = 5001
	cfg.Workers = 4

	res, err := IntegrateConcurrent(context.Background(), noise, 0, 1, cfg)
	if err != nil {
		t.Fatalf("IntegrateConcurrent failed: %v", err)
	}

	if res.Evaluations > cfg.MaxEvaluations {
		t.Errorf("Evaluations %d exceed ceiling %d", res.Evaluations, cfg.MaxEvaluations)
	}
	if res.BudgetLimited == 0 {
		t.Error("Expected budget-limited leaves")
	}
	if want := 3 + 2*res.Refinements; res.Evaluations != want {
		t.Errorf("Evaluations = %d, want 3 + 2·%d", res.Evaluations, res.Refinements)
	}
}

// TestIntegrateConcurrent_Cancelled returns ctx.Err() before evaluating.
func TestIntegrateConcurrent_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64
	f := func(x float64) float64 {
		calls.Add(1)
		return x
	}

	_, err := IntegrateConcurrent(ctx, f, 0, 1, DefaultConfig())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls.Load() != 0 {
		t.Errorf("Integrand called %d times after cancellation", calls.Load())
	}
}

// TestIntegrateConcurrent_CancelMidRun stops a run that would take ~2M evaluations.
func TestIntegrateConcurrent_CancelMidRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	f := func(x float64) float64 {
		if calls.Add(1) == 1000 {
			cancel()
		}
		return noise(x)
	}

	cfg := DefaultConfig()
	cfg.MaxDepth = 20
	cfg.Tolerance = 1e-300
	cfg.Workers = 4

	_, err := IntegrateConcurrent(ctx, f, 0, 1, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	if n := calls.Load(); n >= int64(WorstCaseEvaluations(20)) {
		t.Errorf("Cancellation ignored: %d evaluations", n)
	} else {
		t.Logf("✓ Cancelled after %d evaluations (worst case %d)", n, WorstCaseEvaluations(20))
	}
}

// TestIntegrateConcurrent_InvalidArguments shares validation with the sequential engine.
func TestIntegrateConcurrent_InvalidArguments(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = -1

	if _, err := IntegrateConcurrent(context.Background(), math.Sin, 0, 1, cfg); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
	if _, err := IntegrateConcurrent(context.Background(), math.Sin, 2, 1, DefaultConfig()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}
