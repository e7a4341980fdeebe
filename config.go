package adaptive

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
)

// DefaultMaxDepth is the recursion ceiling used by Integrate.
//
// Smooth integrands converge long before it; only pathological input
// (jumps, noise, unresolvable peaks) ever reaches it, and then the
// ceiling caps the work instead of recursing forever.
const DefaultMaxDepth = 50

// Config controls an integration run.
type Config struct {
	Tolerance      float64 // Absolute error budget for the whole interval (> 0)
	MaxDepth       int     // Recursion ceiling (>= 0)
	MaxEvaluations int     // Integrand call ceiling (0 = unlimited, otherwise >= 3)

	// Concurrent engine only.
	Workers    int // Goroutine limit (0 = GOMAXPROCS)
	SpawnDepth int // Tree levels below this one are offered to workers

	Logger  *slog.Logger // nil = discard
	Metrics *Metrics     // nil = no metrics
}

// DefaultConfig returns the reference settings: tolerance 1e-8, depth 50,
// no evaluation ceiling.
func DefaultConfig() Config {
	return Config{
		Tolerance:      1e-8,
		MaxDepth:       DefaultMaxDepth,
		MaxEvaluations: 0,
		Workers:        0,
		SpawnDepth:     8,
	}
}

// Validate reports the first field that cannot be used.
func (c Config) Validate() error {
	if math.IsNaN(c.Tolerance) || c.Tolerance <= 0 || math.IsInf(c.Tolerance, 0) {
		return fmt.Errorf("%w: tolerance must be positive and finite, got %v", ErrInvalidArgument, c.Tolerance)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth must be >= 0, got %d", ErrInvalidArgument, c.MaxDepth)
	}
	if c.MaxEvaluations < 0 || (c.MaxEvaluations > 0 && c.MaxEvaluations < 3) {
		return fmt.Errorf("%w: max evaluations must be 0 or >= 3, got %d", ErrInvalidArgument, c.MaxEvaluations)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidArgument, c.Workers)
	}
	if c.SpawnDepth < 0 {
		return fmt.Errorf("%w: spawn depth must be >= 0, got %d", ErrInvalidArgument, c.SpawnDepth)
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discardLogger
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// validateBounds checks the interval shared by the engine and the fixed rules.
func validateBounds(f Func, a, b float64) error {
	if f == nil {
		return fmt.Errorf("%w: nil integrand", ErrInvalidArgument)
	}
	if math.IsNaN(a) || math.IsInf(a, 0) || math.IsNaN(b) || math.IsInf(b, 0) {
		return fmt.Errorf("%w: bounds must be finite, got [%v, %v]", ErrInvalidArgument, a, b)
	}
	if a > b {
		return fmt.Errorf("%w: lower bound %v exceeds upper bound %v", ErrInvalidArgument, a, b)
	}
	return nil
}
