package adaptive

import "errors"

// Sentinel errors. Only caller mistakes are reported as errors; a result that
// missed its tolerance is still a result (see Result.Converged).
var (
	// ErrInvalidArgument is returned before any integrand evaluation when the
	// bounds, tolerance or limits cannot describe a valid problem.
	ErrInvalidArgument = errors.New("adaptive: invalid argument")

	// ErrOddPanels is returned by Simpson when the panel count is odd.
	ErrOddPanels = errors.New("adaptive: simpson rule requires an even number of panels")

	// ErrTooFewPoints is returned by FitConvergence when fewer than three
	// usable sweep points are available.
	ErrTooFewPoints = errors.New("adaptive: not enough data points")
)
