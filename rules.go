package adaptive

import (
	"fmt"

	"gonum.org/v1/gonum/integrate/quad"
)

// Fixed-step rules. They do no error control and exist as baselines for the
// adaptive engine: same integrand, same interval, a chosen number of panels.

// Trapezoid applies the composite trapezoid rule with n equal panels.
// Exact for polynomials of degree ≤ 1; error O(h²).
func Trapezoid(f Func, a, b float64, n int) (float64, error) {
	if err := validateBounds(f, a, b); err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: trapezoid needs n >= 1, got %d", ErrInvalidArgument, n)
	}

	h := (b - a) / float64(n)
	var sum float64
	for i := 1; i < n; i++ {
		sum += f(a + float64(i)*h)
	}

	// Endpoints carry weight 1/2
	return h * (0.5*f(a) + sum + 0.5*f(b)), nil
}

// Simpson applies the composite Simpson rule with n equal panels.
// n must be even. Exact for polynomials of degree ≤ 3; error O(h⁴).
func Simpson(f Func, a, b float64, n int) (float64, error) {
	if err := validateBounds(f, a, b); err != nil {
		return 0, err
	}
	if n < 2 {
		return 0, fmt.Errorf("%w: simpson needs n >= 2, got %d", ErrInvalidArgument, n)
	}
	if n%2 != 0 {
		return 0, fmt.Errorf("%w: got %d", ErrOddPanels, n)
	}

	h := (b - a) / float64(n)

	var sumOdd, sumEven float64
	for i := 1; i < n; i++ {
		x := a + float64(i)*h
		if i%2 == 0 {
			sumEven += f(x)
		} else {
			sumOdd += f(x)
		}
	}

	return h / 3.0 * (f(a) + 4.0*sumOdd + 2.0*sumEven + f(b)), nil
}

// GaussLegendre applies the n-point Gauss-Legendre rule over the whole of
// [a, b]. Exact for polynomials of degree ≤ 2n-1.
//
// Nodes and weights come from gonum's quad.Legendre.
func GaussLegendre(f Func, a, b float64, n int) (float64, error) {
	if err := validateBounds(f, a, b); err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: gauss-legendre needs n >= 1, got %d", ErrInvalidArgument, n)
	}
	if a == b {
		return 0, nil
	}
	return quad.Fixed(f, a, b, n, quad.Legendre{}, 0), nil
}
