// Package rootfind provides derivative-free scalar root finders for
// bracketed sign changes, used by the event detection machinery.
package rootfind

import (
	"fmt"
	"math"
)

// Func is a scalar function of one variable.
type Func func(x float64) float64

// Solver locates a root of f inside [a, b], where f(a) and f(b) have
// opposite signs (a value of exactly zero counts as either sign). The
// bracket may be given in either order. Failure to converge within
// maxIter iterations is an error.
type Solver interface {
	Solve(f Func, a, b float64, maxIter int) (float64, error)
}

// ErrNoBracket reports that the interval endpoints do not straddle zero.
type ErrNoBracket struct {
	A, B   float64
	FA, FB float64
}

func (e ErrNoBracket) Error() string {
	return fmt.Sprintf("no bracketing: f(%g)=%g, f(%g)=%g", e.A, e.FA, e.B, e.FB)
}

// ErrMaxIterations reports a convergence failure.
type ErrMaxIterations struct {
	Iterations int
	Best       float64
}

func (e ErrMaxIterations) Error() string {
	return fmt.Sprintf("root finder did not converge after %d iterations (best estimate %g)", e.Iterations, e.Best)
}

// Pegasus is the Pegasus variant of regula falsi: after two consecutive
// retentions of the same endpoint its function value is scaled down, which
// guarantees superlinear convergence where plain regula falsi can stall.
type Pegasus struct {
	Absolute float64
	Relative float64
}

func NewPegasus(relative, absolute float64) *Pegasus {
	return &Pegasus{Absolute: absolute, Relative: relative}
}

func (p *Pegasus) tol(a, b float64) float64 {
	return math.Max(p.Absolute, p.Relative*math.Max(math.Abs(a), math.Abs(b)))
}

func (p *Pegasus) Solve(f Func, a, b float64, maxIter int) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if fa*fb > 0 {
		return 0, ErrNoBracket{A: a, B: b, FA: fa, FB: fb}
	}

	for i := 0; i < maxIter; i++ {
		c := b - fb*(b-a)/(fb-fa)
		fc := f(c)
		if fc == 0 || math.Abs(b-a) <= p.tol(a, b) {
			return c, nil
		}
		if fc*fb < 0 {
			// root is between c and b: shift the bracket
			a, fa = b, fb
		} else {
			// same side as b: keep a but damp its value (Pegasus scaling)
			fa = fa * fb / (fb + fc)
		}
		b, fb = c, fc
	}
	return 0, ErrMaxIterations{Iterations: maxIter, Best: b}
}

// Bisection is the plain interval-halving fallback. Slower than Pegasus
// but unconditionally robust.
type Bisection struct {
	Absolute float64
	Relative float64
}

func NewBisection(relative, absolute float64) *Bisection {
	return &Bisection{Absolute: absolute, Relative: relative}
}

func (s *Bisection) Solve(f Func, a, b float64, maxIter int) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if fa*fb > 0 {
		return 0, ErrNoBracket{A: a, B: b, FA: fa, FB: fb}
	}

	for i := 0; i < maxIter; i++ {
		c := 0.5 * (a + b)
		tol := math.Max(s.Absolute, s.Relative*math.Max(math.Abs(a), math.Abs(b)))
		if math.Abs(b-a) <= tol {
			return c, nil
		}
		fc := f(c)
		if fc == 0 {
			return c, nil
		}
		if fa*fc < 0 {
			b, fb = c, fc
		} else {
			a, fa = c, fc
		}
	}
	return 0, ErrMaxIterations{Iterations: maxIter, Best: 0.5 * (a + b)}
}
