package rk

import (
	"math"

	"github.com/san-kum/odeint/internal/ode"
)

// Default control parameters for the step size feedback loop.
const (
	DefaultSafety       = 0.9
	DefaultMinReduction = 0.2
	DefaultMaxGrowth    = 10.0
)

// Controller turns local error estimates into accept/reject decisions and
// new step sizes. MinStep and MaxStep are magnitudes, positive even for
// backward integration.
type Controller struct {
	MinStep      float64
	MaxStep      float64
	Tol          ode.Tolerances
	Safety       float64
	MinReduction float64
	MaxGrowth    float64
	exp          float64
}

func NewController(minStep, maxStep float64, order int, tol ode.Tolerances) *Controller {
	return &Controller{
		MinStep:      minStep,
		MaxStep:      maxStep,
		Tol:          tol,
		Safety:       DefaultSafety,
		MinReduction: DefaultMinReduction,
		MaxGrowth:    DefaultMaxGrowth,
		exp:          -1.0 / float64(order),
	}
}

// ErrorNorm is the componentwise weighted RMS of the error vector: each
// component is divided by atol_i + rtol_i*max(|y0_i|, |y1_i|). A step is
// acceptable iff the result is <= 1.
func (c *Controller) ErrorNorm(st *Stepper, h float64, yDotK [][]float64, y0, y1 []float64) float64 {
	sum := 0.0
	for j := range y0 {
		r := st.ErrorComponent(h, yDotK, j) / c.Tol.Scale(j, y0[j], y1[j])
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(y0)))
}

// StepFactor is the resize factor derived from an error norm, clamped to
// [MinReduction, MaxGrowth]. Used both after acceptance and rejection.
func (c *Controller) StepFactor(errNorm float64) float64 {
	if errNorm == 0 {
		return c.MaxGrowth
	}
	return math.Min(c.MaxGrowth, math.Max(c.MinReduction, c.Safety*math.Pow(errNorm, c.exp)))
}

// FilterStep clamps a proposed signed step to the configured bounds. When
// the magnitude falls below MinStep the step is forced to MinStep if
// acceptSmall (last step toward the target time), otherwise integration
// has stalled.
func (c *Controller) FilterStep(h float64, t float64, forward, acceptSmall bool) (float64, error) {
	filtered := h
	if math.Abs(h) < c.MinStep {
		if !acceptSmall {
			return 0, ode.StallError{Time: t, MinStep: c.MinStep, Needed: math.Abs(h)}
		}
		if forward {
			filtered = c.MinStep
		} else {
			filtered = -c.MinStep
		}
	}
	if filtered > c.MaxStep {
		filtered = c.MaxStep
	} else if filtered < -c.MaxStep {
		filtered = -c.MaxStep
	}
	return filtered, nil
}

// InitialStep estimates a starting step size from the magnitudes of the
// state, its derivative, and a finite-difference second derivative
// obtained from one Euler probe. yDot0 must hold f(t0, y0); y1 and yDot1
// are scratch, yDot1 receives the probe evaluation.
func (c *Controller) InitialStep(f ode.DerivFunc, forward bool, order int, t0 float64, y0, yDot0, y1, yDot1 []float64) (float64, error) {
	scale := func(j int) float64 {
		s := c.Tol.AbsAt(j)
		if s == 0 {
			// pure relative tolerance, fall back to the state magnitude
			s = c.Tol.Scale(j, y0[j], y0[j])
		}
		if s == 0 {
			s = 1
		}
		return s
	}

	// rough first guess: h = 0.01 * ||y/scale|| / ||y'/scale||
	yOnScale2, yDotOnScale2 := 0.0, 0.0
	for j := range y0 {
		r := y0[j] / scale(j)
		yOnScale2 += r * r
		r = yDot0[j] / scale(j)
		yDotOnScale2 += r * r
	}
	h := 1.0e-6
	if yOnScale2 >= 1.0e-10 && yDotOnScale2 >= 1.0e-10 {
		h = 0.01 * math.Sqrt(yOnScale2/yDotOnScale2)
	}
	if !forward {
		h = -h
	}

	// Euler probe to estimate the second derivative
	for j := range y0 {
		y1[j] = y0[j] + h*yDot0[j]
	}
	if err := f(t0+h, y1, yDot1); err != nil {
		return 0, err
	}
	yDDotOnScale := 0.0
	for j := range y0 {
		r := (yDot1[j] - yDot0[j]) / scale(j)
		yDDotOnScale += r * r
	}
	yDDotOnScale = math.Sqrt(yDDotOnScale) / math.Abs(h)

	// h^order * max(||y'/tol||, ||y''/tol||) = 0.01
	maxInv2 := math.Max(math.Sqrt(yDotOnScale2), yDDotOnScale)
	h1 := math.Max(1.0e-6, 0.001*math.Abs(h))
	if maxInv2 >= 1.0e-15 {
		h1 = math.Pow(0.01/maxInv2, 1.0/float64(order))
	}
	hAbs := math.Min(100.0*math.Abs(h), h1)
	hAbs = math.Max(hAbs, 1.0e-12*math.Abs(t0)) // avoids cancellation in t0 + h
	if hAbs < c.MinStep {
		hAbs = c.MinStep
	}
	if hAbs > c.MaxStep {
		hAbs = c.MaxStep
	}
	if forward {
		return hAbs, nil
	}
	return -hAbs, nil
}
