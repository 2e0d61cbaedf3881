package rk

// Interpolator is the dense output of one accepted step: a cubic Hermite
// polynomial matching the state and derivative at both endpoints, built
// from data the stepper already computed (no extra derivative
// evaluations). Each instance owns copies of its endpoint data and is
// self-contained, so it stays valid after the integration moves on.
type Interpolator struct {
	t0, t1  float64
	y0, y1  []float64
	f0, f1  []float64
	forward bool
}

// NewInterpolator copies the endpoint states and derivatives of the step
// [t0, t1]. For backward integration t1 < t0.
func NewInterpolator(t0 float64, y0, f0 []float64, t1 float64, y1, f1 []float64, forward bool) *Interpolator {
	in := &Interpolator{
		t0: t0, t1: t1,
		y0: make([]float64, len(y0)), y1: make([]float64, len(y1)),
		f0: make([]float64, len(f0)), f1: make([]float64, len(f1)),
		forward: forward,
	}
	copy(in.y0, y0)
	copy(in.y1, y1)
	copy(in.f0, f0)
	copy(in.f1, f1)
	return in
}

func (in *Interpolator) PreviousTime() float64 { return in.t0 }
func (in *Interpolator) CurrentTime() float64  { return in.t1 }
func (in *Interpolator) IsForward() bool       { return in.forward }

// InterpolatedValues evaluates the polynomial at t. Values slightly
// outside the step are extrapolated, which event bracketing relies on.
func (in *Interpolator) InterpolatedValues(t float64) []float64 {
	h := in.t1 - in.t0
	theta := (t - in.t0) / h
	t2 := theta * theta
	t3 := t2 * theta
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + theta
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	out := make([]float64, len(in.y0))
	for j := range out {
		out[j] = h00*in.y0[j] + h*h10*in.f0[j] + h01*in.y1[j] + h*h11*in.f1[j]
	}
	return out
}

// InterpolatedDerivatives evaluates the polynomial derivative at t.
func (in *Interpolator) InterpolatedDerivatives(t float64) []float64 {
	h := in.t1 - in.t0
	theta := (t - in.t0) / h
	t2 := theta * theta
	d00 := (6*t2 - 6*theta) / h
	d10 := 3*t2 - 4*theta + 1
	d01 := (-6*t2 + 6*theta) / h
	d11 := 3*t2 - 2*theta

	out := make([]float64, len(in.y0))
	for j := range out {
		out[j] = d00*in.y0[j] + d10*in.f0[j] + d01*in.y1[j] + d11*in.f1[j]
	}
	return out
}

// Truncate moves the step end to te, re-anchoring the end state and
// derivative at the interpolated values. Queries over [t0, te] keep their
// previous answers to within the polynomial's own accuracy; the discarded
// part of the step is no longer reachable. Used when an event shortens an
// accepted step.
func (in *Interpolator) Truncate(te float64) {
	y := in.InterpolatedValues(te)
	f := in.InterpolatedDerivatives(te)
	in.t1 = te
	copy(in.y1, y)
	copy(in.f1, f)
}
