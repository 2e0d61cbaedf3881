package ode

import "math"

// State is a snapshot of the solution at one instant. Accepted steps hand
// out copies, never aliases, so later resets cannot corrupt history.
type State struct {
	Time        float64
	Values      []float64
	Derivatives []float64
}

func (s State) Clone() State {
	c := State{Time: s.Time}
	if s.Values != nil {
		c.Values = make([]float64, len(s.Values))
		copy(c.Values, s.Values)
	}
	if s.Derivatives != nil {
		c.Derivatives = make([]float64, len(s.Derivatives))
		copy(c.Derivatives, s.Derivatives)
	}
	return c
}

func (s State) IsValid() bool {
	for _, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System describes a first-order ODE y' = f(t, y).
type System interface {
	Dim() int
	// Derivatives writes f(t, y) into yDot. An error aborts integration
	// and is propagated to the caller unchanged.
	Derivatives(t float64, y, yDot []float64) error
}

// DerivFunc is the evaluation-counted derivative callback threaded through
// the stepper and the initial step size estimation.
type DerivFunc func(t float64, y, yDot []float64) error

// SystemFunc adapts a bare function to the System interface.
type SystemFunc struct {
	N int
	F func(t float64, y, yDot []float64) error
}

func (s SystemFunc) Dim() int { return s.N }

func (s SystemFunc) Derivatives(t float64, y, yDot []float64) error { return s.F(t, y, yDot) }

// Hamiltonian is implemented by systems with a conserved energy, used by
// the energy drift metric.
type Hamiltonian interface {
	Energy(y []float64) float64
}

// Interpolation is the dense output of one accepted (possibly truncated)
// step. Queries slightly outside [PreviousTime, CurrentTime] are tolerated
// for event bracketing but not guaranteed accurate.
type Interpolation interface {
	PreviousTime() float64
	CurrentTime() float64
	IsForward() bool
	InterpolatedValues(t float64) []float64
	InterpolatedDerivatives(t float64) []float64
}

// StepObserver receives every accepted step. The interpolation handle is
// only valid during the call; observers wanting to keep data must copy it.
type StepObserver interface {
	Init(t0 float64, y0 []float64, t1 float64)
	HandleStep(interp Interpolation, isLast bool)
}

// Configurable mirrors the parameter surface of the benchmark problems.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
