// Package metrics provides step observers that compute run quality
// figures from accepted steps: energy drift for conservative systems and
// step size statistics for the controller.
package metrics

import (
	"math"

	"github.com/san-kum/odeint/internal/ode"
)

// Metric is the common surface the CLI prints after a run.
type Metric interface {
	Name() string
	Value() float64
}

// EnergyDrift tracks the worst relative deviation of a conserved energy
// along the accepted trajectory. Systems without an energy function
// yield zero drift.
type EnergyDrift struct {
	name          string
	sys           ode.System
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(sys ode.System) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		sys:  sys,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Init(t0 float64, y0 []float64, t1 float64) {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
	e.observe(y0)
}

func (e *EnergyDrift) HandleStep(interp ode.Interpolation, _ bool) {
	e.observe(interp.InterpolatedValues(interp.CurrentTime()))
}

func (e *EnergyDrift) observe(y []float64) {
	h, ok := e.sys.(ode.Hamiltonian)
	if !ok {
		return
	}

	energy := h.Energy(y)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

// StepStats records the sizes the controller actually chose.
type StepStats struct {
	name    string
	prev    float64
	Min     float64
	Max     float64
	sum     float64
	samples int
}

func NewStepStats() *StepStats {
	return &StepStats{name: "step_size"}
}

func (s *StepStats) Name() string { return s.name }

func (s *StepStats) Init(t0 float64, y0 []float64, t1 float64) {
	s.prev = t0
	s.Min = math.Inf(1)
	s.Max = 0
	s.sum = 0
	s.samples = 0
}

func (s *StepStats) HandleStep(interp ode.Interpolation, _ bool) {
	h := math.Abs(interp.CurrentTime() - s.prev)
	s.prev = interp.CurrentTime()
	s.Min = math.Min(s.Min, h)
	s.Max = math.Max(s.Max, h)
	s.sum += h
	s.samples++
}

// Value reports the mean accepted step size.
func (s *StepStats) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *StepStats) Steps() int { return s.samples }
