package problems

import (
	"fmt"
	"math"
)

// Harmonic is the undamped harmonic oscillator.
// State: [x, v] where v = dx/dt
// Equations:
//
//	dx/dt = v
//	dv/dt = -omega² x
type Harmonic struct {
	Omega float64
}

func NewHarmonic() *Harmonic {
	return &Harmonic{Omega: 1.0}
}

func (h *Harmonic) Dim() int { return 2 }

func (h *Harmonic) Derivatives(_ float64, y, yDot []float64) error {
	yDot[0] = y[1]
	yDot[1] = -h.Omega * h.Omega * y[0]
	return nil
}

func (h *Harmonic) DefaultState() []float64 { return []float64{1.0, 0.0} }

// Exact returns the analytic solution at time t for initial state
// (x0, v0) at t=0.
func (h *Harmonic) Exact(t, x0, v0 float64) (x, v float64) {
	c, s := math.Cos(h.Omega*t), math.Sin(h.Omega*t)
	x = x0*c + v0/h.Omega*s
	v = -x0*h.Omega*s + v0*c
	return x, v
}

// Energy is conserved along exact trajectories; unit mass.
func (h *Harmonic) Energy(y []float64) float64 {
	return 0.5*y[1]*y[1] + 0.5*h.Omega*h.Omega*y[0]*y[0]
}

func (h *Harmonic) GetParams() map[string]float64 {
	return map[string]float64{
		"omega": h.Omega,
	}
}

func (h *Harmonic) SetParam(name string, value float64) error {
	if name != "omega" {
		return fmt.Errorf("unknown param: %s", name)
	}
	h.Omega = value
	return nil
}
