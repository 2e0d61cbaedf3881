package problems

import (
	"fmt"
	"math"
)

// Pendulum is a damped nonlinear pendulum.
// State: [theta, omega]
// Equations:
//
//	dtheta/dt = omega
//	domega/dt = (-damping*omega - m*g*L*sin(theta)) / (m*L²)
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (p *Pendulum) Dim() int { return 2 }

func (p *Pendulum) Derivatives(_ float64, y, yDot []float64) error {
	theta := y[0]
	omega := y[1]
	yDot[0] = omega
	yDot[1] = (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta)) /
		(p.Mass * p.Length * p.Length)
	return nil
}

func (p *Pendulum) DefaultState() []float64 { return []float64{math.Pi / 3, 0.0} }

func (p *Pendulum) Energy(y []float64) float64 {
	// KE = 0.5 * m * (L*omega)^2
	// PE = m * g * L * (1 - cos(theta))
	v := p.Length * y[1]
	ke := 0.5 * p.Mass * v * v
	pe := p.Mass * p.Gravity * p.Length * (1.0 - math.Cos(y[0]))
	return ke + pe
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.Mass,
		"length":  p.Length,
		"damping": p.Damping,
		"gravity": p.Gravity,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		p.Mass = value
	case "length":
		p.Length = value
	case "damping":
		p.Damping = value
	case "gravity":
		p.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
