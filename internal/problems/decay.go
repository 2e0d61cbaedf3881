package problems

import (
	"fmt"
	"math"
)

// Decay is the scalar test equation y' = -lambda*y with exact solution
// y(t) = y0 * exp(-lambda*t).
type Decay struct {
	Lambda float64
	Y0     float64
}

func NewDecay() *Decay {
	return &Decay{Lambda: 1.0, Y0: 1.0}
}

func (d *Decay) Dim() int { return 1 }

func (d *Decay) Derivatives(_ float64, y, yDot []float64) error {
	yDot[0] = -d.Lambda * y[0]
	return nil
}

func (d *Decay) DefaultState() []float64 { return []float64{d.Y0} }

// Exact returns the analytic solution at time t for the default initial
// state at t=0.
func (d *Decay) Exact(t float64) float64 {
	return d.Y0 * math.Exp(-d.Lambda*t)
}

func (d *Decay) GetParams() map[string]float64 {
	return map[string]float64{
		"lambda": d.Lambda,
		"y0":     d.Y0,
	}
}

func (d *Decay) SetParam(name string, value float64) error {
	switch name {
	case "lambda":
		d.Lambda = value
	case "y0":
		d.Y0 = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
