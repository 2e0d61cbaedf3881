package problems

import "fmt"

// VanDerPol implements the Van der Pol oscillator.
// State: [x, y] where y = dx/dt
// Equations:
//
//	dx/dt = y
//	dy/dt = μ(1 - x²)y - x
type VanDerPol struct {
	Mu float64 // Nonlinearity parameter
}

func NewVanDerPol() *VanDerPol {
	return &VanDerPol{
		Mu: 1.0, // Classic value for limit cycle
	}
}

func (v *VanDerPol) Dim() int { return 2 }

func (v *VanDerPol) Derivatives(_ float64, y, yDot []float64) error {
	x, w := y[0], y[1]
	yDot[0] = w
	yDot[1] = v.Mu*(1-x*x)*w - x
	return nil
}

func (v *VanDerPol) DefaultState() []float64 { return []float64{2.0, 0.0} }

func (v *VanDerPol) GetParams() map[string]float64 {
	return map[string]float64{
		"mu": v.Mu,
	}
}

func (v *VanDerPol) SetParam(name string, value float64) error {
	if name != "mu" {
		return fmt.Errorf("unknown param: %s", name)
	}
	v.Mu = value
	return nil
}
