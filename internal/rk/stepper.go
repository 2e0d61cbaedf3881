// Package rk implements the embedded Runge-Kutta stage evaluation, the
// error-based step size control and the dense output interpolation shared
// by every tableau.
package rk

import (
	"github.com/san-kum/odeint/internal/ode"
	"github.com/san-kum/odeint/internal/tableau"
)

// Stepper evaluates the stages of one embedded pair. It owns no mutable
// cross-step state beyond a scratch vector, so one instance serves a whole
// integration.
type Stepper struct {
	tab  *tableau.Tableau
	yTmp []float64
}

func NewStepper(tab *tableau.Tableau, dim int) *Stepper {
	return &Stepper{tab: tab, yTmp: make([]float64, dim)}
}

func (st *Stepper) Tableau() *tableau.Tableau { return st.tab }

// ComputeStages fills yDotK[1:] for a step of signed size h starting at
// (t, y). yDotK[0] must already hold f(t, y): the caller owns it so FSAL
// pairs can carry it over from the previous step. Exactly one derivative
// evaluation is performed per remaining stage; any error from f aborts the
// step with no state visible to the caller.
func (st *Stepper) ComputeStages(f ode.DerivFunc, t float64, y []float64, h float64, yDotK [][]float64) error {
	tab := st.tab
	for k := 1; k < tab.Stages(); k++ {
		row := tab.A[k]
		for j := range y {
			sum := row[0] * yDotK[0][j]
			for l := 1; l < k; l++ {
				sum += row[l] * yDotK[l][j]
			}
			st.yTmp[j] = y[j] + h*sum
		}
		if err := f(t+tab.C[k]*h, st.yTmp, yDotK[k]); err != nil {
			return err
		}
	}
	return nil
}

// Combine writes the high-order solution y + h*sum(b_i k_i) into yNew.
func (st *Stepper) Combine(y []float64, h float64, yDotK [][]float64, yNew []float64) {
	tab := st.tab
	for j := range y {
		sum := tab.B[0] * yDotK[0][j]
		for l := 1; l < tab.Stages(); l++ {
			sum += tab.B[l] * yDotK[l][j]
		}
		yNew[j] = y[j] + h*sum
	}
}

// ErrorComponent returns e_j = h*sum((b_i - b*_i) k_i_j), the j-th entry of
// the local error vector.
func (st *Stepper) ErrorComponent(h float64, yDotK [][]float64, j int) float64 {
	tab := st.tab
	sum := tab.E[0] * yDotK[0][j]
	for l := 1; l < tab.Stages(); l++ {
		sum += tab.E[l] * yDotK[l][j]
	}
	return h * sum
}
