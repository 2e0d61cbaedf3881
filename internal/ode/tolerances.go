package ode

import (
	"fmt"
	"math"
)

// Tolerances holds the scalar-or-vector absolute and relative error
// tolerances. The zero value is invalid; use NewTolerances or
// NewVectorTolerances.
type Tolerances struct {
	AbsScalar float64
	RelScalar float64
	Abs       []float64
	Rel       []float64
}

func NewTolerances(abs, rel float64) (Tolerances, error) {
	if abs < 0 || rel < 0 {
		return Tolerances{}, fmt.Errorf("tolerances must be non-negative, got abs=%g rel=%g", abs, rel)
	}
	if abs == 0 && rel == 0 {
		return Tolerances{}, fmt.Errorf("absolute and relative tolerances cannot both be zero")
	}
	return Tolerances{AbsScalar: abs, RelScalar: rel}, nil
}

func NewVectorTolerances(abs, rel []float64) (Tolerances, error) {
	if len(abs) != len(rel) {
		return Tolerances{}, fmt.Errorf("tolerance vectors must have equal length, got %d and %d", len(abs), len(rel))
	}
	for i := range abs {
		if abs[i] < 0 || rel[i] < 0 {
			return Tolerances{}, fmt.Errorf("tolerances must be non-negative, component %d has abs=%g rel=%g", i, abs[i], rel[i])
		}
		if abs[i] == 0 && rel[i] == 0 {
			return Tolerances{}, fmt.Errorf("component %d has both tolerances zero", i)
		}
	}
	return Tolerances{Abs: abs, Rel: rel}, nil
}

// Vector reports whether per-component tolerances are in use.
func (tol Tolerances) Vector() bool { return tol.Abs != nil }

// CheckDim verifies vector tolerances against the state dimension.
func (tol Tolerances) CheckDim(n int) error {
	if tol.Vector() && len(tol.Abs) != n {
		return DimensionError{Expected: n, Got: len(tol.Abs), What: "tolerance vector"}
	}
	return nil
}

// Scale returns the error weight for component i given the state values at
// both ends of a step.
func (tol Tolerances) Scale(i int, y0, y1 float64) float64 {
	m := math.Max(math.Abs(y0), math.Abs(y1))
	if tol.Vector() {
		return tol.Abs[i] + tol.Rel[i]*m
	}
	return tol.AbsScalar + tol.RelScalar*m
}

// AbsAt returns the absolute tolerance for component i, used by the
// initial step size guess.
func (tol Tolerances) AbsAt(i int) float64 {
	if tol.Vector() {
		return tol.Abs[i]
	}
	return tol.AbsScalar
}
