package problems

import (
	"fmt"

	"github.com/san-kum/odeint/internal/ode"
)

// Problem is a benchmark system with a canonical initial state.
type Problem interface {
	ode.System
	DefaultState() []float64
}

// New constructs a problem by name with default parameters.
func New(name string) (Problem, error) {
	switch name {
	case "decay":
		return NewDecay(), nil
	case "harmonic":
		return NewHarmonic(), nil
	case "pendulum":
		return NewPendulum(), nil
	case "vanderpol":
		return NewVanDerPol(), nil
	case "bouncing_ball":
		return NewBouncingBall(), nil
	}
	return nil, fmt.Errorf("unknown problem: %s", name)
}

// Names lists the available problems in display order.
func Names() []string {
	return []string{"decay", "harmonic", "pendulum", "vanderpol", "bouncing_ball"}
}
