package problems

import (
	"fmt"

	"github.com/san-kum/odeint/internal/events"
)

// BouncingBall is a ball in free fall that bounces on the floor with a
// coefficient of restitution. The impact is an event: the switching
// function is the height, and each located crossing replaces the state
// with reversed, damped velocity.
// State: [h, v]
type BouncingBall struct {
	Gravity     float64
	Restitution float64

	Bounces int // impacts located during the current integration
}

func NewBouncingBall() *BouncingBall {
	return &BouncingBall{
		Gravity:     9.81,
		Restitution: 0.7,
	}
}

func (b *BouncingBall) Dim() int { return 2 }

func (b *BouncingBall) Derivatives(_ float64, y, yDot []float64) error {
	yDot[0] = y[1]
	yDot[1] = -b.Gravity
	return nil
}

func (b *BouncingBall) DefaultState() []float64 { return []float64{10.0, 0.0} }

// Init implements events.Handler; a new integration resets the counter.
func (b *BouncingBall) Init(_ float64, _ []float64, _ float64) { b.Bounces = 0 }

// G crosses zero when the ball reaches the floor.
func (b *BouncingBall) G(_ float64, y []float64) float64 { return y[0] }

func (b *BouncingBall) Occurred(_ float64, _ []float64, _ bool) events.Action {
	b.Bounces++
	return events.ResetState
}

func (b *BouncingBall) ResetStateAt(_ float64, y []float64) []float64 {
	return []float64{0, -b.Restitution * y[1]}
}

func (b *BouncingBall) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity":     b.Gravity,
		"restitution": b.Restitution,
	}
}

func (b *BouncingBall) SetParam(name string, value float64) error {
	switch name {
	case "gravity":
		b.Gravity = value
	case "restitution":
		b.Restitution = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
