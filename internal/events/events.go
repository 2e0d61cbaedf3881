// Package events implements zero-crossing detection for user supplied
// switching functions. One State instance tracks one handler across the
// steps of a single integration: it samples the handler's g function
// through the dense output of each accepted step, brackets sign changes
// and localizes the crossing with a root finder.
package events

import (
	"math"

	"github.com/san-kum/odeint/internal/ode"
	"github.com/san-kum/odeint/internal/rootfind"
)

// Action tells the integration loop what to do after an event fired.
type Action int

const (
	// Continue resumes integration past the event with no state change.
	Continue Action = iota
	// ResetState restarts integration from the handler-supplied state at
	// the event time.
	ResetState
	// ResetDerivatives keeps the state but forces a fresh derivative
	// evaluation at the event time.
	ResetDerivatives
	// Stop terminates integration at the event time. This is a normal
	// termination, not an error.
	Stop
)

func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case ResetState:
		return "reset-state"
	case ResetDerivatives:
		return "reset-derivatives"
	case Stop:
		return "stop"
	}
	return "unknown"
}

// Handler is the user-facing event interface. G is the switching function
// whose sign changes mark events. Handlers hold no per-integration state:
// the sign bookkeeping lives in State, so one handler instance can be
// reused across independent integrations.
type Handler interface {
	// Init is called once at integration start.
	Init(t0 float64, y0 []float64, tTarget float64)
	// G is the switching function. Events occur at its zero crossings.
	G(t float64, y []float64) float64
	// Occurred is called at a located crossing; increasing reports the
	// slope of g in integration-time order.
	Occurred(t float64, y []float64, increasing bool) Action
	// ResetStateAt supplies the replacement state after a ResetState
	// action. y must not be mutated; return a new slice.
	ResetStateAt(t float64, y []float64) []float64
}

// Detector binds a handler to its detection parameters.
type Detector struct {
	Handler       Handler
	MaxCheck      float64 // maximal interval between g samples inside a step
	Convergence   float64 // width below which a bracket counts as a root
	MaxIterations int
	Solver        rootfind.Solver // nil selects Pegasus
}

// State tracks one detector during one integration. Reset by NewState for
// every Integrate call; never shared across calls.
type State struct {
	det         Detector
	solver      rootfind.Solver
	convergence float64

	initialized bool
	t0          float64
	g0Positive  bool
	forward     bool

	pendingEvent      bool
	pendingEventTime  float64
	previousEventTime float64
	increasing        bool
	nextAction        Action
}

func NewState(det Detector) *State {
	solver := det.Solver
	if solver == nil {
		solver = rootfind.NewPegasus(1e-14, det.Convergence)
	}
	return &State{
		det:               det,
		solver:            solver,
		convergence:       math.Abs(det.Convergence),
		g0Positive:        true,
		pendingEventTime:  math.NaN(),
		previousEventTime: math.NaN(),
		increasing:        true,
		nextAction:        Continue,
	}
}

func (s *State) Handler() Handler { return s.det.Handler }

// reinitializeBegin samples g at the start of the first step. A zero
// exactly at the start is ignored by sampling half a convergence width
// inside the step instead, so a restart from a previous STOP event does
// not immediately re-trigger.
func (s *State) reinitializeBegin(interp ode.Interpolation) {
	s.t0 = interp.PreviousTime()
	g0 := s.det.Handler.G(s.t0, interp.InterpolatedValues(s.t0))
	if g0 == 0 {
		epsilon := 0.5 * s.convergence
		if !interp.IsForward() {
			epsilon = -epsilon
		}
		tStart := s.t0 + epsilon
		g0 = s.det.Handler.G(tStart, interp.InterpolatedValues(tStart))
	}
	s.g0Positive = g0 >= 0
	s.initialized = true
}

// EvaluateStep scans the accepted step covered by interp for a sign change
// of g, sampling at most MaxCheck apart. It reports whether an event
// occurs before the end of the step; the time is then available from
// EventTime. A ConvergenceError is returned when a sign change cannot be
// localized within the iteration budget.
func (s *State) EvaluateStep(interp ode.Interpolation) (bool, error) {
	if !s.initialized {
		s.reinitializeBegin(interp)
	}
	s.forward = interp.IsForward()
	t1 := interp.CurrentTime()
	dt := t1 - s.t0
	if math.Abs(dt) < s.convergence {
		// too small a step to separate a root from the endpoints
		return false, nil
	}
	n := 1
	if s.det.MaxCheck > 0 {
		n = int(math.Max(1, math.Ceil(math.Abs(dt)/s.det.MaxCheck)))
	}
	h := dt / float64(n)

	g := func(t float64) float64 {
		return s.det.Handler.G(t, interp.InterpolatedValues(t))
	}

	ta := s.t0
	ga := g(ta)
	for i := 0; i < n; i++ {
		tb := t1
		if i < n-1 {
			tb = s.t0 + float64(i+1)*h
		}
		gb := g(tb)

		if s.g0Positive != (gb >= 0) {
			// sign change: an event is expected during this substep
			s.increasing = gb >= ga

			root, err := s.solver.Solve(g, ta, tb, s.det.MaxIterations)
			if err != nil {
				return false, ode.ConvergenceError{Time: ta, Iterations: s.det.MaxIterations}
			}

			if !math.IsNaN(s.previousEventTime) &&
				math.Abs(root-ta) <= s.convergence &&
				math.Abs(root-s.previousEventTime) <= s.convergence {
				// found again a past event: skip forward a convergence
				// width at a time until the sign settles, then retry the
				// substep, unless the noisy zone extends to the step end
				for {
					if s.forward {
						ta += s.convergence
					} else {
						ta -= s.convergence
					}
					ga = g(ta)
					if !(s.g0Positive != (ga >= 0) && (s.forward == (ta < tb))) {
						break
					}
				}
				if s.forward == (ta < tb) {
					i--
					continue
				}
				s.pendingEvent = true
				s.pendingEventTime = root
				return true, nil
			}

			if math.IsNaN(s.previousEventTime) || math.Abs(s.previousEventTime-root) > s.convergence {
				s.pendingEvent = true
				s.pendingEventTime = root
				return true, nil
			}
		}
		ta, ga = tb, gb
	}

	s.pendingEvent = false
	s.pendingEventTime = math.NaN()
	return false, nil
}

// EventTime returns the pending event time, or the appropriate infinity
// when no event is pending so that min/max selection across detectors
// stays simple.
func (s *State) EventTime() float64 {
	if s.pendingEvent {
		return s.pendingEventTime
	}
	if s.forward {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// StepAccepted acknowledges the (possibly truncated) step end at (t, y).
// If the pending event matches t, the handler is invoked and the stored
// sign is forced to its value just past the event, so an event whose g is
// exactly zero right after being crossed is not detected again at the
// same instant.
func (s *State) StepAccepted(t float64, y []float64) {
	s.t0 = t
	g0 := s.det.Handler.G(t, y)
	if s.pendingEvent && math.Abs(s.pendingEventTime-t) <= s.convergence {
		s.previousEventTime = t
		s.g0Positive = s.increasing
		s.nextAction = s.det.Handler.Occurred(t, y, s.increasing == s.forward)
	} else {
		s.g0Positive = g0 >= 0
		s.nextAction = Continue
	}
}

// Stop reports whether the last accepted step asked to terminate.
func (s *State) Stop() bool { return s.nextAction == Stop }

// Reset lets the handler replace the state at the event time. It returns
// the new state values (nil when unchanged) and whether the derivatives
// must be recomputed before the next step.
func (s *State) Reset(t float64, y []float64) ([]float64, bool) {
	if !(s.pendingEvent && math.Abs(s.pendingEventTime-t) <= s.convergence) {
		return nil, false
	}
	var newY []float64
	if s.nextAction == ResetState {
		newY = s.det.Handler.ResetStateAt(t, y)
	}
	s.pendingEvent = false
	s.pendingEventTime = math.NaN()
	reset := s.nextAction == ResetState || s.nextAction == ResetDerivatives
	if reset {
		// the sign forced at StepAccepted described the pre-reset
		// dynamics; re-sample g from the new state at the start of the
		// next step (a zero exactly at the event time is skipped by half
		// a convergence width, so the event does not re-fire in place)
		s.initialized = false
	}
	return newY, reset
}

// NotifyReset tells a detector that another detector replaced the state
// at time t: its stored sign may no longer describe the new trajectory.
func (s *State) NotifyReset() {
	s.initialized = false
}
