// Package solver drives the adaptive integration loop: it proposes steps
// through the Runge-Kutta stepper, accepts or rejects them on the error
// estimate, hands accepted steps to the event machinery and the step
// observers, and applies event actions (truncation, resets, stop).
package solver

import (
	"fmt"
	"math"

	"github.com/san-kum/odeint/internal/events"
	"github.com/san-kum/odeint/internal/ode"
	"github.com/san-kum/odeint/internal/rk"
	"github.com/san-kum/odeint/internal/tableau"
)

// Integrator is the single entry point of the library. One instance may
// run many integrations sequentially; it is not safe for concurrent use
// because the evaluation counter and scratch arrays are shared. The
// tableau itself is immutable and may back any number of integrators.
type Integrator struct {
	tab         *tableau.Tableau
	ctrl        *rk.Controller
	detectors   []events.Detector
	observers   []ode.StepObserver
	initialStep float64
	evaluations int
	eventLog    []EventRecord
}

// EventRecord marks one localized event occurrence.
type EventRecord struct {
	Time  float64
	Index int // registration index of the detector that fired
}

// New validates the configuration eagerly: non-positive step bounds or an
// inverted range are construction-time errors, not runtime ones.
func New(tab *tableau.Tableau, minStep, maxStep float64, tol ode.Tolerances) (*Integrator, error) {
	if minStep <= 0 || maxStep <= 0 {
		return nil, fmt.Errorf("step bounds must be positive, got min=%g max=%g", minStep, maxStep)
	}
	if minStep >= maxStep {
		return nil, fmt.Errorf("minimal step %g must be smaller than maximal step %g", minStep, maxStep)
	}
	return &Integrator{
		tab:  tab,
		ctrl: rk.NewController(minStep, maxStep, tab.Order, tol),
	}, nil
}

// SetInitialStep forces the magnitude of the first step instead of
// estimating it from the initial derivative.
func (it *Integrator) SetInitialStep(h float64) { it.initialStep = math.Abs(h) }

// Controller exposes the step-size control parameters for tuning.
func (it *Integrator) Controller() *rk.Controller { return it.ctrl }

// AddEventHandler registers an event with its detection parameters.
func (it *Integrator) AddEventHandler(h events.Handler, maxCheck, convergence float64, maxIter int) {
	it.detectors = append(it.detectors, events.Detector{
		Handler:       h,
		MaxCheck:      maxCheck,
		Convergence:   convergence,
		MaxIterations: maxIter,
	})
}

// AddDetector registers a fully specified detector (custom root solver).
func (it *Integrator) AddDetector(d events.Detector) {
	it.detectors = append(it.detectors, d)
}

func (it *Integrator) AddObserver(o ode.StepObserver) {
	it.observers = append(it.observers, o)
}

// Evaluations reports the number of derivative evaluations performed by
// the last Integrate call.
func (it *Integrator) Evaluations() int { return it.evaluations }

// Events reports the events localized during the last Integrate call, in
// occurrence order.
func (it *Integrator) Events() []EventRecord { return it.eventLog }

func (it *Integrator) sanityChecks(sys ode.System, t0 float64, y0 []float64, t1 float64, yOut []float64) error {
	n := sys.Dim()
	if len(y0) != n {
		return ode.DimensionError{Expected: n, Got: len(y0), What: "initial state"}
	}
	if yOut != nil && len(yOut) != n {
		return ode.DimensionError{Expected: n, Got: len(yOut), What: "output state"}
	}
	if err := it.ctrl.Tol.CheckDim(n); err != nil {
		return err
	}
	if math.Abs(t1-t0) <= 1e-12*math.Max(math.Abs(t0), math.Abs(t1)) {
		return fmt.Errorf("integration interval is too small: t0=%g t1=%g", t0, t1)
	}
	return nil
}

// Integrate solves the initial value problem from (t0, y0) to t1 and
// writes the final state into yOut (which may alias y0). The returned
// time equals t1 unless a stop event fired earlier. On a fatal error the
// last valid state and time are returned alongside the error.
func (it *Integrator) Integrate(sys ode.System, t0 float64, y0 []float64, t1 float64, yOut []float64) (float64, error) {
	if err := it.sanityChecks(sys, t0, y0, t1, yOut); err != nil {
		return t0, err
	}

	n := sys.Dim()
	forward := t1 > t0
	it.evaluations = 0
	it.eventLog = it.eventLog[:0]
	f := func(t float64, y, yDot []float64) error {
		it.evaluations++
		return sys.Derivatives(t, y, yDot)
	}

	stepper := rk.NewStepper(it.tab, n)
	stages := it.tab.Stages()
	yDotK := make([][]float64, stages)
	for i := range yDotK {
		yDotK[i] = make([]float64, n)
	}
	y := make([]float64, n)
	copy(y, y0)
	yTmp := make([]float64, n)
	yDotEnd := make([]float64, n)

	states := make([]*events.State, len(it.detectors))
	for i, det := range it.detectors {
		det.Handler.Init(t0, y0, t1)
		states[i] = events.NewState(det)
	}
	for _, o := range it.observers {
		o.Init(t0, y0, t1)
	}

	finish := func(t float64, err error) (float64, error) {
		if yOut != nil {
			copy(yOut, y)
		}
		return t, err
	}

	stepStart := t0
	var hNew float64
	firstTime := true
	needDeriv := true

	for {
		if needDeriv {
			if err := f(stepStart, y, yDotK[0]); err != nil {
				return finish(stepStart, err)
			}
			needDeriv = false
		}

		if firstTime {
			if it.initialStep > 0 {
				hNew = it.initialStep
				if !forward {
					hNew = -hNew
				}
			} else {
				var err error
				hNew, err = it.ctrl.InitialStep(f, forward, it.tab.Order, stepStart, y, yDotK[0], yTmp, yDotEnd)
				if err != nil {
					return finish(stepStart, err)
				}
			}
			firstTime = false
		}

		// propose steps until one meets the tolerance
		var h, errNorm float64
		for {
			h = hNew
			if forward && stepStart+h > t1 {
				h = t1 - stepStart
			} else if !forward && stepStart+h < t1 {
				h = t1 - stepStart
			}
			if err := stepper.ComputeStages(f, stepStart, y, h, yDotK); err != nil {
				return finish(stepStart, err)
			}
			stepper.Combine(y, h, yDotK, yTmp)
			errNorm = it.ctrl.ErrorNorm(stepper, h, yDotK, y, yTmp)
			if errNorm <= 1 {
				break
			}
			var err error
			hNew, err = it.ctrl.FilterStep(h*it.ctrl.StepFactor(errNorm), stepStart, forward, false)
			if err != nil {
				return finish(stepStart, err)
			}
		}

		// derivative at the step end for the dense output; FSAL pairs
		// already evaluated it as the last stage
		tEnd := stepStart + h
		var fEnd []float64
		if it.tab.FSAL {
			fEnd = yDotK[stages-1]
		} else {
			if err := f(tEnd, yTmp, yDotEnd); err != nil {
				return finish(stepStart, err)
			}
			fEnd = yDotEnd
		}
		interp := rk.NewInterpolator(stepStart, y, yDotK[0], tEnd, yTmp, fEnd, forward)

		// scan every registered event over the accepted step and keep the
		// earliest crossing in integration-time order; registration order
		// breaks exact ties because later detectors must beat, not match,
		// the best time
		eventIdx := -1
		eventT := 0.0
		for i, st := range states {
			found, err := st.EvaluateStep(interp)
			if err != nil {
				return finish(stepStart, err)
			}
			if !found {
				continue
			}
			ti := st.EventTime()
			if eventIdx < 0 || (forward && ti < eventT) || (!forward && ti > eventT) {
				eventIdx, eventT = i, ti
			}
		}

		if eventIdx >= 0 {
			// truncate the accepted step at the event time; the discarded
			// tail will be re-integrated after the event is applied
			interp.Truncate(eventT)
			copy(y, interp.InterpolatedValues(eventT))
			tEnd = eventT
			needDeriv = true
		} else {
			copy(y, yTmp)
		}

		for _, st := range states {
			st.StepAccepted(tEnd, y)
		}
		if eventIdx >= 0 {
			it.eventLog = append(it.eventLog, EventRecord{Time: tEnd, Index: eventIdx})
		}

		lastStep := false
		for _, st := range states {
			if st.Stop() {
				lastStep = true
			}
		}
		if !lastStep {
			if forward {
				lastStep = tEnd >= t1
			} else {
				lastStep = tEnd <= t1
			}
			if lastStep {
				// a clamped final step can land one ulp off the target
				tEnd = t1
			}
		}

		for _, o := range it.observers {
			o.HandleStep(interp, lastStep)
		}
		stepStart = tEnd

		if lastStep {
			return finish(stepStart, nil)
		}

		resetOccurred := false
		for _, st := range states {
			newY, recompute := st.Reset(stepStart, y)
			if newY != nil {
				if len(newY) != n {
					return finish(stepStart, ode.DimensionError{Expected: n, Got: len(newY), What: "reset state"})
				}
				copy(y, newY)
			}
			if recompute {
				needDeriv = true
				resetOccurred = true
			}
		}
		if resetOccurred {
			// every detector's stored sign refers to the pre-reset
			// trajectory; make them all re-sample from the new state
			for _, st := range states {
				st.NotifyReset()
			}
		}

		if !needDeriv {
			// reuse the end derivative as the first stage of the next step
			copy(yDotK[0], fEnd)
		}

		// step size for the next attempt
		scaledH := h * it.ctrl.StepFactor(errNorm)
		nextT := stepStart + scaledH
		nextIsLast := false
		if forward {
			nextIsLast = nextT >= t1
		} else {
			nextIsLast = nextT <= t1
		}
		var err error
		hNew, err = it.ctrl.FilterStep(scaledH, stepStart, forward, nextIsLast)
		if err != nil {
			return finish(stepStart, err)
		}
	}
}
