package solver

import (
	"math"

	"github.com/san-kum/odeint/internal/ode"
)

// Recorder is a step observer that samples the trajectory at a fixed
// interval through the dense output, independent of the step sizes the
// controller actually chose. A zero interval records the raw accepted
// step endpoints instead.
type Recorder struct {
	Interval float64
	Times    []float64
	States   [][]float64

	next float64
}

func NewRecorder(interval float64) *Recorder {
	return &Recorder{Interval: interval}
}

func (r *Recorder) Init(t0 float64, y0 []float64, t1 float64) {
	r.Times = r.Times[:0]
	r.States = r.States[:0]
	r.record(t0, y0)
	if t1 > t0 {
		r.next = t0 + r.Interval
	} else {
		r.next = t0 - r.Interval
	}
}

func (r *Recorder) HandleStep(interp ode.Interpolation, isLast bool) {
	if r.Interval <= 0 {
		t := interp.CurrentTime()
		r.record(t, interp.InterpolatedValues(t))
		return
	}
	end := interp.CurrentTime()
	for r.withinStep(end, interp.IsForward()) {
		r.record(r.next, interp.InterpolatedValues(r.next))
		if interp.IsForward() {
			r.next += r.Interval
		} else {
			r.next -= r.Interval
		}
	}
	if isLast {
		// dedup against a sample the loop already placed within rounding
		// of the final time
		n := len(r.Times)
		if n == 0 || math.Abs(r.Times[n-1]-end) > 1e-12*math.Max(1, math.Abs(end)) {
			r.record(end, interp.InterpolatedValues(end))
		}
	}
}

func (r *Recorder) withinStep(end float64, forward bool) bool {
	if forward {
		return r.next <= end
	}
	return r.next >= end
}

func (r *Recorder) record(t float64, y []float64) {
	c := make([]float64, len(y))
	copy(c, y)
	r.Times = append(r.Times, t)
	r.States = append(r.States, c)
}
