package solver

import "github.com/san-kum/odeint/internal/ode"

// Result bundles a sampled trajectory with the run statistics the CLI and
// the live view display.
type Result struct {
	Times       []float64
	States      [][]float64
	Events      []EventRecord
	FinalTime   float64
	Evaluations int
	Steps       int
}

type stepCounter struct{ n int }

func (c *stepCounter) Init(t0 float64, y0 []float64, t1 float64)      { c.n = 0 }
func (c *stepCounter) HandleStep(interp ode.Interpolation, last bool) { c.n++ }

// Solve integrates and returns the trajectory sampled every sampleDt
// through the dense output (raw step endpoints when sampleDt is zero).
// The registered observers still run.
func (it *Integrator) Solve(sys ode.System, t0 float64, y0 []float64, t1 float64, sampleDt float64) (*Result, error) {
	rec := NewRecorder(sampleDt)
	counter := &stepCounter{}
	saved := it.observers
	it.observers = append(append([]ode.StepObserver{}, saved...), rec, counter)
	defer func() { it.observers = saved }()

	yOut := make([]float64, sys.Dim())
	finalTime, err := it.Integrate(sys, t0, y0, t1, yOut)
	res := &Result{
		Times:       rec.Times,
		States:      rec.States,
		Events:      append([]EventRecord{}, it.eventLog...),
		FinalTime:   finalTime,
		Evaluations: it.evaluations,
		Steps:       counter.n,
	}
	return res, err
}
