package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odeint/internal/events"
	"github.com/san-kum/odeint/internal/ode"
	"github.com/san-kum/odeint/internal/tableau"
)

func mustTol(t *testing.T, abs, rel float64) ode.Tolerances {
	t.Helper()
	tol, err := ode.NewTolerances(abs, rel)
	if err != nil {
		t.Fatal(err)
	}
	return tol
}

func newIntegrator(t *testing.T, abs, rel float64) *Integrator {
	t.Helper()
	it, err := New(tableau.DormandPrince54(), 1e-12, 10, mustTol(t, abs, rel))
	if err != nil {
		t.Fatal(err)
	}
	return it
}

var decaySys = ode.SystemFunc{N: 1, F: func(t float64, y, yDot []float64) error {
	yDot[0] = -y[0]
	return nil
}}

var harmonicSys = ode.SystemFunc{N: 2, F: func(t float64, y, yDot []float64) error {
	yDot[0] = y[1]
	yDot[1] = -y[0]
	return nil
}}

func TestExactLinearDecay(t *testing.T) {
	it := newIntegrator(t, 1e-10, 1e-10)
	y := make([]float64, 1)
	tf, err := it.Integrate(decaySys, 0, []float64{1}, 4, y)
	if err != nil {
		t.Fatal(err)
	}
	if tf != 4 {
		t.Errorf("final time %v, want 4", tf)
	}
	if math.Abs(y[0]-math.Exp(-4)) > 1e-9 {
		t.Errorf("y(4) = %v, want %v", y[0], math.Exp(-4))
	}
	if it.Evaluations() == 0 {
		t.Error("evaluation count not reported")
	}
}

func TestForwardBackwardSymmetry(t *testing.T) {
	it := newIntegrator(t, 1e-10, 1e-10)
	mid := make([]float64, 2)
	if _, err := it.Integrate(harmonicSys, 0, []float64{1, 0}, 5, mid); err != nil {
		t.Fatal(err)
	}
	back := make([]float64, 2)
	if _, err := it.Integrate(harmonicSys, 5, mid, 0, back); err != nil {
		t.Fatal(err)
	}
	if math.Abs(back[0]-1) > 1e-8 || math.Abs(back[1]) > 1e-8 {
		t.Errorf("round trip gave [%v %v], want [1 0]", back[0], back[1])
	}
}

func TestBackwardIntegration(t *testing.T) {
	it := newIntegrator(t, 1e-10, 1e-10)
	y := make([]float64, 1)
	tf, err := it.Integrate(decaySys, 4, []float64{math.Exp(-4)}, 0, y)
	if err != nil {
		t.Fatal(err)
	}
	if tf != 0 {
		t.Errorf("final time %v, want 0", tf)
	}
	if math.Abs(y[0]-1) > 1e-8 {
		t.Errorf("y(0) = %v, want 1", y[0])
	}
}

// zeroCross fires whenever the first state component crosses zero.
type zeroCross struct {
	action events.Action
	times  []float64
}

func (z *zeroCross) Init(t0 float64, y0 []float64, tTarget float64) {}
func (z *zeroCross) G(t float64, y []float64) float64              { return y[0] }
func (z *zeroCross) Occurred(t float64, y []float64, increasing bool) events.Action {
	z.times = append(z.times, t)
	return z.action
}
func (z *zeroCross) ResetStateAt(t float64, y []float64) []float64 { return nil }

func TestHarmonicEventTimes(t *testing.T) {
	// x(t) = sin(t + a) crosses zero at t = k*pi - a
	a := 0.5
	it := newIntegrator(t, 1e-10, 1e-10)
	h := &zeroCross{action: events.Continue}
	conv := 1e-9
	it.AddEventHandler(h, 0.5, conv, 100)

	y := make([]float64, 2)
	if _, err := it.Integrate(harmonicSys, 0, []float64{math.Sin(a), math.Cos(a)}, 10, y); err != nil {
		t.Fatal(err)
	}
	want := []float64{math.Pi - a, 2*math.Pi - a, 3*math.Pi - a}
	if len(h.times) != len(want) {
		t.Fatalf("detected %d crossings (%v), want %d", len(h.times), h.times, len(want))
	}
	for i, tw := range want {
		if math.Abs(h.times[i]-tw) > 10*conv {
			t.Errorf("crossing %d at %v, want %v", i, h.times[i], tw)
		}
	}
	if len(it.Events()) != len(want) {
		t.Errorf("event log has %d entries, want %d", len(it.Events()), len(want))
	}
}

func TestStopSemantics(t *testing.T) {
	a := 0.5
	it := newIntegrator(t, 1e-10, 1e-10)
	h := &zeroCross{action: events.Stop}
	it.AddEventHandler(h, 0.5, 1e-9, 100)

	y := make([]float64, 2)
	tf, err := it.Integrate(harmonicSys, 0, []float64{math.Sin(a), math.Cos(a)}, 10, y)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Pi - a
	if math.Abs(tf-want) > 1e-7 {
		t.Errorf("stopped at %v, want %v (not the target time 10)", tf, want)
	}
	if math.Abs(y[0]) > 1e-6 {
		t.Errorf("state at stop is %v, want x near 0", y[0])
	}
}

// ball is a bouncing ball: height and vertical speed under gravity, with
// an impact event that reverses the speed with restitution loss.
type ball struct {
	restitution float64
	bounces     int
}

func (b *ball) Dim() int { return 2 }
func (b *ball) Derivatives(t float64, y, yDot []float64) error {
	yDot[0] = y[1]
	yDot[1] = -9.81
	return nil
}
func (b *ball) Init(t0 float64, y0 []float64, tTarget float64) {}
func (b *ball) G(t float64, y []float64) float64               { return y[0] }
func (b *ball) Occurred(t float64, y []float64, increasing bool) events.Action {
	b.bounces++
	return events.ResetState
}
func (b *ball) ResetStateAt(t float64, y []float64) []float64 {
	return []float64{0, -b.restitution * y[1]}
}

func TestBouncingBallResetGuard(t *testing.T) {
	// after each bounce g is exactly zero at the event time; the event
	// must not re-fire in place and the run must terminate
	b := &ball{restitution: 0.7}
	it := newIntegrator(t, 1e-8, 1e-8)
	it.AddEventHandler(b, 0.1, 1e-9, 100)

	y := make([]float64, 2)
	tf, err := it.Integrate(b, 0, []float64{10, 0}, 4, y)
	if err != nil {
		t.Fatal(err)
	}
	if tf != 4 {
		t.Errorf("final time %v, want 4", tf)
	}
	// free fall from 10m hits at sqrt(2*10/9.81) = 1.428s, the next
	// flight lasts 2*0.7*14.007/9.81 = 1.999s, so exactly two impacts
	if b.bounces != 2 {
		t.Errorf("bounced %d times in 4s, want 2", b.bounces)
	}
	if y[0] < 0 {
		t.Errorf("ball ended below ground: h=%v", y[0])
	}
	first := math.Sqrt(2 * 10 / 9.81)
	if len(it.Events()) > 0 && math.Abs(it.Events()[0].Time-first) > 1e-6 {
		t.Errorf("first impact at %v, want %v", it.Events()[0].Time, first)
	}
}

func TestStepRejection(t *testing.T) {
	// a forced huge first step on a fast transient must be rejected at
	// least once before an acceptable step is found
	sys := ode.SystemFunc{N: 1, F: func(t float64, y, yDot []float64) error {
		yDot[0] = -50 * y[0]
		return nil
	}}
	it := newIntegrator(t, 1e-10, 1e-10)
	it.SetInitialStep(1.0)

	rejectionsSeen := false
	evalsAtFirstStep := 0
	it.AddObserver(observerFunc{init: func(t0 float64, y0 []float64, t1 float64) {},
		step: func(interp ode.Interpolation, last bool) {
			if evalsAtFirstStep == 0 {
				evalsAtFirstStep = it.evaluations
				// one accepted DOPRI5 step costs 7 evaluations; more
				// means rejected attempts happened first
				rejectionsSeen = evalsAtFirstStep > 7
			}
		}})

	y := make([]float64, 1)
	if _, err := it.Integrate(sys, 0, []float64{1}, 1, y); err != nil {
		t.Fatal(err)
	}
	if !rejectionsSeen {
		t.Errorf("no rejection observed, first step used %d evaluations", evalsAtFirstStep)
	}
	if math.Abs(y[0]-math.Exp(-50)) > 1e-9 {
		t.Errorf("y(1) = %v, want %v", y[0], math.Exp(-50))
	}
}

type observerFunc struct {
	init func(t0 float64, y0 []float64, t1 float64)
	step func(interp ode.Interpolation, last bool)
}

func (o observerFunc) Init(t0 float64, y0 []float64, t1 float64)  { o.init(t0, y0, t1) }
func (o observerFunc) HandleStep(in ode.Interpolation, last bool) { o.step(in, last) }

func TestUserErrorPropagatesUnwrapped(t *testing.T) {
	boom := errors.New("singularity reached")
	sys := ode.SystemFunc{N: 1, F: func(t float64, y, yDot []float64) error {
		if t > 0.5 {
			return boom
		}
		yDot[0] = 1
		return nil
	}}
	it := newIntegrator(t, 1e-8, 1e-8)
	y := make([]float64, 1)
	_, err := it.Integrate(sys, 0, []float64{0}, 2, y)
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want the user error unchanged", err)
	}
}

func TestNumericalStall(t *testing.T) {
	it, err := New(tableau.DormandPrince54(), 1e-3, 10, mustTol(t, 1e-14, 1e-14))
	if err != nil {
		t.Fatal(err)
	}
	sys := ode.SystemFunc{N: 1, F: func(t float64, y, yDot []float64) error {
		yDot[0] = -1e6 * y[0]
		return nil
	}}
	y := make([]float64, 1)
	_, err = it.Integrate(sys, 0, []float64{1}, 1, y)
	var stall ode.StallError
	if !errors.As(err, &stall) {
		t.Fatalf("got %v, want StallError", err)
	}
}

func TestConfigErrors(t *testing.T) {
	tol := mustTol(t, 1e-8, 1e-8)
	if _, err := New(tableau.DormandPrince54(), -1, 10, tol); err == nil {
		t.Error("negative min step accepted")
	}
	if _, err := New(tableau.DormandPrince54(), 1, 0.5, tol); err == nil {
		t.Error("inverted step bounds accepted")
	}

	it := newIntegrator(t, 1e-8, 1e-8)
	y := make([]float64, 1)
	if _, err := it.Integrate(decaySys, 0, []float64{1, 2}, 4, y); err == nil {
		t.Error("dimension mismatch accepted")
	}
	if _, err := it.Integrate(decaySys, 1, []float64{1}, 1, y); err == nil {
		t.Error("empty integration interval accepted")
	}

	vtol, err := ode.NewVectorTolerances([]float64{1e-8, 1e-8}, []float64{1e-8, 1e-8})
	if err != nil {
		t.Fatal(err)
	}
	it2, err := New(tableau.DormandPrince54(), 1e-12, 10, vtol)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := it2.Integrate(decaySys, 0, []float64{1}, 4, y); err == nil {
		t.Error("tolerance vector dimension mismatch accepted")
	}
}

func TestRecorderSampling(t *testing.T) {
	it := newIntegrator(t, 1e-10, 1e-10)
	res, err := it.Solve(decaySys, 0, []float64{1}, 2, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Times) != 9 {
		t.Fatalf("got %d samples, want 9 (0 to 2 every 0.25)", len(res.Times))
	}
	for i, tc := range res.Times {
		want := math.Exp(-tc)
		if math.Abs(res.States[i][0]-want) > 1e-7 {
			t.Errorf("sample %d at t=%v: %v, want %v", i, tc, res.States[i][0], want)
		}
	}
	if res.Steps == 0 || res.Evaluations == 0 {
		t.Error("run statistics missing")
	}
	if res.FinalTime != 2 {
		t.Errorf("final time %v, want 2", res.FinalTime)
	}
}

func TestFehlbergAndBogackiShampine(t *testing.T) {
	for _, tab := range []*tableau.Tableau{tableau.Fehlberg45(), tableau.BogackiShampine23()} {
		it, err := New(tab, 1e-12, 10, mustTol(t, 1e-9, 1e-9))
		if err != nil {
			t.Fatal(err)
		}
		y := make([]float64, 1)
		if _, err := it.Integrate(decaySys, 0, []float64{1}, 4, y); err != nil {
			t.Fatalf("%s: %v", tab.Name, err)
		}
		if math.Abs(y[0]-math.Exp(-4)) > 1e-7 {
			t.Errorf("%s: y(4) = %v, want %v", tab.Name, y[0], math.Exp(-4))
		}
	}
}

func TestObserverSeesMonotonicSteps(t *testing.T) {
	it := newIntegrator(t, 1e-8, 1e-8)
	last := math.Inf(-1)
	ok := true
	it.AddObserver(observerFunc{
		init: func(t0 float64, y0 []float64, t1 float64) { last = t0 },
		step: func(interp ode.Interpolation, isLast bool) {
			if interp.CurrentTime() <= interp.PreviousTime() {
				ok = false
			}
			if interp.PreviousTime() != last {
				ok = false
			}
			last = interp.CurrentTime()
		},
	})
	y := make([]float64, 2)
	if _, err := it.Integrate(harmonicSys, 0, []float64{1, 0}, 10, y); err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("observed steps are not contiguous and strictly increasing")
	}
}
