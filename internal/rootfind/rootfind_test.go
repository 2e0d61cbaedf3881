package rootfind

import (
	"errors"
	"math"
	"testing"
)

func solvers() map[string]Solver {
	return map[string]Solver{
		"pegasus":   NewPegasus(1e-14, 1e-12),
		"bisection": NewBisection(1e-14, 1e-10),
	}
}

func TestSolveCosine(t *testing.T) {
	for name, s := range solvers() {
		root, err := s.Solve(math.Cos, 1, 2, 100)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if math.Abs(root-math.Pi/2) > 1e-9 {
			t.Errorf("%s: root %v, want pi/2", name, root)
		}
	}
}

func TestSolveReversedBracket(t *testing.T) {
	for name, s := range solvers() {
		root, err := s.Solve(math.Cos, 2, 1, 100)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if math.Abs(root-math.Pi/2) > 1e-9 {
			t.Errorf("%s: root %v, want pi/2", name, root)
		}
	}
}

func TestSolveEndpointZero(t *testing.T) {
	f := func(x float64) float64 { return x }
	for name, s := range solvers() {
		root, err := s.Solve(f, 0, 1, 100)
		if err != nil || root != 0 {
			t.Errorf("%s: got root=%v err=%v, want exact endpoint zero", name, root, err)
		}
	}
}

func TestNoBracket(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	for name, s := range solvers() {
		_, err := s.Solve(f, -1, 1, 100)
		var nb ErrNoBracket
		if !errors.As(err, &nb) {
			t.Errorf("%s: got %v, want ErrNoBracket", name, err)
		}
	}
}

func TestMaxIterations(t *testing.T) {
	s := NewBisection(0, 1e-300)
	_, err := s.Solve(math.Cos, 1, 2, 3)
	var mi ErrMaxIterations
	if !errors.As(err, &mi) {
		t.Fatalf("got %v, want ErrMaxIterations", err)
	}
	if mi.Iterations != 3 {
		t.Errorf("iteration count %d, want 3", mi.Iterations)
	}
}

func TestPegasusFasterThanBisection(t *testing.T) {
	// Pegasus should converge on a smooth function in far fewer calls.
	count := 0
	f := func(x float64) float64 {
		count++
		return math.Sin(x) - 0.5
	}
	p := NewPegasus(1e-14, 1e-12)
	if _, err := p.Solve(f, 0, 1, 100); err != nil {
		t.Fatal(err)
	}
	if count > 25 {
		t.Errorf("pegasus used %d evaluations, expected superlinear convergence", count)
	}
}

func TestSteepFunction(t *testing.T) {
	f := func(x float64) float64 { return math.Expm1(50 * (x - 0.3)) }
	for name, s := range solvers() {
		root, err := s.Solve(f, 0, 1, 200)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if math.Abs(root-0.3) > 1e-8 {
			t.Errorf("%s: root %v, want 0.3", name, root)
		}
	}
}
