// Package tableau holds the Butcher coefficient tables for the embedded
// Runge-Kutta pairs. Tables are pure data: a single generic stepper
// consumes them, there is no per-method code.
package tableau

import "fmt"

// Tableau describes one embedded explicit Runge-Kutta pair.
//
//	 c | A
//	   |--------
//	   | B   (high order, propagated)
//	   | B*  (low order, error estimate only)
//
// E holds B - B* so the error vector can be combined directly from the
// stage derivatives. A is lower triangular (explicit method); row 0 is nil.
// Instances are immutable and safe to share across integrations.
type Tableau struct {
	Name   string
	Order  int // order of the propagated solution, drives step control
	FSAL   bool
	C      []float64
	A      [][]float64
	B      []float64
	E      []float64
}

func (t *Tableau) Stages() int { return len(t.C) }

// Registry of the available pairs, keyed by the names the config and CLI
// accept.
var registry = map[string]*Tableau{
	"dopri5": DormandPrince54(),
	"rkf45":  Fehlberg45(),
	"bs23":   BogackiShampine23(),
}

func ByName(name string) (*Tableau, error) {
	t, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown method %q (have dopri5, rkf45, bs23)", name)
	}
	return t, nil
}

func Names() []string { return []string{"dopri5", "rkf45", "bs23"} }

// DormandPrince54 is the Dormand-Prince 5(4) pair, the default method.
// The seventh stage equals the derivative at the new point (FSAL).
func DormandPrince54() *Tableau {
	return &Tableau{
		Name:  "Dormand-Prince 5(4)",
		Order: 5,
		FSAL:  true,
		C:     []float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1},
		A: [][]float64{
			nil,
			{1.0 / 5.0},
			{3.0 / 40.0, 9.0 / 40.0},
			{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
			{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
			{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
			{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
		},
		B: []float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
		E: []float64{
			35.0/384.0 - 5179.0/57600.0,
			0,
			500.0/1113.0 - 7571.0/16695.0,
			125.0/192.0 - 393.0/640.0,
			-2187.0/6784.0 + 92097.0/339200.0,
			11.0/84.0 - 187.0/2100.0,
			-1.0 / 40.0,
		},
	}
}

// Fehlberg45 is the classical Runge-Kutta-Fehlberg 4(5) pair.
func Fehlberg45() *Tableau {
	return &Tableau{
		Name:  "Fehlberg 4(5)",
		Order: 5,
		FSAL:  false,
		C:     []float64{0, 1.0 / 4.0, 3.0 / 8.0, 12.0 / 13.0, 1, 1.0 / 2.0},
		A: [][]float64{
			nil,
			{1.0 / 4.0},
			{3.0 / 32.0, 9.0 / 32.0},
			{1932.0 / 2197.0, -7200.0 / 2197.0, 7296.0 / 2197.0},
			{439.0 / 216.0, -8, 3680.0 / 513.0, -845.0 / 4104.0},
			{-8.0 / 27.0, 2, -3544.0 / 2565.0, 1859.0 / 4104.0, -11.0 / 40.0},
		},
		B: []float64{16.0 / 135.0, 0, 6656.0 / 12825.0, 28561.0 / 56430.0, -9.0 / 50.0, 2.0 / 55.0},
		E: []float64{
			16.0/135.0 - 25.0/216.0,
			0,
			6656.0/12825.0 - 1408.0/2565.0,
			28561.0/56430.0 - 2197.0/4104.0,
			-9.0/50.0 + 1.0/5.0,
			2.0 / 55.0,
		},
	}
}

// BogackiShampine23 is the low-cost 3(2) pair, useful when tolerances are
// loose. FSAL like Dormand-Prince.
func BogackiShampine23() *Tableau {
	return &Tableau{
		Name:  "Bogacki-Shampine 3(2)",
		Order: 3,
		FSAL:  true,
		C:     []float64{0, 1.0 / 2.0, 3.0 / 4.0, 1},
		A: [][]float64{
			nil,
			{1.0 / 2.0},
			{0, 3.0 / 4.0},
			{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0},
		},
		B: []float64{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0, 0},
		E: []float64{
			2.0/9.0 - 7.0/24.0,
			1.0/3.0 - 1.0/4.0,
			4.0/9.0 - 1.0/3.0,
			-1.0 / 8.0,
		},
	}
}
