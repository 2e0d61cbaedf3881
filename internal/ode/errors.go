package ode

import "fmt"

// StallError reports that the step size would have to shrink below the
// configured minimum to satisfy the error tolerance. The last valid time
// is included so callers know where integration stopped making progress.
type StallError struct {
	Time    float64
	MinStep float64
	Needed  float64
}

func (e StallError) Error() string {
	return fmt.Sprintf("t=%.6g: minimal step size %.3e reached, integration needs %.3e", e.Time, e.MinStep, e.Needed)
}

// ConvergenceError reports that an event crossing could not be located
// within the configured iteration budget. Distinct from StallError so
// callers can tell accuracy failures from event detection failures.
type ConvergenceError struct {
	Time       float64
	Iterations int
}

func (e ConvergenceError) Error() string {
	return fmt.Sprintf("event root finding did not converge near t=%.6g after %d iterations", e.Time, e.Iterations)
}

// DimensionError reports a mismatch detected before any stepping.
type DimensionError struct {
	Expected int
	Got      int
	What     string
}

func (e DimensionError) Error() string {
	return fmt.Sprintf("%s has dimension %d, expected %d", e.What, e.Got, e.Expected)
}
