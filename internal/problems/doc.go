// Package problems provides the benchmark initial value problems wired
// into the CLI and the test suite.
//
// Each model implements [ode.System]; most also implement
// [ode.Configurable] for runtime parameter adjustment. Models with a
// closed-form solution expose it through Exact so accuracy tests can
// compare against the truth, and conservative models implement
// [ode.Hamiltonian] for energy drift monitoring:
//
//   - [Decay]: scalar exponential decay, exactly solvable
//   - [Harmonic]: undamped harmonic oscillator, exactly solvable
//   - [Pendulum]: damped nonlinear pendulum
//   - [VanDerPol]: Van der Pol limit cycle oscillator
//   - [BouncingBall]: free fall with an impact event handler
package problems
