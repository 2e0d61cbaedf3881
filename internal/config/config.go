// Package config holds the yaml scenario description the CLI runs from:
// which problem, which method, the tolerances and the time span.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/odeint/internal/events"
	"github.com/san-kum/odeint/internal/ode"
	"github.com/san-kum/odeint/internal/problems"
	"github.com/san-kum/odeint/internal/solver"
	"github.com/san-kum/odeint/internal/tableau"
)

const (
	DefaultAbsTol   = 1e-8
	DefaultRelTol   = 1e-8
	DefaultMinStep  = 1e-10
	DefaultMaxStep  = 1.0
	DefaultDuration = 10.0
	DefaultSampleDt = 0.05
)

type Config struct {
	Problem     string             `yaml:"problem"`
	Method      string             `yaml:"method"`
	AbsTol      float64            `yaml:"abs_tol"`
	RelTol      float64            `yaml:"rel_tol"`
	MinStep     float64            `yaml:"min_step"`
	MaxStep     float64            `yaml:"max_step"`
	InitialStep float64            `yaml:"initial_step"`
	Start       float64            `yaml:"start"`
	Duration    float64            `yaml:"duration"`
	SampleDt    float64            `yaml:"sample_dt"`
	InitState   []float64          `yaml:"init_state"`
	Params      map[string]float64 `yaml:"params"`
	Events      EventConfig        `yaml:"events"`
}

type EventConfig struct {
	MaxCheck      float64 `yaml:"max_check"`
	Convergence   float64 `yaml:"convergence"`
	MaxIterations int     `yaml:"max_iterations"`
}

func DefaultConfig() *Config {
	return &Config{
		Problem:  "pendulum",
		Method:   "dopri5",
		AbsTol:   DefaultAbsTol,
		RelTol:   DefaultRelTol,
		MinStep:  DefaultMinStep,
		MaxStep:  DefaultMaxStep,
		Duration: DefaultDuration,
		SampleDt: DefaultSampleDt,
		Events: EventConfig{
			MaxCheck:      0.1,
			Convergence:   1e-9,
			MaxIterations: 100,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := tableau.ByName(c.Method); err != nil {
		return err
	}
	if _, err := problems.New(c.Problem); err != nil {
		return err
	}
	if c.AbsTol <= 0 || c.RelTol < 0 {
		return fmt.Errorf("tolerances must be positive, got abs=%g rel=%g", c.AbsTol, c.RelTol)
	}
	if c.Duration == 0 {
		return fmt.Errorf("duration must be non-zero")
	}
	return nil
}

// End is the integration target time.
func (c *Config) End() float64 { return c.Start + c.Duration }

// BuildProblem constructs the configured system with its parameter
// overrides and resolves the initial state.
func (c *Config) BuildProblem() (problems.Problem, []float64, error) {
	p, err := problems.New(c.Problem)
	if err != nil {
		return nil, nil, err
	}
	if len(c.Params) > 0 {
		cfg, ok := p.(ode.Configurable)
		if !ok {
			return nil, nil, fmt.Errorf("problem %s takes no params", c.Problem)
		}
		for name, value := range c.Params {
			if err := cfg.SetParam(name, value); err != nil {
				return nil, nil, err
			}
		}
	}
	y0 := c.InitState
	if len(y0) == 0 {
		y0 = p.DefaultState()
	}
	if len(y0) != p.Dim() {
		return nil, nil, ode.DimensionError{Expected: p.Dim(), Got: len(y0), What: "init_state"}
	}
	return p, y0, nil
}

// BuildIntegrator constructs the integrator for the scenario,
// registering the problem itself as an event handler when it is one.
func (c *Config) BuildIntegrator(p problems.Problem) (*solver.Integrator, error) {
	tab, err := tableau.ByName(c.Method)
	if err != nil {
		return nil, err
	}
	tol, err := ode.NewTolerances(c.AbsTol, c.RelTol)
	if err != nil {
		return nil, err
	}
	it, err := solver.New(tab, c.MinStep, c.MaxStep, tol)
	if err != nil {
		return nil, err
	}
	if c.InitialStep > 0 {
		it.SetInitialStep(c.InitialStep)
	}
	if h, ok := p.(events.Handler); ok {
		it.AddEventHandler(h, c.Events.MaxCheck, c.Events.Convergence, c.Events.MaxIterations)
	}
	return it, nil
}
