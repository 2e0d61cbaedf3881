package config

import (
	"math"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Problem != "pendulum" {
		t.Errorf("expected problem pendulum, got %s", cfg.Problem)
	}
	if cfg.Method != "dopri5" {
		t.Errorf("expected method dopri5, got %s", cfg.Method)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.Method = "rk9000" },
		func(c *Config) { c.Problem = "teapot" },
		func(c *Config) { c.AbsTol = 0 },
		func(c *Config) { c.RelTol = -1 },
		func(c *Config) { c.Duration = 0 },
	} {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", cfg)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")

	cfg := DefaultConfig()
	cfg.Problem = "vanderpol"
	cfg.InitState = []float64{2, 0}
	cfg.Params = map[string]float64{"mu": 3.0}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Problem != "vanderpol" || loaded.Params["mu"] != 3.0 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if loaded.AbsTol != DefaultAbsTol {
		t.Errorf("defaults not applied on load: abs_tol=%g", loaded.AbsTol)
	}
}

func TestBuildProblemAppliesParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Problem = "vanderpol"
	cfg.Params = map[string]float64{"mu": 4.0}

	p, y0, err := cfg.BuildProblem()
	if err != nil {
		t.Fatal(err)
	}
	if len(y0) != p.Dim() {
		t.Fatalf("init state dim %d, want %d", len(y0), p.Dim())
	}
	yDot := make([]float64, 2)
	// at (0, 1): dy/dt = mu*(1-0)*1 - 0 = mu
	if err := p.Derivatives(0, []float64{0, 1}, yDot); err != nil {
		t.Fatal(err)
	}
	if math.Abs(yDot[1]-4.0) > 1e-15 {
		t.Errorf("mu override not applied: dy/dt = %g, want 4", yDot[1])
	}
}

func TestBuildProblemRejectsBadInitState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitState = []float64{1, 2, 3}
	if _, _, err := cfg.BuildProblem(); err == nil {
		t.Error("expected dimension error")
	}
}

func TestBuildIntegratorRunsScenario(t *testing.T) {
	cfg := GetPreset("decay", "unit")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	p, y0, err := cfg.BuildProblem()
	if err != nil {
		t.Fatal(err)
	}
	it, err := cfg.BuildIntegrator(p)
	if err != nil {
		t.Fatal(err)
	}
	res, err := it.Solve(p, cfg.Start, y0, cfg.End(), cfg.SampleDt)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Exp(-5.0)
	if math.Abs(res.States[len(res.States)-1][0]-want) > 1e-6 {
		t.Errorf("y(5) = %g, want %g", res.States[len(res.States)-1][0], want)
	}
}

func TestBuildIntegratorRegistersEvents(t *testing.T) {
	cfg := GetPreset("bouncing_ball", "drop")
	p, y0, err := cfg.BuildProblem()
	if err != nil {
		t.Fatal(err)
	}
	it, err := cfg.BuildIntegrator(p)
	if err != nil {
		t.Fatal(err)
	}
	res, err := it.Solve(p, cfg.Start, y0, cfg.End(), cfg.SampleDt)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Events) == 0 {
		t.Error("expected at least one bounce event")
	}
	// first impact of a drop from 10m
	want := math.Sqrt(2 * 10 / 9.81)
	if math.Abs(res.Events[0].Time-want) > 1e-6 {
		t.Errorf("first bounce at %g, want %g", res.Events[0].Time, want)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("pendulum", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "small"); cfg != nil {
		t.Error("expected nil for nonexistent problem")
	}
}

func TestListPresets(t *testing.T) {
	if presets := ListPresets("pendulum"); len(presets) == 0 {
		t.Error("expected presets for pendulum")
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent problem")
	}
}
