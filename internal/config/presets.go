package config

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"small": {
			Problem: "pendulum", Method: "dopri5", Duration: 20.0,
			InitState: []float64{0.2, 0.0},
		},
		"large": {
			Problem: "pendulum", Method: "dopri5", Duration: 20.0,
			InitState: []float64{2.5, 0.0},
		},
		"spinning": {
			Problem: "pendulum", Method: "dopri5", Duration: 30.0,
			InitState: []float64{0.1, 8.0},
		},
	},
	"harmonic": {
		"unit": {
			Problem: "harmonic", Method: "dopri5", Duration: 20.0,
			InitState: []float64{1.0, 0.0},
		},
		"fast": {
			Problem: "harmonic", Method: "rkf45", Duration: 10.0,
			InitState: []float64{1.0, 0.0},
			Params:    map[string]float64{"omega": 20.0},
		},
	},
	"vanderpol": {
		"limit_cycle": {
			Problem: "vanderpol", Method: "dopri5", Duration: 30.0,
			InitState: []float64{2.0, 0.0},
		},
		"relaxation": {
			Problem: "vanderpol", Method: "dopri5", Duration: 60.0,
			InitState: []float64{2.0, 0.0},
			Params:    map[string]float64{"mu": 5.0},
		},
	},
	"bouncing_ball": {
		"drop": {
			Problem: "bouncing_ball", Method: "dopri5", Duration: 6.0,
			InitState: []float64{10.0, 0.0},
		},
		"rubber": {
			Problem: "bouncing_ball", Method: "bs23", Duration: 10.0,
			InitState: []float64{10.0, 0.0},
			Params:    map[string]float64{"restitution": 0.95},
		},
	},
	"decay": {
		"unit": {
			Problem: "decay", Method: "bs23", Duration: 5.0,
			InitState: []float64{1.0},
		},
	},
}

// GetPreset returns a copy of the named preset with the solver defaults
// filled in, or nil when it does not exist.
func GetPreset(problem, preset string) *Config {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	cfg, ok := problemPresets[preset]
	if !ok {
		return nil
	}
	out := DefaultConfig()
	out.Problem = cfg.Problem
	out.Method = cfg.Method
	out.Duration = cfg.Duration
	out.InitState = append([]float64{}, cfg.InitState...)
	if len(cfg.Params) > 0 {
		out.Params = make(map[string]float64, len(cfg.Params))
		for k, v := range cfg.Params {
			out.Params[k] = v
		}
	}
	return out
}

func ListPresets(problem string) []string {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(problemPresets))
	for name := range problemPresets {
		names = append(names, name)
	}
	return names
}
