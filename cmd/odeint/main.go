package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/odeint/internal/config"
	"github.com/san-kum/odeint/internal/export"
	"github.com/san-kum/odeint/internal/metrics"
	"github.com/san-kum/odeint/internal/problems"
	"github.com/san-kum/odeint/internal/solver"
	"github.com/san-kum/odeint/internal/store"
	"github.com/san-kum/odeint/internal/tableau"
	"github.com/san-kum/odeint/internal/tui"
)

var (
	dataDir     string
	verbose     bool
	method      string
	absTol      float64
	relTol      float64
	minStep     float64
	maxStep     float64
	initialStep float64
	duration    float64
	sampleDt    float64
	initState   string
	params      []string
	configFile  string
	preset      string
	// Phase plot axes
	xAxis int
	yAxis int
	// SVG output
	svgOut   string
	svgColor string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "odeint",
		Short: "adaptive runge-kutta integration lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(
				tint.NewHandler(os.Stderr, &tint.Options{
					Level:      level,
					TimeFormat: "15:04:05",
				}),
			))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odeint", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [problem]",
		Short: "integrate a problem and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProblem,
	}
	addScenarioFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [problem]",
		Short: "integrate and replay the trajectory in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list the available runge-kutta pairs",
		RunE:  listMethods,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of a stored run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	phaseCmd.Flags().StringVar(&svgOut, "out", "phase.svg", "output file")
	phaseCmd.Flags().StringVar(&svgColor, "color", "#00ff88", "stroke color")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list available presets for a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for problem: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	problemsCmd := &cobra.Command{
		Use:   "problems",
		Short: "list the available problems",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range problems.Names() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, methodsCmd, listCmd, plotCmd, phaseCmd, exportJSONCmd, exportCSVCmd, presetsCmd, problemsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&method, "method", "dopri5", "runge-kutta pair")
	cmd.Flags().Float64Var(&absTol, "abs-tol", config.DefaultAbsTol, "absolute tolerance")
	cmd.Flags().Float64Var(&relTol, "rel-tol", config.DefaultRelTol, "relative tolerance")
	cmd.Flags().Float64Var(&minStep, "min-step", config.DefaultMinStep, "minimal step size")
	cmd.Flags().Float64Var(&maxStep, "max-step", config.DefaultMaxStep, "maximal step size")
	cmd.Flags().Float64Var(&initialStep, "initial-step", 0, "forced first step size (0 = estimate)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "integration time")
	cmd.Flags().Float64Var(&sampleDt, "sample", config.DefaultSampleDt, "sampling interval for output")
	cmd.Flags().StringVar(&initState, "state", "", "initial state, comma separated")
	cmd.Flags().StringArrayVar(&params, "param", nil, "problem parameter override, name=value")
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildScenario merges preset, config file and flags into one scenario,
// flags winning over the file and the file over the preset.
func buildScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Problem = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Problem, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Problem))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 {
			loaded.Problem = cfg.Problem
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("method") {
		cfg.Method = method
	}
	if cmd.Flags().Changed("abs-tol") {
		cfg.AbsTol = absTol
	}
	if cmd.Flags().Changed("rel-tol") {
		cfg.RelTol = relTol
	}
	if cmd.Flags().Changed("min-step") {
		cfg.MinStep = minStep
	}
	if cmd.Flags().Changed("max-step") {
		cfg.MaxStep = maxStep
	}
	if cmd.Flags().Changed("initial-step") {
		cfg.InitialStep = initialStep
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("sample") {
		cfg.SampleDt = sampleDt
	}
	if initState != "" {
		state, err := parseState(initState)
		if err != nil {
			return nil, err
		}
		cfg.InitState = state
	}
	for _, kv := range params {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --param %q, want name=value", kv)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed --param %q: %w", kv, err)
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[name] = v
	}

	return cfg, cfg.Validate()
}

func parseState(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	state := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed --state %q: %w", s, err)
		}
		state = append(state, v)
	}
	return state, nil
}

func solveScenario(cfg *config.Config) (*solver.Result, map[string]float64, error) {
	p, y0, err := cfg.BuildProblem()
	if err != nil {
		return nil, nil, err
	}
	it, err := cfg.BuildIntegrator(p)
	if err != nil {
		return nil, nil, err
	}

	drift := metrics.NewEnergyDrift(p)
	stats := metrics.NewStepStats()
	it.AddObserver(drift)
	it.AddObserver(stats)

	slog.Debug("starting integration",
		"problem", cfg.Problem, "method", cfg.Method,
		"abs_tol", cfg.AbsTol, "rel_tol", cfg.RelTol, "duration", cfg.Duration)
	start := time.Now()
	res, err := it.Solve(p, cfg.Start, y0, cfg.End(), cfg.SampleDt)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("integration finished",
		"elapsed", time.Since(start), "steps", res.Steps, "evaluations", res.Evaluations)

	m := map[string]float64{
		drift.Name(): drift.Value(),
		stats.Name(): stats.Value(),
	}
	return res, m, nil
}

func runProblem(cmd *cobra.Command, args []string) error {
	cfg, err := buildScenario(cmd, args)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("integrating %s with %s...\n", cfg.Problem, cfg.Method)
	res, m, err := solveScenario(cfg)
	if err != nil {
		return err
	}

	runID, err := st.Save(cfg.Problem, cfg.Method, cfg.AbsTol, cfg.RelTol, cfg.Duration, m, res)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("final time: %g\n", res.FinalTime)
	fmt.Printf("steps: %d\n", res.Steps)
	fmt.Printf("evaluations: %d\n", res.Evaluations)
	if len(res.Events) > 0 {
		fmt.Printf("events: %d (first at t=%.6f)\n", len(res.Events), res.Events[0].Time)
	}
	fmt.Println("\nmetrics:")
	for name, val := range m {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildScenario(cmd, args)
	if err != nil {
		return err
	}
	res, _, err := solveScenario(cfg)
	if err != nil {
		return err
	}
	return tui.Run(cfg.Problem, cfg.Method, res)
}

func listMethods(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tORDER\tSTAGES\tFSAL")
	for _, name := range tableau.Names() {
		tab, err := tableau.ByName(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\n", tab.Name, tab.Order, tab.Stages(), tab.FSAL)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROBLEM\tMETHOD\tTIME\tDURATION\tSTEPS\tEVENTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%d\t%d\n",
			run.ID,
			run.Problem,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Steps,
			len(run.Events),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s (%s)\n", meta.Problem, meta.Method)
	fmt.Printf("samples: %d\n\n", len(states))

	numVars := len(states[0])
	if numVars > 6 {
		numVars = 6
	}

	for varIdx := 0; varIdx < numVars; varIdx++ {
		data := make([]float64, len(states))
		for i := range states {
			if varIdx < len(states[i]) {
				data[i] = states[i][varIdx]
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("y%d vs time", varIdx)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	_ = times

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}
	if len(states[0]) <= xAxis || len(states[0]) <= yAxis {
		return fmt.Errorf("state dimension too small for selected axes")
	}

	points := export.PhasePoints(states, xAxis, yAxis)
	if err := export.WriteSVG(svgOut, points, 800, 600, svgColor); err != nil {
		return err
	}
	fmt.Printf("wrote %s (y%d vs y%d, %d points)\n", svgOut, yAxis, xAxis, len(points))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	res := &solver.Result{
		Times:       times,
		States:      states,
		FinalTime:   meta.FinalTime,
		Evaluations: meta.Evaluations,
		Steps:       meta.Steps,
	}
	for _, ev := range meta.Events {
		res.Events = append(res.Events, solver.EventRecord{Time: ev.Time, Index: ev.Index})
	}

	return store.ExportJSONStdout(meta.Problem, meta.Method, meta.Metrics, res)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for i := range states[0] {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'g', -1, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}
