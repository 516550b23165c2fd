package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/drivesim/internal/audio"
	"github.com/san-kum/drivesim/internal/automation"
	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/control"
	"github.com/san-kum/drivesim/internal/dynamo"
	"github.com/san-kum/drivesim/internal/experiment"
	"github.com/san-kum/drivesim/internal/metrics"
	"github.com/san-kum/drivesim/internal/optim"
	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/storage"
	"github.com/san-kum/drivesim/internal/tui"
	"github.com/san-kum/drivesim/internal/viz"
)

func parseParams(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for name, value := range raw {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	registry := newRegistry()
	vcfg, err := vehicleConfig(registry, args)
	if err != nil {
		return err
	}
	engineParams, err := parseParams(params)
	if err != nil {
		return err
	}
	driverParams, err := parseParams(drvParams)
	if err != nil {
		return err
	}

	kind := driverKind
	if kind == "" {
		kind = vcfg.Driver.Kind
	}

	exp, err := experiment.BuildFromConfig(registry, vcfg, experiment.Config{
		Preset:      vcfg.Name,
		Driver:      kind,
		Dt:          dt,
		Duration:    duration,
		SampleEvery: sampleEvery,
		Slope:       slope,
		Params:       engineParams,
		DriverParams: driverParams,
	}, logger)
	if err != nil {
		return err
	}

	inst, err := metrics.NewInstruments(vcfg.Name)
	if err != nil {
		return err
	}
	defer inst.Close()
	exp.GetSimulator().AddObserver(inst)

	if live {
		r := tui.NewLiveRenderer(vcfg.Name, frameRate, vcfg.ECU.RevLimiterRPM)
		exp.GetSimulator().AddObserver(r)
		r.Start()
		defer r.Stop()
	}

	fmt.Printf("running %s with the %s driver...\n", vcfg.Name, kind)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		logger.Warn().Err(err).Int("steps", result.StepsTaken).Msg("run interrupted, saving partial result")
	}
	elapsed := time.Since(start)

	run := exp.Config()
	meta, err := saveRun(storage.RunMetadata{
		Vehicle:      vcfg.Name,
		Driver:       kind,
		Dt:           run.Dt,
		Duration:     run.Duration,
		Integrator:   vcfg.Integrator,
		Transmission: vcfg.Transmission.Type,
		Layout:       vcfg.Drive.Layout,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	printSummary(meta, result)
	return nil
}

func saveRun(meta storage.RunMetadata, result *sim.Result) (*storage.RunMetadata, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	saved, err := st.Save(meta, result)
	if err != nil {
		return nil, err
	}
	indexRun(saved)
	return saved, nil
}

func printSummary(meta *storage.RunMetadata, result *sim.Result) {
	fmt.Printf("run id: %s\n", meta.ID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.4f\n", name, result.Metrics[name])
	}
	final := result.Final
	fmt.Printf("\nfinal: %s, %.0f rpm, gear %s, %.1f km/h\n", final.ECUState, final.EngineRPM, final.GearLabel, final.SpeedKmh())
}

func runLive(cmd *cobra.Command, args []string) error {
	registry := newRegistry()
	vcfg, err := vehicleConfig(registry, args)
	if err != nil {
		return err
	}

	var (
		manual *control.Manual
		driver sim.Driver
	)
	if autopilot {
		d, err := registry.GetDriver("cruise", vcfg)
		if err != nil {
			return err
		}
		driver = d
	} else {
		manual = control.NewManual()
		driver = manual
	}

	exp := experiment.New(experiment.Config{Preset: vcfg.Name, Dt: dt, Slope: slope})
	// the dashboard owns the terminal, so the simulation logs nowhere
	if err := exp.Setup(vcfg, driver, nil, zerolog.Nop()); err != nil {
		return err
	}

	m := viz.NewModel(exp.GetSimulator(), manual, exp.Config().Dt, vcfg.Name)
	if tunable, ok := driver.(dynamo.Configurable); ok {
		m = m.WithTuning("cruise", tunable)
	} else {
		m = m.WithTuning("engine", exp.Vehicle().Engine)
	}
	if sound {
		player := audio.NewPlayer(vcfg.Engine.Cylinders)
		if err := player.Start(); err != nil {
			logger.Warn().Err(err).Msg("engine sound disabled")
		} else {
			defer player.Stop()
			m = m.WithSound(player)
		}
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func benchPreset(cmd *cobra.Command, args []string) error {
	registry := newRegistry()
	vcfg, err := vehicleConfig(registry, args)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s\n\n", vcfg.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, step := range []float64{1.0 / 60, 1.0 / 120, 1.0 / 240} {
		exp, err := experiment.BuildFromConfig(registry, vcfg, experiment.Config{
			Preset: vcfg.Name, Dt: step, Duration: benchTime, SampleEvery: 100,
		}, zerolog.Nop())
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(cmd.Context())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%.4fs\t%d\t%v\t%.0f\n",
			step, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	n := workers
	if n <= 0 {
		n = settings.Workers
	}
	factory := func(i int) (*sim.Simulator, error) {
		cfg, err := vehicleConfig(registry, args)
		if err != nil {
			return nil, err
		}
		exp, err := experiment.BuildFromConfig(registry, cfg, experiment.Config{Preset: cfg.Name}, zerolog.Nop())
		if err != nil {
			return nil, err
		}
		return exp.GetSimulator(), nil
	}

	cfg := sim.Config{Dt: vcfg.Dt, Duration: benchTime, SampleEvery: 100}
	start := time.Now()
	results, err := sim.NewEnsemble(factory, runs, n).Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	total := 0
	for _, r := range results {
		total += r.StepsTaken
	}
	fmt.Printf("\n%d parallel runs on %d workers: %d steps in %v (%.0f steps/sec)\n",
		runs, n, total, elapsed, float64(total)/elapsed.Seconds())
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	s, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	registry := newRegistry()
	preset := s.Preset
	if preset == "" {
		preset = config.DefaultPreset
	}
	vcfg, err := registry.GetPreset(preset)
	if err != nil {
		return err
	}

	result, err := automation.RunScenario(cmd.Context(), s, registry, logger)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		logger.Warn().Err(err).Msg("scenario interrupted, saving partial result")
	}

	step := s.Dt
	if step == 0 {
		step = vcfg.Dt
	}
	meta, err := saveRun(storage.RunMetadata{
		Vehicle:      vcfg.Name,
		Driver:       "scenario:" + s.Name,
		Dt:           step,
		Duration:     s.Duration,
		Integrator:   vcfg.Integrator,
		Transmission: vcfg.Transmission.Type,
		Layout:       vcfg.Drive.Layout,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("scenario %s on %s\n", s.Name, vcfg.Name)
	printSummary(meta, result)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	sweep := &automation.ParameterSweep{
		Preset:    presetArg(args),
		Driver:    driverKind,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  paramSteps,
		Duration:  duration,
		Dt:        dt,
	}

	results, err := automation.RunSweep(cmd.Context(), sweep, newRegistry(), logger)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}

	names := make([]string, 0, len(results[0].Metrics))
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, paramName)
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w, "\tfinal_rpm")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f", r.ParamValue)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.3f", r.Metrics[name])
		}
		fmt.Fprintf(w, "\t%.0f\n", r.Final.EngineRPM)
	}
	return w.Flush()
}

func tuneCruise(cmd *cobra.Command, args []string) error {
	tuning := &optim.CruiseTuning{
		Preset:   presetArg(args),
		Kp:       kpGrid,
		Ki:       kiGrid,
		Duration: tuneTime,
		Settle:   settleTime,
	}

	fmt.Printf("searching %d gain pairs on %s...\n", len(kpGrid)*len(kiGrid), tuning.Preset)
	best, err := tuning.Tune(cmd.Context(), newRegistry(), logger)
	if err != nil {
		return err
	}

	fmt.Printf("best kp=%.3f ki=%.3f (score %.3f, %d evaluated, %d failed)\n",
		best.Params["kp"], best.Params["ki"], best.Score, best.Evaluated, best.Failed)
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	n := workers
	if n <= 0 {
		n = settings.Workers
	}
	mc := &automation.MonteCarloConfig{
		Preset:           presetArg(args),
		Driver:           mcDriver,
		BaseTemperatureC: baseC,
		Perturbation:     spreadC,
		NumTrials:        trials,
		Duration:         mcDuration,
		Seed:             seed,
		Workers:          n,
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), mc, newRegistry(), logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tAMBIENT\tSTARTED\tSTALLS\tFINAL RPM")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.1f°C\t%v\t%d\t%.0f\n", r.TrialID, r.TemperatureC, r.Started, r.Stalls, r.FinalRPM)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	started, failed := automation.MonteCarloStats(results)
	fmt.Printf("\nstarted: %d  failed: %d\n", started, failed)
	return nil
}
