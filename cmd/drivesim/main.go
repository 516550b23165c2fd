package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/drivesim/internal/automation"
	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/experiment"
	"github.com/san-kum/drivesim/internal/logging"
	"github.com/san-kum/drivesim/internal/storage"
)

var (
	settingsFile string
	dataDir      string
	logLevel     string

	settings   *config.Settings
	logger     zerolog.Logger
	closeLog   func() error
	configFile string

	driverKind  string
	dt          float64
	duration    float64
	slope       float64
	sampleEvery int
	params      map[string]string
	drvParams   map[string]string
	autopilot   bool
	live        bool
	sound       bool
	frameRate   int
	noIndex     bool

	columns   []string
	column    string
	xColumn   string
	yColumn   string
	crossCol  string
	crossAt   float64
	outPath   string
	limit     int
	vehicleID string
	svgX      string
	svgY      string
	svgSize   int

	paramName  string
	paramMin   float64
	paramMax   float64
	paramSteps int

	trials     int
	baseC      float64
	spreadC    float64
	seed       int64
	workers    int
	runs       int
	mcDriver   string
	mcDuration float64
	benchTime  float64

	kpGrid     []float64
	kiGrid     []float64
	tuneTime   float64
	settleTime float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "drivesim",
		Short:         "vehicle drivetrain and suspension simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides settings)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "vehicle config file (yaml)")
	runCmd.Flags().StringVar(&driverKind, "driver", "", "driver kind (default from the vehicle config)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (default from the vehicle config)")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration in seconds (default from the vehicle config)")
	runCmd.Flags().Float64Var(&slope, "slope", 0, "ground slope in radians")
	runCmd.Flags().IntVar(&sampleEvery, "sample", 1, "keep every n-th telemetry row")
	runCmd.Flags().StringToStringVar(&params, "param", nil, "engine parameter override, name=value")
	runCmd.Flags().StringToStringVar(&drvParams, "driver-param", nil, "driver parameter override, name=value")
	runCmd.Flags().BoolVar(&live, "live", false, "print a live view while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 20, "frame rate of the live view")
	runCmd.Flags().BoolVar(&noIndex, "no-index", false, "do not record the run in the index")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "drive a vehicle from the keyboard",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "vehicle config file (yaml)")
	liveCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (default from the vehicle config)")
	liveCmd.Flags().Float64Var(&slope, "slope", 0, "ground slope in radians")
	liveCmd.Flags().BoolVar(&autopilot, "autopilot", false, "let the cruise driver drive; its gains are tunable from the keyboard")
	liveCmd.Flags().BoolVar(&sound, "sound", false, "play engine sound (needs a build with -tags sound)")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "measure simulation throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchPreset,
	}
	benchCmd.Flags().Float64Var(&benchTime, "time", 5, "simulated seconds per run")
	benchCmd.Flags().IntVar(&runs, "runs", 8, "parallel runs")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "worker count (default from settings)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "play a scripted scenario and save the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noIndex, "no-index", false, "do not record the run in the index")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run one simulation per value of an engine parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&driverKind, "driver", "", "driver kind")
	sweepCmd.Flags().StringVar(&paramName, "param", "friction", "engine parameter")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 5, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 25, "last value")
	sweepCmd.Flags().IntVar(&paramSteps, "steps", 5, "number of values")
	sweepCmd.Flags().Float64Var(&duration, "time", 0, "duration in seconds")
	sweepCmd.Flags().Float64Var(&dt, "dt", 0, "timestep")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search cruise driver gains",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneCruise,
	}
	tuneCmd.Flags().Float64SliceVar(&kpGrid, "kp", []float64{0.05, 0.1, 0.15, 0.25}, "proportional gains to try")
	tuneCmd.Flags().Float64SliceVar(&kiGrid, "ki", []float64{0, 0.02, 0.05}, "integral gains to try")
	tuneCmd.Flags().Float64Var(&tuneTime, "time", 20, "duration in seconds")
	tuneCmd.Flags().Float64Var(&settleTime, "settle", 10, "seconds ignored before scoring")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "cold start trials at random ambient temperatures",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().StringVar(&mcDriver, "driver", "idle", "driver kind")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&baseC, "temp", 15, "mean ambient temperature in °C")
	monteCarloCmd.Flags().Float64Var(&spreadC, "spread", 20, "temperature spread in °C")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "worker count (default from settings)")
	monteCarloCmd.Flags().Float64Var(&mcDuration, "time", 6, "duration in seconds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	fastestCmd := &cobra.Command{
		Use:   "fastest",
		Short: "list indexed runs by top speed",
		RunE:  fastestRuns,
	}
	fastestCmd.Flags().IntVar(&limit, "limit", 10, "number of runs")
	fastestCmd.Flags().StringVar(&vehicleID, "vehicle", "", "only runs of this vehicle, newest first")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id|latest]",
		Short: "plot telemetry columns",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "columns", []string{"rpm", "speed", "gear", "clutch_torque"}, "columns to plot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id|latest]",
		Short: "frequency analysis of a telemetry column",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "rpm", "column to analyze")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id|latest]",
		Short: "plot one telemetry column against another",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xColumn, "x", "rpm", "column on the x axis")
	phaseCmd.Flags().StringVar(&yColumn, "y", "clutch_torque", "column on the y axis")
	phaseCmd.Flags().StringVar(&crossCol, "section", "", "only sample where this column rises through --at")
	phaseCmd.Flags().Float64Var(&crossAt, "at", 0, "section threshold")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id|latest]",
		Short: "export run telemetry to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&outPath, "out", "", "output file (default <run_id>.csv)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id|latest]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outPath, "out", "", "output file (default <run_id>.json)")

	exportInfluxCmd := &cobra.Command{
		Use:   "export-influx [run_id|latest]",
		Short: "send run telemetry to InfluxDB, or to a line protocol file",
		Args:  cobra.ExactArgs(1),
		RunE:  exportInflux,
	}
	exportInfluxCmd.Flags().StringVar(&outPath, "out", "", "backup file when no server is reachable (default <run_id>.lp.gz)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id|latest]",
		Short: "draw the ground track, or any two columns, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgX, "x", "x", "column on the x axis")
	exportSVGCmd.Flags().StringVar(&svgY, "y", "z", "column on the y axis")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 600, "image width in pixels")
	exportSVGCmd.Flags().StringVar(&outPath, "out", "", "output file (default <run_id>.svg)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list bundled vehicles and driver kinds",
		RunE:  listPresets,
	}

	infoCmd := &cobra.Command{
		Use:   "info [preset]",
		Short: "print a vehicle config as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  presetInfo,
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, scenarioCmd, sweepCmd, tuneCmd, monteCarloCmd,
		listCmd, fastestCmd, plotCmd, analyzeCmd, phaseCmd,
		exportCSVCmd, exportJSONCmd, exportInfluxCmd, exportSVGCmd, presetsCmd, infoCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// setup loads settings and builds the logger before any command runs.
func setup(cmd *cobra.Command) error {
	s, err := config.LoadSettings(settingsFile)
	if err != nil {
		return err
	}
	if dataDir != "" {
		s.DataDir = dataDir
	}
	if logLevel != "" {
		s.LogLevel = logLevel
	}
	settings = s

	if s.GelfAddr != "" {
		logger, closeLog, err = logging.NewWithGraylog(s.LogLevel, s.LogFormat, os.Stderr, s.GelfAddr)
		if err != nil {
			return err
		}
	} else {
		logger = logging.New(s.LogLevel, s.LogFormat, os.Stderr)
	}
	logger.Debug().Str("command", cmd.Name()).Str("data_dir", s.DataDir).Msg("settings loaded")
	return nil
}

func newRegistry() *experiment.Registry {
	r := experiment.NewRegistry()
	r.RegisterDriver("scenario", automation.DriverFactory)
	return r
}

func presetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return settings.Preset
}

// vehicleConfig reads --config when given, otherwise the preset.
func vehicleConfig(r *experiment.Registry, args []string) (*config.Config, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	return r.GetPreset(presetArg(args))
}

func openStore() (*storage.Store, error) {
	st := storage.New(settings.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

// resolveRun accepts a run id or "latest".
func resolveRun(st *storage.Store, arg string) (*storage.RunMetadata, error) {
	if arg == "latest" {
		return st.Latest()
	}
	return st.Load(arg)
}

// indexRun records meta in the run index. Failures are logged, the run is
// already on disk.
func indexRun(meta *storage.RunMetadata) {
	if noIndex {
		return
	}
	ix, err := storage.OpenIndex(settings.IndexPath(), logger)
	if err != nil {
		logger.Warn().Err(err).Msg("run index unavailable")
		return
	}
	defer ix.Close()
	if err := ix.Record(meta); err != nil {
		logger.Warn().Err(err).Msg("run not indexed")
	}
}
