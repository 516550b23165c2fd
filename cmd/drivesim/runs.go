package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/drivesim/internal/analysis"
	"github.com/san-kum/drivesim/internal/export"
	"github.com/san-kum/drivesim/internal/influx"
	"github.com/san-kum/drivesim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(settings.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVEHICLE\tDRIVER\tTIME\tDURATION\tDT\tSTALLS\tTOP KM/H")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%.1f\n",
			run.ID,
			run.Vehicle,
			run.Driver,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Stalls,
			run.Metrics["top_speed_kmh"],
		)
	}

	return w.Flush()
}

func fastestRuns(cmd *cobra.Command, args []string) error {
	ix, err := storage.OpenIndex(settings.IndexPath(), logger)
	if err != nil {
		return err
	}
	defer ix.Close()

	var records []storage.RunRecord
	if vehicleID != "" {
		records, err = ix.Find(vehicleID, limit)
	} else {
		records, err = ix.Fastest(limit)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVEHICLE\tDRIVER\tTOP KM/H\tPEAK RPM\tSTALLS")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%.0f\t%d\n", r.ID, r.Vehicle, r.Driver, r.TopSpeedKmh, r.PeakRPM, r.Stalls)
	}
	return w.Flush()
}

// loadRun resolves arg and reads its telemetry.
func loadRun(arg string) (*storage.RunMetadata, *storage.Table, error) {
	st := storage.New(settings.DataDir)
	meta, err := resolveRun(st, arg)
	if err != nil {
		return nil, nil, err
	}
	table, err := st.LoadTelemetry(meta.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(table.Rows) == 0 {
		return nil, nil, fmt.Errorf("run %s has no telemetry", meta.ID)
	}
	return meta, table, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("vehicle: %s (%s)\n", meta.Vehicle, meta.Driver)
	fmt.Printf("samples: %d\n\n", len(table.Rows))

	for _, name := range columns {
		data, err := table.Column(name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args[0])
	if err != nil {
		return err
	}
	data, err := table.Column(column)
	if err != nil {
		return err
	}
	times, err := table.Column("time")
	if err != nil {
		return err
	}

	// rows may be sampled, so the spacing comes from the time column
	step := meta.Dt
	if len(times) > 1 {
		step = (times[len(times)-1] - times[0]) / float64(len(times)-1)
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("column: %s\n\n", column)

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 8 {
		graph := asciigraph.Plot(ps[1:len(ps)/4+1],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+column+")"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	sum := analysis.Summarize(data)
	fmt.Printf("min %.3f  max %.3f  mean %.3f  rms %.3f\n", sum.Min, sum.Max, sum.Mean, sum.RMS)

	freq, amp := analysis.DominantFrequency(data, step)
	fmt.Printf("dominant frequency: %.3f hz (amplitude %.3f)\n", freq, amp)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args[0])
	if err != nil {
		return err
	}
	xs, err := table.Column(xColumn)
	if err != nil {
		return err
	}
	ys, err := table.Column(yColumn)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	if crossCol != "" {
		cross, err := table.Column(crossCol)
		if err != nil {
			return err
		}
		fmt.Printf("%s vs %s where %s rises through %g\n\n", yColumn, xColumn, crossCol, crossAt)
		fmt.Print(analysis.SectionToASCII(analysis.NewSection(cross, crossAt, xs, ys), 70, 20))
		return nil
	}

	fmt.Printf("%s vs %s\n\n", yColumn, xColumn)
	fmt.Print(analysis.PhasePortraitToASCII(analysis.NewPhasePortrait(xColumn, xs, yColumn, ys), 70, 20))
	return nil
}

func outputPath(meta *storage.RunMetadata, ext string) string {
	if outPath != "" {
		return outPath
	}
	return meta.ID + ext
}

func exportCSV(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := outputPath(meta, ".csv")
	if err := storage.ExportCSV(path, table); err != nil {
		return err
	}
	fmt.Printf("exported %d rows to %s\n", len(table.Rows), path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := outputPath(meta, ".json")
	if err := storage.ExportJSON(path, storage.NewExportData(*meta, table)); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", meta.ID, path)
	return nil
}

func exportInflux(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args[0])
	if err != nil {
		return err
	}

	m := influx.NewManager(logger, settings.Influx)
	if err := m.Connect(cmd.Context()); err != nil {
		path := outputPath(meta, ".lp.gz")
		logger.Warn().Err(err).Str("backupPath", path).Msg("InfluxDB not reachable, writing line protocol")
		if err := m.OpenBackup(path); err != nil {
			return err
		}
	}

	points := influx.Points(meta.Vehicle, meta.ID, meta.Timestamp, table.Columns, table.Rows)
	if err := m.WritePoints(cmd.Context(), points); err != nil {
		m.Close()
		return err
	}
	if err := m.Close(); err != nil {
		return err
	}
	fmt.Printf("exported %d points\n", len(points))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args[0])
	if err != nil {
		return err
	}
	xs, err := table.Column(svgX)
	if err != nil {
		return err
	}
	ys, err := table.Column(svgY)
	if err != nil {
		return err
	}

	var svg string
	if svgX == "x" && svgY == "z" {
		svg = export.TrackSVG(xs, ys, svgSize)
	} else {
		svg = export.PortraitSVG(analysis.NewPhasePortrait(svgX, xs, svgY, ys), svgSize, svgSize*2/3)
	}
	if svg == "" {
		return fmt.Errorf("run %s has too few samples to draw", meta.ID)
	}

	path := outputPath(meta, ".svg")
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	registry := newRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tTRANSMISSION\tGEARS\tLAYOUT\tMASS\tDRIVER")
	for _, name := range registry.ListPresets() {
		cfg, err := registry.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.0f kg\t%s\n",
			name,
			cfg.Transmission.Type,
			len(cfg.Transmission.Ratios),
			cfg.Drive.Layout,
			cfg.Chassis.MassKg,
			cfg.Driver.Kind,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ndrivers: %s\n", strings.Join(registry.ListDrivers(), ", "))
	return nil
}

func presetInfo(cmd *cobra.Command, args []string) error {
	cfg, err := vehicleConfig(newRegistry(), args)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
