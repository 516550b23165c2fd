// Package influx ships telemetry to InfluxDB, or to a gzipped line
// protocol file that can be imported later when no server is reachable.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/san-kum/drivesim/internal/config"
)

const Measurement = "telemetry"

var ErrNoServer = errors.New("influx: no server url configured")

// Manager writes telemetry points either to a server or to a backup file.
type Manager struct {
	Client       influxdb2.Client
	BackupWriter *gzip.Writer
	IsValid      bool
	Settings     config.InfluxSettings
	Logger       zerolog.Logger

	backupFile *os.File
}

func NewManager(log zerolog.Logger, s config.InfluxSettings) *Manager {
	return &Manager{Settings: s, Logger: log}
}

// Connect pings the configured server. On failure the manager stays
// invalid and callers are expected to fall back to OpenBackup.
func (m *Manager) Connect(ctx context.Context) error {
	if m.Settings.URL == "" {
		return ErrNoServer
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.Settings.URL,
		m.Settings.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		if err == nil {
			err = errors.New("server not ready")
		}
		return fmt.Errorf("influx ping %s: %w", m.Settings.URL, err)
	}

	m.IsValid = true
	m.Logger.Info().Str("url", m.Settings.URL).Str("bucket", m.Settings.Bucket).Msg("InfluxDB client initialized")
	return nil
}

// OpenBackup appends gzipped line protocol to path.
func (m *Manager) OpenBackup(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	m.Logger.Info().Str("backupPath", path).Msg("Writing line protocol to backup file")
	return nil
}

// WritePoints sends points to the server when connected, otherwise to the
// backup file.
func (m *Manager) WritePoints(ctx context.Context, points []*influxdb2_write.Point) error {
	if m.IsValid {
		writer := m.Client.WriteAPIBlocking(m.Settings.Org, m.Settings.Bucket)
		if err := writer.WritePoint(ctx, points...); err != nil {
			return fmt.Errorf("error sending data to InfluxDB: %w", err)
		}
		return nil
	}

	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	for _, p := range points {
		line := strings.TrimRight(influxdb2_write.PointToLineProtocol(p, time.Nanosecond), "\n")
		if _, err := m.BackupWriter.Write([]byte(line + "\n")); err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
		}
	}
	return nil
}

func (m *Manager) Close() error {
	var errs []error
	if m.Client != nil {
		m.Client.Close()
	}
	if m.BackupWriter != nil {
		errs = append(errs, m.BackupWriter.Close())
	}
	if m.backupFile != nil {
		errs = append(errs, m.backupFile.Close())
	}
	return errors.Join(errs...)
}

// Points turns telemetry rows into one point per row. The "time" column
// becomes the point timestamp as an offset from start. Non-finite values
// are skipped since line protocol cannot carry them.
func Points(vehicle, run string, start time.Time, columns []string, rows [][]float64) []*influxdb2_write.Point {
	tags := map[string]string{"vehicle": vehicle, "run": run}
	points := make([]*influxdb2_write.Point, 0, len(rows))

	for _, row := range rows {
		ts := start
		fields := make(map[string]interface{}, len(columns))
		for i, name := range columns {
			if i >= len(row) {
				break
			}
			v := row[i]
			if name == "time" {
				ts = start.Add(time.Duration(v * float64(time.Second)))
				continue
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			fields[name] = v
		}
		if len(fields) == 0 {
			continue
		}
		points = append(points, influxdb2_write.NewPoint(Measurement, tags, fields, ts))
	}
	return points
}
