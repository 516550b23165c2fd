package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RunRecord is one row of the run index.
type RunRecord struct {
	ID          string `gorm:"primaryKey"`
	Vehicle     string `gorm:"index"`
	Driver      string
	CreatedAt   time.Time `gorm:"index"`
	Dt          float64
	Duration    float64
	Steps       int
	Stalls      int
	TopSpeedKmh float64
	PeakRPM     float64
	Metrics     datatypes.JSONType[map[string]float64]
}

// Index keeps a queryable table of saved runs next to the run directories.
// It talks to SQLite for a file path or ":memory:", and to Postgres for a
// postgres:// URL or a key=value DSN.
type Index struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

func OpenIndex(dsn string, log zerolog.Logger) (*Index, error) {
	cfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}

	var dialector gorm.Dialector
	if isPostgres(dsn) {
		log.Debug().Msg("Opening Postgres run index")
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	} else {
		log.Debug().Str("path", dsn).Msg("Opening SQLite run index")
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open run index: %w", err)
	}
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("migrate run index: %w", err)
	}
	return &Index{DB: db, Logger: log}, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

func (ix *Index) Record(meta *RunMetadata) error {
	metrics := make(map[string]float64, len(meta.Metrics))
	for k, v := range meta.Metrics {
		metrics[k] = v
	}
	rec := RunRecord{
		ID:          meta.ID,
		Vehicle:     meta.Vehicle,
		Driver:      meta.Driver,
		CreatedAt:   meta.Timestamp,
		Dt:          meta.Dt,
		Duration:    meta.Duration,
		Steps:       meta.Steps,
		Stalls:      meta.Stalls,
		TopSpeedKmh: meta.Metrics["top_speed_kmh"],
		PeakRPM:     meta.Metrics["peak_rpm"],
		Metrics:     datatypes.NewJSONType(metrics),
	}
	if err := ix.DB.Save(&rec).Error; err != nil {
		return fmt.Errorf("index run %s: %w", meta.ID, err)
	}
	ix.Logger.Trace().Str("run", meta.ID).Msg("Run indexed")
	return nil
}

// Find lists runs newest first. An empty vehicle matches all of them and
// limit <= 0 means no limit.
func (ix *Index) Find(vehicle string, limit int) ([]RunRecord, error) {
	q := ix.DB.Order("created_at desc")
	if vehicle != "" {
		q = q.Where("vehicle = ?", vehicle)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []RunRecord
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Fastest lists runs by top speed, best first. limit <= 0 means no limit.
func (ix *Index) Fastest(limit int) ([]RunRecord, error) {
	q := ix.DB.Order("top_speed_kmh desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []RunRecord
	err := q.Find(&out).Error
	return out, err
}

func (ix *Index) Close() error {
	sqlDB, err := ix.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
