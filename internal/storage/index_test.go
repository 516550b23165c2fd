package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, isPostgres("postgres://sim@localhost/runs"))
	assert.True(t, isPostgres("host=localhost user=sim dbname=runs"))
	assert.False(t, isPostgres(":memory:"))
	assert.False(t, isPostgres("/var/drivesim/runs.db"))
}

func TestIndexRecordFind(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	require.NoError(t, err)
	defer ix.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []RunMetadata{
		{ID: "a", Vehicle: "hatchback", Timestamp: base, Metrics: map[string]float64{"top_speed_kmh": 80, "peak_rpm": 5200}},
		{ID: "b", Vehicle: "kart_2t", Timestamp: base.Add(time.Minute), Metrics: map[string]float64{"top_speed_kmh": 95}},
		{ID: "c", Vehicle: "hatchback", Timestamp: base.Add(2 * time.Minute), Stalls: 2, Metrics: map[string]float64{"top_speed_kmh": 40}},
	}
	for i := range runs {
		require.NoError(t, ix.Record(&runs[i]))
	}

	all, err := ix.Find("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)

	hatch, err := ix.Find("hatchback", 1)
	require.NoError(t, err)
	require.Len(t, hatch, 1)
	assert.Equal(t, "c", hatch[0].ID)
	assert.Equal(t, 2, hatch[0].Stalls)

	fastest, err := ix.Fastest(2)
	require.NoError(t, err)
	require.Len(t, fastest, 2)
	assert.Equal(t, "b", fastest[0].ID)
	assert.Equal(t, "a", fastest[1].ID)
	assert.Equal(t, 5200.0, fastest[1].PeakRPM)
	metrics := fastest[1].Metrics.Data()
	assert.IsType(t, float64(0), metrics["top_speed_kmh"])
	assert.Equal(t, 80.0, metrics["top_speed_kmh"])
	assert.Equal(t, 5200.0, metrics["peak_rpm"])
}

func TestIndexRecordReplaces(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	require.NoError(t, err)
	defer ix.Close()

	meta := RunMetadata{ID: "x", Vehicle: "sedan_auto", Timestamp: time.Now()}
	require.NoError(t, ix.Record(&meta))
	meta.Stalls = 3
	require.NoError(t, ix.Record(&meta))

	runs, err := ix.Find("sedan_auto", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Stalls)
}
