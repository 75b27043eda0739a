package trend_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welltrend/internal/cache"
	dbpkg "welltrend/internal/db"
	"welltrend/internal/trend"
	"welltrend/internal/tsdb"
)

const wellFixture = `
nodes:
  - node_id: W-100
    asset_id: 0b6f7c0e-3f38-4a56-9c7e-5b2a4c1d9e01
    device_type: 17
    group_id: G-NORTH
    application: 7
catalog:
  - device_type: 8
    address: 2050
    standard_type: 191
    description: Gas Injection Rate
facility_tags:
  - group_id: G-NORTH
    address: 2200
    standard_type: 92
    description: Site Frequency
live:
  - node_id: W-100
    address: 2050
    timestamp: 2026-01-02T00:00:00Z
    value: 10
  - node_id: W-100
    address: 2050
    timestamp: 2026-01-01T00:00:00Z
    value: 12
archive:
  - node_id: W-100
    address: 2050
    timestamp: 2026-01-01T00:00:00Z
    value: 9
  - node_id: W-100
    address: 2050
    timestamp: 2025-12-31T00:00:00Z
    value: 8
`

func newSQLiteEngine(t *testing.T) *trend.Engine {
	t.Helper()
	d, err := dbpkg.Open(filepath.Join(t.TempDir(), "trend.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	f, err := dbpkg.ParseFixture([]byte(wellFixture))
	require.NoError(t, err)
	require.NoError(t, d.Seed(t.Context(), f))

	rel, err := tsdb.NewRelational(tsdb.RelationalConfig{Logger: logger, Partitions: d})
	require.NoError(t, err)
	e, err := trend.NewEngine(trend.EngineConfig{
		Logger:     logger,
		Nodes:      d,
		Reference:  d,
		Relational: rel,
		Flags:      &flags{},
		Cache:      cache.NewTTL(cache.Config{Capacity: 16}),
	})
	require.NoError(t, err)
	return e
}

func TestEngine_SQLite(t *testing.T) {
	t.Parallel()
	e := newSQLiteEngine(t)

	items, err := e.ResolveTrendItems(t.Context(), "W-100")
	require.NoError(t, err)
	require.Len(t, items, 1, "the facility tag has no history")
	assert.Equal(t, 2050, items[0].Address)
	assert.Equal(t, 191, items[0].StandardType)

	series, err := e.GetSeries(t.Context(), trend.SeriesRequest{
		NodeID:       "W-100",
		StandardType: 191,
		Start:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 12.0, series[0].Value, "live partition wins on overlap")
	assert.Equal(t, 10.0, series[1].Value)
	assert.True(t, series[0].Timestamp.Before(series[1].Timestamp))

	series, err = e.GetSeriesForAsset(t.Context(), asset, trend.SeriesRequest{
		StandardType: 92,
		Start:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, series)
}
