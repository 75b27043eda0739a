package welltrend_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welltrend/pkg/welltrend"
)

const fixture = `
nodes:
  - node_id: GL-7
    asset_id: 5d1c2b7a-8f0e-4c55-9d1e-3a2b1c0d9e8f
    device_type: 17
    group_id: PAD-3
    application: 7
  - node_id: ESP-2
    device_type: 4
    group_id: PAD-3
    application: 4
catalog:
  - {device_type: 8, address: 2050, standard_type: 191, description: Gas Injection Rate}
  - {device_type: 99, address: 2060, standard_type: 92, description: Drive Frequency}
facility_tags:
  - {group_id: PAD-3, address: 2500001, standard_type: 92, description: Current Frequency}
live:
  - {node_id: GL-7, address: 2050, timestamp: 2026-05-03T00:00:00Z, value: 140}
  - {node_id: ESP-2, address: 2500001, timestamp: 2026-05-03T00:00:00Z, value: 58}
archive:
  - {node_id: GL-7, address: 2050, timestamp: 2026-05-02T00:00:00Z, value: 135}
  - {node_id: ESP-2, address: 2060, timestamp: 2026-05-02T00:00:00Z, value: 61}
`

var (
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	now    = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	asset  = uuid.MustParse("5d1c2b7a-8f0e-4c55-9d1e-3a2b1c0d9e8f")
)

func newClient(t *testing.T) *welltrend.Client {
	t.Helper()
	dir := t.TempDir()
	c, err := welltrend.Open(t.Context(), welltrend.Options{
		DatabasePath: filepath.Join(dir, "welltrend.sqlite"),
		Logger:       logger,
		Clock:        clockwork.NewFakeClockAt(now),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	path := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	require.NoError(t, c.SeedFile(t.Context(), path))
	return c
}

func TestClient_TrendItems(t *testing.T) {
	t.Parallel()
	c := newClient(t)

	items, err := c.TrendItemsForAsset(t.Context(), asset)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, welltrend.TrendItem{StandardType: 191, Address: 2050, Description: "Gas Injection Rate", Source: "catalog"}, items[0])

	items, err = c.TrendItems(t.Context(), "ESP-2")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "override", items[0].Source)
	assert.Equal(t, 2500001, items[0].Address)

	res := <-c.TrendItemsAsync(t.Context(), "GL-7")
	require.NoError(t, res.Err)
	assert.Len(t, res.Value, 1)
}

func TestClient_Series(t *testing.T) {
	t.Parallel()
	c := newClient(t)

	q := welltrend.SeriesQuery{StandardType: 191, Start: now.Add(-72 * time.Hour), End: now}
	vs, err := c.SeriesForAsset(t.Context(), asset, q)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, 135.0, vs[0].Value)
	assert.Equal(t, 140.0, vs[1].Value)

	// Frequency for ESP-2 comes from the group's manual register only.
	vs, err = c.NamedSeries(t.Context(), "ESP-2", "frequency", now.Add(-72*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.True(t, vs[0].IsManual)

	res := <-c.SeriesAsync(t.Context(), welltrend.SeriesQuery{NodeID: "GL-7", Start: now, End: now})
	assert.ErrorIs(t, res.Err, welltrend.ErrInvalidArgument)
}

func TestClient_Downtime(t *testing.T) {
	t.Parallel()
	c := newClient(t)

	res := <-c.DowntimeAsync(t.Context(), []string{"GL-7", "ESP-2"}, 0)
	require.NoError(t, res.Err)
	assert.Len(t, res.Value.GasLift, 2)
	require.Len(t, res.Value.ESP, 1)
	assert.Equal(t, 58.0, res.Value.ESP[0].Value)
	assert.Empty(t, res.Value.RodPump)

	col, err := welltrend.RodPumpColumn([]welltrend.RodPumpRecord{{Cycles: 3}}, "cycles")
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, col)
}

func TestClient_ExternalStoreToggle(t *testing.T) {
	t.Parallel()
	c := newClient(t)

	c.SetExternalStoreEnabled(true)
	_, err := c.TrendItems(t.Context(), "GL-7")
	assert.ErrorIs(t, err, welltrend.ErrExternalStoreUnavailable)

	c.SetExternalStoreEnabled(false)
	items, err := c.TrendItems(t.Context(), "GL-7")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
