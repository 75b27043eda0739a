package tasks_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbpkg "welltrend/internal/db"
	"welltrend/internal/tasks"
	"welltrend/internal/trend"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

const fixture = `
nodes:
  - node_id: RP-1
    device_type: 5
    group_id: G-1
    application: 3
catalog:
  - device_type: 99
    address: 100
    standard_type: 179
    description: Runtime
  - device_type: 99
    address: 101
    standard_type: 180
    description: Idle Time
  - device_type: 99
    address: 102
    standard_type: 181
    description: Cycles
live:
  - {node_id: RP-1, address: 100, timestamp: 2026-03-09T00:00:00Z, value: 20}
  - {node_id: RP-1, address: 101, timestamp: 2026-03-09T00:00:00Z, value: 4}
  - {node_id: RP-1, address: 102, timestamp: 2026-03-09T00:00:00Z, value: 300}
  - {node_id: RP-1, address: 100, timestamp: 2026-03-08T00:00:00Z, value: 18}
  - {node_id: RP-1, address: 101, timestamp: 2026-03-08T00:00:00Z, value: 6}
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestBootstrap(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "welltrend.sqlite")
	cfgPath := writeFile(t, "welltrend.yaml", "database:\n  path: "+dbPath+"\n")

	svc, err := tasks.Bootstrap(t.Context(), tasks.Options{
		ConfigPath: cfgPath,
		Logger:     logger,
		Clock:      clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	assert.Equal(t, dbPath, svc.Config.Database.Path)

	f, err := dbpkg.ParseFixture([]byte(fixture))
	require.NoError(t, err)
	require.NoError(t, svc.DB.Seed(t.Context(), f))

	items, err := svc.Engine.ResolveTrendItems(t.Context(), "RP-1")
	require.NoError(t, err)
	assert.Len(t, items, 3)

	dt, err := svc.Downtime.GetDowntime(t.Context(), []string{"RP-1"}, 7)
	require.NoError(t, err)
	require.Len(t, dt.RodPump, 1)
	assert.Equal(t, 20.0, dt.RodPump[0].Runtime)
	assert.Equal(t, 300.0, dt.RodPump[0].Cycles)
}

func TestBootstrap_ExternalOverride(t *testing.T) {
	t.Parallel()

	enabled := true
	svc, err := tasks.Bootstrap(t.Context(), tasks.Options{
		DatabasePath:  filepath.Join(t.TempDir(), "welltrend.sqlite"),
		ExternalStore: &enabled,
		Logger:        logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	_, err = svc.Engine.ResolveTrendItems(t.Context(), "RP-1")
	assert.ErrorIs(t, err, trend.ErrExternalStoreUnavailable)
}

func TestBootstrap_RequiresLogger(t *testing.T) {
	t.Parallel()

	_, err := tasks.Bootstrap(t.Context(), tasks.Options{})
	assert.ErrorContains(t, err, "logger is required")
}
