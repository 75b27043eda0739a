package output_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welltrend/internal/catalog"
	"welltrend/internal/downtime"
	"welltrend/internal/output"
	"welltrend/internal/trend"
)

var ts = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestWriteTrendItemsCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := output.WriteTrendItemsCSV(&buf, []catalog.TrendItem{
		{StandardType: 191, Address: 2050, Description: "Gas Injection Rate, daily", UnitType: 3, Source: catalog.SourceOverride},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"standard_type,address,description,unit_type,source\n"+
			"191,2050,\"Gas Injection Rate, daily\",3,override\n",
		buf.String())
}

func TestWriteSeriesCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := output.WriteSeriesCSV(&buf, []trend.ResolvedSeriesValue{
		{Address: 2500000, Timestamp: ts, Value: 1.5, IsManual: true},
		{Address: 2050, Timestamp: ts, Value: trend.ValueCeiling, Clamped: true},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"timestamp,address,value,is_manual,clamped\n"+
			"2026-01-02T03:04:05Z,2500000,1.5,1,0\n"+
			"2026-01-02T03:04:05Z,2050,7.922816251426434e+28,0,1\n",
		buf.String())
}

func TestWriteDowntimeCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := output.WriteDowntimeCSV(&buf, &downtime.Downtime{
		RodPump: []downtime.RodPumpRecord{{NodeID: "RP-1", Timestamp: ts, Runtime: 5, IdleTime: 1, Cycles: 7}},
		GasLift: []downtime.RateRecord{{NodeID: "GL-1", Timestamp: ts, Value: 120}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"application,node_id,timestamp,runtime,idle_time,cycles,value\n"+
			"rod_pump,RP-1,2026-01-02T03:04:05Z,5,1,7,\n"+
			"gas_lift,GL-1,2026-01-02T03:04:05Z,,,,120\n",
		buf.String())
}

func TestWriteJSONFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "items.json")
	items := []catalog.TrendItem{{StandardType: 92, Address: 2200, Description: "Site Frequency"}}
	require.NoError(t, output.WriteFile(path, func(w io.Writer) error { return output.WriteJSON(w, items) }))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []catalog.TrendItem
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, items, got)
}
