package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"welltrend/internal/catalog"
	"welltrend/internal/downtime"
	"welltrend/internal/trend"
)

// WriteJSON writes v to w with pretty formatting.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteFile creates path and hands it to write.
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteTrendItemsCSV columns: standard_type,address,description,unit_type,source
func WriteTrendItemsCSV(w io.Writer, items []catalog.TrendItem) error {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(it.StandardType),
			strconv.Itoa(it.Address),
			it.Description,
			strconv.Itoa(it.UnitType),
			it.Source.String(),
		})
	}
	return writeCSV(w, []string{"standard_type", "address", "description", "unit_type", "source"}, rows)
}

// WriteSeriesCSV columns: timestamp,address,value,is_manual,clamped
func WriteSeriesCSV(w io.Writer, series []trend.ResolvedSeriesValue) error {
	rows := make([][]string, 0, len(series))
	for _, v := range series {
		rows = append(rows, []string{
			timeToRFC3339(v.Timestamp),
			strconv.Itoa(v.Address),
			formatFloat(v.Value),
			boolFlag(v.IsManual),
			boolFlag(v.Clamped),
		})
	}
	return writeCSV(w, []string{"timestamp", "address", "value", "is_manual", "clamped"}, rows)
}

// WriteDowntimeCSV flattens all applications into one table.
// Columns: application,node_id,timestamp,runtime,idle_time,cycles,value
func WriteDowntimeCSV(w io.Writer, d *downtime.Downtime) error {
	var rows [][]string
	for _, r := range d.RodPump {
		rows = append(rows, []string{
			catalog.ApplicationRodPump.String(), r.NodeID, timeToRFC3339(r.Timestamp),
			formatFloat(r.Runtime), formatFloat(r.IdleTime), formatFloat(r.Cycles), "",
		})
	}
	rate := func(app catalog.Application, recs []downtime.RateRecord) {
		for _, r := range recs {
			rows = append(rows, []string{app.String(), r.NodeID, timeToRFC3339(r.Timestamp), "", "", "", formatFloat(r.Value)})
		}
	}
	rate(catalog.ApplicationESP, d.ESP)
	rate(catalog.ApplicationGasLift, d.GasLift)
	return writeCSV(w, []string{"application", "node_id", "timestamp", "runtime", "idle_time", "cycles", "value"}, rows)
}

func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range rows {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func timeToRFC3339(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
