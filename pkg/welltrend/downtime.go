package welltrend

import (
	"context"

	"welltrend/internal/downtime"
)

// Downtime records are exposed as-is; they carry no internal state.
type (
	Downtime      = downtime.Downtime
	RodPumpRecord = downtime.RodPumpRecord
	RateRecord    = downtime.RateRecord
)

// Downtime returns the downtime signals of nodeIDs over the trailing
// windowDays days. windowDays <= 0 uses the configured default.
func (c *Client) Downtime(ctx context.Context, nodeIDs []string, windowDays int) (*Downtime, error) {
	if windowDays <= 0 {
		windowDays = c.DefaultWindowDays()
	}
	return c.svc.Downtime.GetDowntime(ctx, nodeIDs, windowDays)
}

func (c *Client) DowntimeAsync(ctx context.Context, nodeIDs []string, windowDays int) <-chan Result[*Downtime] {
	return async(ctx, func(ctx context.Context) (*Downtime, error) { return c.Downtime(ctx, nodeIDs, windowDays) })
}

// RodPumpColumn projects one named rod pump field (runtime, idle_time,
// cycles) out of records.
func RodPumpColumn(records []RodPumpRecord, field string) ([]float64, error) {
	f, err := downtime.RodPumpField(field)
	if err != nil {
		return nil, err
	}
	return downtime.Values(records, f), nil
}
