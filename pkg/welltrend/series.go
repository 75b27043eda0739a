package welltrend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"welltrend/internal/trend"
)

// --------------------
// Series DTOs
// --------------------

// SeriesQuery selects points of one node. Set Addresses, StandardType or both;
// Start and End are inclusive.
type SeriesQuery struct {
	NodeID       string
	Addresses    []int
	StandardType int
	Start        time.Time
	End          time.Time
}

type SeriesValue struct {
	Address   int       `json:"address"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	IsManual  bool      `json:"is_manual"`
	Clamped   bool      `json:"clamped,omitempty"`
}

func (q SeriesQuery) request() trend.SeriesRequest {
	return trend.SeriesRequest{
		NodeID:       q.NodeID,
		Addresses:    q.Addresses,
		StandardType: q.StandardType,
		Start:        q.Start,
		End:          q.End,
	}
}

func fromSeries(vs []trend.ResolvedSeriesValue) []SeriesValue {
	out := make([]SeriesValue, 0, len(vs))
	for _, v := range vs {
		out = append(out, SeriesValue{
			Address:   v.Address,
			Timestamp: v.Timestamp,
			Value:     v.Value,
			IsManual:  v.IsManual,
			Clamped:   v.Clamped,
		})
	}
	return out
}

// --------------------
// Series operations
// --------------------

// Series returns the points selected by q ordered by timestamp then address.
func (c *Client) Series(ctx context.Context, q SeriesQuery) ([]SeriesValue, error) {
	vs, err := c.svc.Engine.GetSeries(ctx, q.request())
	if err != nil {
		return nil, err
	}
	return fromSeries(vs), nil
}

// SeriesForAsset ignores q.NodeID and resolves the node of assetID instead.
func (c *Client) SeriesForAsset(ctx context.Context, assetID uuid.UUID, q SeriesQuery) ([]SeriesValue, error) {
	vs, err := c.svc.Engine.GetSeriesForAsset(ctx, assetID, q.request())
	if err != nil {
		return nil, err
	}
	return fromSeries(vs), nil
}

// NamedSeries fetches a parameter by name (runtime, idle_time, cycles,
// frequency, gas_injection_rate).
func (c *Client) NamedSeries(ctx context.Context, nodeID, name string, start, end time.Time) ([]SeriesValue, error) {
	vs, err := c.svc.Engine.GetNamedSeries(ctx, nodeID, name, start, end)
	if err != nil {
		return nil, err
	}
	return fromSeries(vs), nil
}

// ParameterNames lists the names accepted by NamedSeries.
func ParameterNames() []string { return trend.ParameterNames() }

func (c *Client) SeriesAsync(ctx context.Context, q SeriesQuery) <-chan Result[[]SeriesValue] {
	return async(ctx, func(ctx context.Context) ([]SeriesValue, error) { return c.Series(ctx, q) })
}
