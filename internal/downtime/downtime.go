package downtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"

	"welltrend/internal/catalog"
	"welltrend/internal/trend"
)

// RodPumpRecord is one correlated sample of the rod pump signals.
type RodPumpRecord struct {
	NodeID    string    `json:"node_id"`
	Timestamp time.Time `json:"timestamp"`
	Runtime   float64   `json:"runtime"`
	IdleTime  float64   `json:"idle_time"`
	Cycles    float64   `json:"cycles"`
}

// RateRecord is one sample of the single signal tracked for ESP (frequency)
// and gas lift (gas injection rate) nodes.
type RateRecord struct {
	NodeID    string    `json:"node_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Downtime groups the records of every application. Lists are ordered by
// node (in request order) then timestamp.
type Downtime struct {
	RodPump []RodPumpRecord `json:"rod_pump"`
	ESP     []RateRecord    `json:"esp"`
	GasLift []RateRecord    `json:"gas_lift"`
}

type NodeDirectory interface {
	Node(ctx context.Context, nodeID string) (catalog.Node, bool, error)
}

// SeriesSource is satisfied by *trend.Engine.
type SeriesSource interface {
	GetSeries(ctx context.Context, req trend.SeriesRequest) ([]trend.ResolvedSeriesValue, error)
}

type Config struct {
	Logger *slog.Logger
	Clock  clockwork.Clock
	Nodes  NodeDirectory
	Series SeriesSource
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Nodes == nil {
		return errors.New("node directory is required")
	}
	if c.Series == nil {
		return errors.New("series source is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

type Aggregator struct {
	log *slog.Logger
	cfg Config
}

func NewAggregator(cfg Config) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{log: cfg.Logger, cfg: cfg}, nil
}

// GetDowntime collects the downtime signals of nodeIDs over the trailing
// windowDays days. Unknown nodes and nodes of other applications are skipped.
func (a *Aggregator) GetDowntime(ctx context.Context, nodeIDs []string, windowDays int) (*Downtime, error) {
	if len(nodeIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one node id is required", trend.ErrInvalidArgument)
	}
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: window must be at least one day, got %d", trend.ErrInvalidArgument, windowDays)
	}

	end := a.cfg.Clock.Now().UTC()
	start := end.Add(-time.Duration(windowDays) * 24 * time.Hour)
	out := &Downtime{RodPump: []RodPumpRecord{}, ESP: []RateRecord{}, GasLift: []RateRecord{}}

	seen := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}

		node, ok, err := a.cfg.Nodes.Node(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			a.log.Debug("skipping unknown node", "node", id)
			continue
		}

		switch node.Application {
		case catalog.ApplicationRodPump:
			recs, err := a.rodPump(ctx, id, start, end)
			if err != nil {
				return nil, err
			}
			out.RodPump = append(out.RodPump, recs...)
		case catalog.ApplicationESP:
			recs, err := a.rate(ctx, id, catalog.StandardFrequency, start, end)
			if err != nil {
				return nil, err
			}
			out.ESP = append(out.ESP, recs...)
		case catalog.ApplicationGasLift:
			recs, err := a.rate(ctx, id, catalog.StandardGasInjectionRate, start, end)
			if err != nil {
				return nil, err
			}
			out.GasLift = append(out.GasLift, recs...)
		default:
			a.log.Debug("no downtime signals for application", "node", id, "application", node.Application)
		}
	}
	return out, nil
}

// rodPump inner-joins runtime, idle time and cycles on timestamp and keeps
// the rows that ran.
func (a *Aggregator) rodPump(ctx context.Context, nodeID string, start, end time.Time) ([]RodPumpRecord, error) {
	runtime, err := a.signal(ctx, nodeID, catalog.StandardRunTime, start, end)
	if err != nil {
		return nil, err
	}
	idle, err := a.signal(ctx, nodeID, catalog.StandardIdleTime, start, end)
	if err != nil {
		return nil, err
	}
	cycles, err := a.signal(ctx, nodeID, catalog.StandardCycles, start, end)
	if err != nil {
		return nil, err
	}

	idleAt, cyclesAt := byTimestamp(idle), byTimestamp(cycles)
	out := []RodPumpRecord{}
	for _, r := range firstPerTimestamp(runtime) {
		if r.Value <= 0 {
			continue
		}
		k := r.Timestamp.UnixNano()
		i, ok := idleAt[k]
		if !ok {
			continue
		}
		c, ok := cyclesAt[k]
		if !ok {
			continue
		}
		out = append(out, RodPumpRecord{
			NodeID:    nodeID,
			Timestamp: r.Timestamp,
			Runtime:   r.Value,
			IdleTime:  i,
			Cycles:    c,
		})
	}
	a.log.Debug("rod pump downtime", "node", nodeID, "runtime", len(runtime), "idle", len(idle), "cycles", len(cycles), "joined", len(out))
	return out, nil
}

func (a *Aggregator) rate(ctx context.Context, nodeID string, standardType int, start, end time.Time) ([]RateRecord, error) {
	series, err := a.signal(ctx, nodeID, standardType, start, end)
	if err != nil {
		return nil, err
	}
	out := []RateRecord{}
	for _, v := range firstPerTimestamp(series) {
		out = append(out, RateRecord{NodeID: nodeID, Timestamp: v.Timestamp, Value: v.Value})
	}
	return out, nil
}

func (a *Aggregator) signal(ctx context.Context, nodeID string, standardType int, start, end time.Time) ([]trend.ResolvedSeriesValue, error) {
	series, err := a.cfg.Series.GetSeries(ctx, trend.SeriesRequest{
		NodeID:       nodeID,
		StandardType: standardType,
		Start:        start,
		End:          end,
	})
	if err != nil {
		return nil, fmt.Errorf("downtime signal %d for %s: %w", standardType, nodeID, err)
	}
	return series, nil
}

// firstPerTimestamp keeps one value per timestamp. Series arrive ordered by
// timestamp then address, so the lowest address wins.
func firstPerTimestamp(series []trend.ResolvedSeriesValue) []trend.ResolvedSeriesValue {
	return slices.CompactFunc(slices.Clone(series), func(a, b trend.ResolvedSeriesValue) bool {
		return a.Timestamp.Equal(b.Timestamp)
	})
}

func byTimestamp(series []trend.ResolvedSeriesValue) map[int64]float64 {
	m := make(map[int64]float64, len(series))
	for _, v := range series {
		k := v.Timestamp.UnixNano()
		if _, ok := m[k]; !ok {
			m[k] = v.Value
		}
	}
	return m
}
