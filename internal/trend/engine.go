package trend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"welltrend/internal/cache"
	"welltrend/internal/catalog"
	"welltrend/internal/metrics"
	"welltrend/internal/tsdb"
)

var (
	ErrInvalidArgument          = errors.New("invalid argument")
	ErrExternalStoreUnavailable = errors.New("external time-series store is not configured")
)

// NodeDirectory maps assets to nodes and describes nodes.
type NodeDirectory interface {
	NodeIDForAsset(ctx context.Context, assetID string) (string, bool, error)
	Node(ctx context.Context, nodeID string) (catalog.Node, bool, error)
}

// ReferenceStore reads catalog rows and facility tags.
type ReferenceStore interface {
	CatalogEntries(ctx context.Context, deviceTypes []int) ([]catalog.Entry, error)
	FacilityTags(ctx context.Context, groupID string) ([]catalog.Override, error)
}

// FlagSource is consulted on every call to pick the backend.
type FlagSource interface {
	ExternalStoreEnabled() bool
}

type EngineConfig struct {
	Logger     *slog.Logger
	Nodes      NodeDirectory
	Reference  ReferenceStore
	Relational tsdb.Backend
	// External is optional; calls made while the flag is on fail without it.
	External tsdb.Backend
	Flags    FlagSource
	Cache    cache.TrendItems
}

func (c *EngineConfig) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Nodes == nil {
		return errors.New("node directory is required")
	}
	if c.Reference == nil {
		return errors.New("reference store is required")
	}
	if c.Relational == nil {
		return errors.New("relational backend is required")
	}
	if c.Flags == nil {
		return errors.New("flag source is required")
	}
	if c.Cache == nil {
		c.Cache = cache.NewTTL(cache.Config{})
	}
	return nil
}

// Engine resolves trend items and series for nodes.
type Engine struct {
	log *slog.Logger
	cfg EngineConfig
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{log: cfg.Logger, cfg: cfg}, nil
}

// SeriesRequest selects the points of one node. When StandardType is set the
// addresses resolving that type are used, restricted to Addresses if any are
// given. Start and End are inclusive.
type SeriesRequest struct {
	NodeID       string
	Addresses    []int
	StandardType int
	Start        time.Time
	End          time.Time
}

func (r SeriesRequest) validate() error {
	if r.NodeID == "" {
		return fmt.Errorf("%w: node id is required", ErrInvalidArgument)
	}
	if len(r.Addresses) == 0 && r.StandardType == 0 {
		return fmt.Errorf("%w: addresses or a standard type are required", ErrInvalidArgument)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidArgument, r.End, r.Start)
	}
	return nil
}

// backend picks the time-series backend for this call.
func (e *Engine) backend() (tsdb.Backend, error) {
	if e.cfg.Flags.ExternalStoreEnabled() {
		if e.cfg.External == nil {
			return nil, ErrExternalStoreUnavailable
		}
		return e.cfg.External, nil
	}
	return e.cfg.Relational, nil
}

// ResolveTrendItems returns the trend items of nodeID. An unknown node yields
// an empty set.
func (e *Engine) ResolveTrendItems(ctx context.Context, nodeID string) ([]catalog.TrendItem, error) {
	if nodeID == "" {
		return nil, fmt.Errorf("%w: node id is required", ErrInvalidArgument)
	}
	backend, err := e.backend()
	if err != nil {
		return nil, err
	}

	key := cache.Key{NodeID: nodeID, Backend: backend.Name()}
	if items, ok := e.cfg.Cache.Get(key); ok {
		metrics.TrendItemCacheLookups.WithLabelValues("hit").Inc()
		e.log.Debug("trend item cache hit", "node", nodeID, "backend", key.Backend)
		return items, nil
	}
	metrics.TrendItemCacheLookups.WithLabelValues("miss").Inc()

	node, ok, err := e.cfg.Nodes.Node(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []catalog.TrendItem{}, nil
	}
	entries, overrides, err := e.reference(ctx, node)
	if err != nil {
		return nil, err
	}
	recorded, err := backend.RecordedAddresses(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("recorded addresses for %s: %w", nodeID, err)
	}

	items := catalog.Resolve(node.DeviceType, entries, overrides, recorded)
	e.cfg.Cache.Set(key, items)
	e.log.Debug("resolved trend items", "node", nodeID, "backend", key.Backend, "items", len(items))
	return items, nil
}

// ResolveTrendItemsForAsset resolves the node of assetID first.
func (e *Engine) ResolveTrendItemsForAsset(ctx context.Context, assetID uuid.UUID) ([]catalog.TrendItem, error) {
	nodeID, ok, err := e.cfg.Nodes.NodeIDForAsset(ctx, assetID.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return []catalog.TrendItem{}, nil
	}
	return e.ResolveTrendItems(ctx, nodeID)
}

// TrendItemsForType returns the resolved items of nodeID carrying standardType.
func (e *Engine) TrendItemsForType(ctx context.Context, nodeID string, standardType int) ([]catalog.TrendItem, error) {
	items, err := e.ResolveTrendItems(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	return catalog.FilterByType(items, standardType), nil
}

// GetSeries returns the merged, clamped series selected by req ordered by
// timestamp then address.
func (e *Engine) GetSeries(ctx context.Context, req SeriesRequest) ([]ResolvedSeriesValue, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	node, ok, err := e.cfg.Nodes.Node(ctx, req.NodeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []ResolvedSeriesValue{}, nil
	}

	addresses := normalize(req.Addresses)
	if req.StandardType != 0 {
		entries, overrides, err := e.reference(ctx, node)
		if err != nil {
			return nil, err
		}
		typed := catalog.Addresses(node.DeviceType, entries, overrides, req.StandardType)
		if len(addresses) > 0 {
			typed = intersect(typed, addresses)
		}
		addresses = typed
	}
	if len(addresses) == 0 {
		return []ResolvedSeriesValue{}, nil
	}

	backend, err := e.backend()
	if err != nil {
		return nil, err
	}
	e.log.Debug("fetching series", "node", req.NodeID, "backend", backend.Name(), "addresses", addresses)
	points, err := backend.Values(ctx, req.NodeID, addresses, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("values for %s: %w", req.NodeID, err)
	}
	series := Merge(points, req.Start, req.End)
	clamped := 0
	for _, v := range series {
		if v.Clamped {
			clamped++
		}
	}
	if clamped > 0 {
		e.log.Debug("clamped out-of-range values", "node", req.NodeID, "count", clamped)
	}
	return series, nil
}

// GetSeriesForAsset resolves the node of assetID and then behaves like GetSeries.
func (e *Engine) GetSeriesForAsset(ctx context.Context, assetID uuid.UUID, req SeriesRequest) ([]ResolvedSeriesValue, error) {
	nodeID, ok, err := e.cfg.Nodes.NodeIDForAsset(ctx, assetID.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return []ResolvedSeriesValue{}, nil
	}
	req.NodeID = nodeID
	return e.GetSeries(ctx, req)
}

// GetNamedSeries fetches the series of a named parameter. Unknown names
// yield an empty series.
func (e *Engine) GetNamedSeries(ctx context.Context, nodeID, name string, start, end time.Time) ([]ResolvedSeriesValue, error) {
	standardType, ok := ParameterType(name)
	if !ok {
		e.log.Debug("unknown parameter name", "node", nodeID, "name", name)
		return []ResolvedSeriesValue{}, nil
	}
	return e.GetSeries(ctx, SeriesRequest{NodeID: nodeID, StandardType: standardType, Start: start, End: end})
}

// PurgeCache drops every cached trend item set.
func (e *Engine) PurgeCache() { e.cfg.Cache.Purge() }

func (e *Engine) reference(ctx context.Context, node catalog.Node) ([]catalog.Entry, []catalog.Override, error) {
	entries, err := e.cfg.Reference.CatalogEntries(ctx, catalog.CompatibleDeviceTypes(node.DeviceType))
	if err != nil {
		return nil, nil, err
	}
	overrides, err := e.cfg.Reference.FacilityTags(ctx, node.GroupID)
	if err != nil {
		return nil, nil, err
	}
	return entries, overrides, nil
}

func normalize(addresses []int) []int {
	out := slices.Clone(addresses)
	slices.Sort(out)
	return slices.Compact(out)
}

func intersect(a, b []int) []int {
	out := []int{}
	for _, x := range a {
		if _, found := slices.BinarySearch(b, x); found {
			out = append(out, x)
		}
	}
	return out
}
