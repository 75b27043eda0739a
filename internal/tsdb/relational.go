package tsdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	dbpkg "welltrend/internal/db"
	"welltrend/internal/metrics"
	"welltrend/internal/model"
)

const RelationalName = "relational"

// PartitionReader reads one point partition at a time. *db.DB satisfies it.
type PartitionReader interface {
	RecordedAddresses(ctx context.Context, p model.Partition, nodeID string) ([]int, error)
	PartitionPoints(ctx context.Context, p model.Partition, nodeID string, addresses []int, start, end time.Time) ([]dbpkg.PointRow, error)
}

type RelationalConfig struct {
	Logger     *slog.Logger
	Partitions PartitionReader
}

func (c *RelationalConfig) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Partitions == nil {
		return errors.New("partition reader is required")
	}
	return nil
}

// Relational serves points from the live and archive partitions as one series.
type Relational struct {
	log   *slog.Logger
	parts PartitionReader
}

func NewRelational(cfg RelationalConfig) (*Relational, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Relational{log: cfg.Logger, parts: cfg.Partitions}, nil
}

func (r *Relational) Name() string { return RelationalName }

func (r *Relational) RecordedAddresses(ctx context.Context, nodeID string) ([]int, error) {
	defer observe(RelationalName, "recorded_addresses", time.Now())

	live, err := r.parts.RecordedAddresses(ctx, model.PartitionLive, nodeID)
	if err != nil {
		metrics.BackendQueryErrors.WithLabelValues(RelationalName, "recorded_addresses").Inc()
		return nil, err
	}
	archive, err := r.parts.RecordedAddresses(ctx, model.PartitionArchive, nodeID)
	if err != nil {
		metrics.BackendQueryErrors.WithLabelValues(RelationalName, "recorded_addresses").Inc()
		return nil, err
	}
	return unionAddresses(live, archive), nil
}

// Values queries both partitions and unions the results. A triple present in
// both partitions is an ingestion fault; the live row is kept and the overlap
// is logged.
func (r *Relational) Values(ctx context.Context, nodeID string, addresses []int, start, end time.Time) ([]Point, error) {
	defer observe(RelationalName, "values", time.Now())

	live, err := r.parts.PartitionPoints(ctx, model.PartitionLive, nodeID, addresses, start, end)
	if err != nil {
		metrics.BackendQueryErrors.WithLabelValues(RelationalName, "values").Inc()
		return nil, fmt.Errorf("query live partition: %w", err)
	}
	archive, err := r.parts.PartitionPoints(ctx, model.PartitionArchive, nodeID, addresses, start, end)
	if err != nil {
		metrics.BackendQueryErrors.WithLabelValues(RelationalName, "values").Inc()
		return nil, fmt.Errorf("query archive partition: %w", err)
	}

	merged, overlaps := Union(fromRows(live), fromRows(archive))
	if overlaps > 0 {
		metrics.PartitionOverlaps.Add(float64(overlaps))
		r.log.Warn("points present in both partitions", "node", nodeID, "overlaps", overlaps)
	}
	return merged, nil
}

func fromRows(rows []dbpkg.PointRow) []Point {
	out := make([]Point, 0, len(rows))
	for _, r := range rows {
		out = append(out, Point{NodeID: r.NodeID, Address: r.Address, Timestamp: r.Timestamp, Value: r.Value})
	}
	return out
}

func observe(backend, op string, started time.Time) {
	metrics.BackendQueryDuration.WithLabelValues(backend, op).Observe(time.Since(started).Seconds())
}
