package tsdb

import (
	"cmp"
	"context"
	"slices"
	"time"
)

// Point is one raw time-series sample.
type Point struct {
	NodeID    string
	Address   int
	Timestamp time.Time
	Value     float64
}

// Backend stores and retrieves raw points. Implementations must treat start
// and end as inclusive bounds.
type Backend interface {
	// Name identifies the backend in logs, metrics and cache keys.
	Name() string
	// RecordedAddresses returns every address with at least one point for nodeID.
	RecordedAddresses(ctx context.Context, nodeID string) ([]int, error)
	// Values returns the points of nodeID at addresses within [start, end].
	Values(ctx context.Context, nodeID string, addresses []int, start, end time.Time) ([]Point, error)
}

type pointKey struct {
	address int
	ts      int64
}

// Union merges two point sets so that no (address, timestamp) pair appears
// twice. On conflict the point from primary is kept. overlaps counts the
// secondary points that were dropped.
func Union(primary, secondary []Point) (merged []Point, overlaps int) {
	merged = make([]Point, 0, len(primary)+len(secondary))
	seen := make(map[pointKey]struct{}, len(primary)+len(secondary))
	add := func(p Point) bool {
		k := pointKey{address: p.Address, ts: p.Timestamp.UnixNano()}
		if _, ok := seen[k]; ok {
			return false
		}
		seen[k] = struct{}{}
		merged = append(merged, p)
		return true
	}
	for _, p := range primary {
		add(p)
	}
	for _, p := range secondary {
		if !add(p) {
			overlaps++
		}
	}
	SortPoints(merged)
	return merged, overlaps
}

// SortPoints orders points by timestamp, then address.
func SortPoints(ps []Point) {
	slices.SortStableFunc(ps, func(a, b Point) int {
		return cmp.Or(a.Timestamp.Compare(b.Timestamp), cmp.Compare(a.Address, b.Address))
	})
}

func unionAddresses(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}
