package trend

import (
	"time"

	"welltrend/internal/metrics"
	"welltrend/internal/tsdb"
)

// ValueCeiling is the largest representable decimal. Stored values above it
// are overflow artifacts and are returned as the ceiling itself.
const ValueCeiling = 79228162514264337593543950335.0

// Addresses in (ManualAddressFloor, ManualAddressCeiling] hold operator-entered
// values rather than scanned ones.
const (
	ManualAddressFloor   = 2000000
	ManualAddressCeiling = 2999999
)

// ResolvedSeriesValue is one caller-facing point of a series.
type ResolvedSeriesValue struct {
	Address   int       `json:"address"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	IsManual  bool      `json:"is_manual"`
	Clamped   bool      `json:"clamped,omitempty"`
}

// Clamp replaces any value above ValueCeiling with ValueCeiling.
func Clamp(v float64) (float64, bool) {
	if v > ValueCeiling {
		return ValueCeiling, true
	}
	return v, false
}

// IsManual reports whether address lies in the operator-entry range.
func IsManual(address int) bool {
	return address > ManualAddressFloor && address <= ManualAddressCeiling
}

// Merge turns raw points into an ordered series: duplicates of an
// (address, timestamp) pair collapse to the first seen, points outside
// [start, end] are dropped, values are clamped and annotated.
func Merge(points []tsdb.Point, start, end time.Time) []ResolvedSeriesValue {
	unique, _ := tsdb.Union(points, nil)
	out := make([]ResolvedSeriesValue, 0, len(unique))
	for _, p := range unique {
		if p.Timestamp.Before(start) || p.Timestamp.After(end) {
			continue
		}
		v, clamped := Clamp(p.Value)
		if clamped {
			metrics.ClampedValues.Inc()
		}
		out = append(out, ResolvedSeriesValue{
			Address:   p.Address,
			Timestamp: p.Timestamp,
			Value:     v,
			IsManual:  IsManual(p.Address),
			Clamped:   clamped,
		})
	}
	return out
}
