package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TrendItemCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "welltrend_trend_item_cache_lookups_total", Help: "Trend item cache lookups by result.",
	}, []string{"result"})

	BackendQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "welltrend_backend_query_duration_seconds",
		Help:    "Time spent in time-series backend queries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "op"})
	BackendQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "welltrend_backend_query_errors_total", Help: "Failed time-series backend queries.",
	}, []string{"backend", "op"})

	PartitionOverlaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "welltrend_partition_overlap_points_total", Help: "Points found in both the live and archive partitions.",
	})
	ClampedValues = promauto.NewCounter(prometheus.CounterOpts{
		Name: "welltrend_clamped_values_total", Help: "Values replaced by the value ceiling.",
	})
)
