package prometheus

import (
	"time"

	"github.com/corefs/docfs/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// cacheMetrics is the Prometheus implementation of metrics.CacheMetrics for
// the coordinator's bounded search cache.
type cacheMetrics struct {
	lookupsTotal     *prometheus.CounterVec
	lookupDuration   prometheus.Histogram
	cacheSize        prometheus.Gauge
	invalidations    prometheus.Counter
	evictions        prometheus.Counter
}

// NewCacheMetrics creates a new Prometheus-backed CacheMetrics instance for
// the search cache.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewCacheMetrics() metrics.CacheMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &cacheMetrics{
		lookupsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfs_search_cache_lookups_total",
				Help: "Total number of search cache lookups, by outcome",
			},
			[]string{"outcome"}, // "hit", "miss"
		),
		lookupDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "docfs_search_cache_lookup_duration_milliseconds",
				Help: "Duration of search cache lookups in milliseconds",
				Buckets: []float64{
					0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50,
				},
			},
		),
		cacheSize: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "docfs_search_cache_entries",
				Help: "Current number of entries held in the search cache",
			},
		),
		invalidations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "docfs_search_cache_invalidations_total",
				Help: "Total number of whole-cache invalidations triggered by file create/delete",
			},
		),
		evictions: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "docfs_search_cache_evictions_total",
				Help: "Total number of LRU evictions from the search cache",
			},
		),
	}
}

func (m *cacheMetrics) ObserveLookup(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.lookupsTotal.WithLabelValues(outcome).Inc()
	m.lookupDuration.Observe(duration.Seconds() * 1000)
}

func (m *cacheMetrics) RecordCacheSize(entries int) {
	if m == nil {
		return
	}
	m.cacheSize.Set(float64(entries))
}

func (m *cacheMetrics) RecordInvalidation() {
	if m == nil {
		return
	}
	m.invalidations.Inc()
}

func (m *cacheMetrics) RecordEviction() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}
