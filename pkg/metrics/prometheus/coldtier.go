package prometheus

import (
	"time"

	"github.com/corefs/docfs/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// coldTierMetrics is the Prometheus implementation of metrics.ColdTierMetrics
// for the storage node's optional S3 backup/checkpoint offload.
type coldTierMetrics struct {
	operationsTotal  *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	bytesTransferred *prometheus.CounterVec
}

// NewColdTierMetrics creates a new Prometheus-backed ColdTierMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewColdTierMetrics() metrics.ColdTierMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &coldTierMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfs_coldtier_operations_total",
				Help: "Total number of cold-tier S3 operations, by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationLatency: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "docfs_coldtier_operation_duration_milliseconds",
				Help: "Duration of cold-tier S3 operations in milliseconds",
				Buckets: []float64{
					10, 50, 100, 500, 1000, 5000, 10000, 30000,
				},
			},
			[]string{"operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfs_coldtier_bytes_transferred_total",
				Help: "Total bytes transferred to/from the cold-tier backup store",
			},
			[]string{"operation"},
		),
	}
}

func (m *coldTierMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationLatency.WithLabelValues(operation).Observe(duration.Seconds() * 1000)
}

func (m *coldTierMetrics) RecordBytes(operation string, bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(operation).Add(float64(bytes))
}
