package prometheus

import (
	"time"

	"github.com/corefs/docfs/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// coordinatorMetrics is the Prometheus implementation of metrics.CoordinatorMetrics.
type coordinatorMetrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	requestsInFlight   *prometheus.GaugeVec
	activeConnections  prometheus.Gauge
	connectionsTotal    prometheus.Counter
	connectionsClosed   prometheus.Counter
	connectionsForced   prometheus.Counter
	heartbeatsTotal    *prometheus.CounterVec
	nodesEvictedTotal  prometheus.Counter
	registeredNodes    prometheus.Gauge
}

// NewCoordinatorMetrics creates a new Prometheus-backed CoordinatorMetrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewCoordinatorMetrics() metrics.CoordinatorMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &coordinatorMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfs_coordinator_requests_total",
				Help: "Total number of client requests handled by the coordinator, by opcode and result code",
			},
			[]string{"opcode", "result"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "docfs_coordinator_request_duration_milliseconds",
				Help: "Duration of coordinator request handling in milliseconds",
				Buckets: []float64{
					0.5, 1, 5, 10, 50, 100, 500, 1000, 5000,
				},
			},
			[]string{"opcode"},
		),
		requestsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "docfs_coordinator_requests_in_flight",
				Help: "Current number of in-flight coordinator requests, by opcode",
			},
			[]string{"opcode"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "docfs_coordinator_active_connections",
				Help: "Current number of active client connections",
			},
		),
		connectionsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "docfs_coordinator_connections_accepted_total",
				Help: "Total number of client connections accepted",
			},
		),
		connectionsClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "docfs_coordinator_connections_closed_total",
				Help: "Total number of client connections closed",
			},
		),
		connectionsForced: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "docfs_coordinator_connections_force_closed_total",
				Help: "Total number of client connections forcibly closed after shutdown timeout",
			},
		),
		heartbeatsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfs_coordinator_heartbeats_total",
				Help: "Total number of storage node heartbeat checks, by node and outcome",
			},
			[]string{"node_id", "outcome"}, // outcome: "alive", "timeout"
		),
		nodesEvictedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "docfs_coordinator_nodes_evicted_total",
				Help: "Total number of storage nodes evicted after exceeding their eviction TTL",
			},
		),
		registeredNodes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "docfs_coordinator_registered_nodes",
				Help: "Current number of storage nodes registered with the coordinator",
			},
		),
	}
}

func (m *coordinatorMetrics) RecordRequest(opcode string, duration time.Duration, resultCode uint16) {
	if m == nil {
		return
	}
	result := "ok"
	if resultCode != 0 {
		result = "error"
	}
	m.requestsTotal.WithLabelValues(opcode, result).Inc()
	m.requestDuration.WithLabelValues(opcode).Observe(duration.Seconds() * 1000)
}

func (m *coordinatorMetrics) RecordRequestStart(opcode string) {
	if m == nil {
		return
	}
	m.requestsInFlight.WithLabelValues(opcode).Inc()
}

func (m *coordinatorMetrics) RecordRequestEnd(opcode string) {
	if m == nil {
		return
	}
	m.requestsInFlight.WithLabelValues(opcode).Dec()
}

func (m *coordinatorMetrics) SetActiveConnections(count int32) {
	if m == nil {
		return
	}
	m.activeConnections.Set(float64(count))
}

func (m *coordinatorMetrics) RecordConnectionAccepted() {
	if m == nil {
		return
	}
	m.connectionsTotal.Inc()
}

func (m *coordinatorMetrics) RecordConnectionClosed() {
	if m == nil {
		return
	}
	m.connectionsClosed.Inc()
}

func (m *coordinatorMetrics) RecordConnectionForceClosed() {
	if m == nil {
		return
	}
	m.connectionsForced.Inc()
}

func (m *coordinatorMetrics) RecordHeartbeat(nodeID string, alive bool) {
	if m == nil {
		return
	}
	outcome := "alive"
	if !alive {
		outcome = "timeout"
	}
	m.heartbeatsTotal.WithLabelValues(nodeID, outcome).Inc()
}

func (m *coordinatorMetrics) RecordNodeEvicted(nodeID string) {
	if m == nil {
		return
	}
	m.nodesEvictedTotal.Inc()
}

func (m *coordinatorMetrics) SetRegisteredNodes(count int) {
	if m == nil {
		return
	}
	m.registeredNodes.Set(float64(count))
}
