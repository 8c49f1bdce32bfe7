// Package metrics defines the metric-collection interfaces used by the
// coordinator and storage node, decoupled from the Prometheus
// implementation in pkg/metrics/prometheus. Passing nil for any of these
// interfaces disables collection with zero overhead, matching how the rest
// of this codebase treats optional observability.
package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	registry *prometheus.Registry
	enabled  atomic.Bool
)

// InitRegistry creates the process-wide Prometheus registry used by every
// metrics implementation in pkg/metrics/prometheus. Must be called once at
// startup, before any New*Metrics constructor, when MetricsConfig.Enabled is
// true.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	enabled.Store(true)
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled.Load()
}

// GetRegistry returns the process-wide registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}

// Reset clears the registry. Intended for tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = nil
	enabled.Store(false)
}
