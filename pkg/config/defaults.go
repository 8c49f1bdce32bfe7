package config

import (
	"strings"
	"time"
)

// ApplyCoordinatorDefaults fills in zero-valued fields of a CoordinatorConfig
// with sensible defaults. Explicitly set values are preserved.
func ApplyCoordinatorDefaults(cfg *CoordinatorConfig) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)

	if cfg.ClientPort == 0 {
		cfg.ClientPort = 6000
	}
	if cfg.NodePort == 0 {
		cfg.NodePort = 6100
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = "/var/lib/docfs/coordinator/cache"
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = "/var/lib/docfs/coordinator/backups"
	}

	applyPersistenceDefaults(&cfg.Persistence)
	applyClusterDefaults(&cfg.Cluster)

	if cfg.SearchCache.Capacity == 0 {
		cfg.SearchCache.Capacity = 50
	}

	applyAdminAPIDefaults(&cfg.AdminAPI)
}

// ApplyNodeDefaults fills in zero-valued fields of a NodeConfig with
// sensible defaults.
func ApplyNodeDefaults(cfg *NodeConfig) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = "/var/lib/docfs/storage"
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = "/var/lib/docfs/backups"
	}
	if cfg.CheckpointDir == "" {
		cfg.CheckpointDir = "/var/lib/docfs/checkpoints"
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyPersistenceDefaults(cfg *PersistenceConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "textfile"
	}
	if cfg.TextFile.Path == "" {
		cfg.TextFile.Path = "/var/lib/docfs/coordinator"
	}
	if cfg.Badger.Path == "" {
		cfg.Badger.Path = "/var/lib/docfs/coordinator/badger"
	}
	if cfg.Postgres.MaxOpenConns == 0 {
		cfg.Postgres.MaxOpenConns = 10
	}
}

func applyClusterDefaults(cfg *ClusterConfig) {
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 10 * time.Second
	}
	if cfg.FailureTimeout == 0 {
		cfg.FailureTimeout = 60 * time.Second
	}
	// NodeEvictionTTL stays 0 (disabled) unless explicitly configured.
}

func applyAdminAPIDefaults(cfg *AdminAPIConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
}

// GetDefaultCoordinatorConfig returns a CoordinatorConfig with all defaults
// applied. Useful for `docfs init`, tests, and documentation.
func GetDefaultCoordinatorConfig() *CoordinatorConfig {
	cfg := &CoordinatorConfig{}
	ApplyCoordinatorDefaults(cfg)
	return cfg
}

// GetDefaultNodeConfig returns a NodeConfig with all defaults applied,
// except NodeID/CoordinatorIP/CoordinatorPort/ClientPort which have no
// sensible default and must come from CLI positional arguments per the
// base protocol's launch contract.
func GetDefaultNodeConfig() *NodeConfig {
	cfg := &NodeConfig{}
	ApplyNodeDefaults(cfg)
	return cfg
}
