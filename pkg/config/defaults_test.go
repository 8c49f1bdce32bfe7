package config

import (
	"testing"
	"time"
)

func TestApplyCoordinatorDefaults_Logging(t *testing.T) {
	cfg := &CoordinatorConfig{}
	ApplyCoordinatorDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyCoordinatorDefaults_Ports(t *testing.T) {
	cfg := &CoordinatorConfig{}
	ApplyCoordinatorDefaults(cfg)

	if cfg.ClientPort != 6000 {
		t.Errorf("expected default client_port 6000, got %d", cfg.ClientPort)
	}
	if cfg.NodePort != 6100 {
		t.Errorf("expected default node_port 6100, got %d", cfg.NodePort)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

func TestApplyCoordinatorDefaults_Cluster(t *testing.T) {
	cfg := &CoordinatorConfig{}
	ApplyCoordinatorDefaults(cfg)

	if cfg.Cluster.HeartbeatInterval != 10*time.Second {
		t.Errorf("expected default heartbeat interval 10s, got %v", cfg.Cluster.HeartbeatInterval)
	}
	if cfg.Cluster.FailureTimeout != 60*time.Second {
		t.Errorf("expected default failure timeout 60s, got %v", cfg.Cluster.FailureTimeout)
	}
	if cfg.Cluster.NodeEvictionTTL != 0 {
		t.Errorf("expected node eviction TTL disabled by default, got %v", cfg.Cluster.NodeEvictionTTL)
	}
}

func TestApplyCoordinatorDefaults_Persistence(t *testing.T) {
	cfg := &CoordinatorConfig{}
	ApplyCoordinatorDefaults(cfg)

	if cfg.Persistence.Backend != "textfile" {
		t.Errorf("expected default persistence backend 'textfile', got %q", cfg.Persistence.Backend)
	}
	if cfg.Persistence.TextFile.Path == "" {
		t.Error("expected default textfile path to be set")
	}
}

func TestApplyCoordinatorDefaults_AdminAPI(t *testing.T) {
	cfg := &CoordinatorConfig{}
	ApplyCoordinatorDefaults(cfg)

	if cfg.AdminAPI.Port != 8080 {
		t.Errorf("expected default admin API port 8080, got %d", cfg.AdminAPI.Port)
	}
	if cfg.AdminAPI.TokenTTL != 12*time.Hour {
		t.Errorf("expected default token TTL 12h, got %v", cfg.AdminAPI.TokenTTL)
	}
	if cfg.AdminAPI.BcryptCost != 12 {
		t.Errorf("expected default bcrypt cost 12, got %d", cfg.AdminAPI.BcryptCost)
	}
}

func TestApplyCoordinatorDefaults_SearchCache(t *testing.T) {
	cfg := &CoordinatorConfig{}
	ApplyCoordinatorDefaults(cfg)

	if cfg.SearchCache.Capacity != 50 {
		t.Errorf("expected default search cache capacity 50, got %d", cfg.SearchCache.Capacity)
	}
}

func TestApplyNodeDefaults_Directories(t *testing.T) {
	cfg := &NodeConfig{}
	ApplyNodeDefaults(cfg)

	if cfg.StorageDir == "" || cfg.BackupDir == "" || cfg.CheckpointDir == "" {
		t.Errorf("expected default storage/backup/checkpoint directories to be set, got %+v", cfg)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

func TestApplyNodeDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &NodeConfig{StorageDir: "/custom/storage"}
	ApplyNodeDefaults(cfg)

	if cfg.StorageDir != "/custom/storage" {
		t.Errorf("expected explicit storage_dir to be preserved, got %q", cfg.StorageDir)
	}
}

func TestGetDefaultCoordinatorConfig(t *testing.T) {
	cfg := GetDefaultCoordinatorConfig()
	if err := Validate(cfg); err != nil {
		t.Errorf("expected default coordinator config to be valid, got: %v", err)
	}
}
