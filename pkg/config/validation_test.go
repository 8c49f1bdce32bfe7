package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidCoordinatorConfig(t *testing.T) {
	cfg := GetDefaultCoordinatorConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultCoordinatorConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultCoordinatorConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid log format")
	}
}

func TestValidate_InvalidAdminAPIPort(t *testing.T) {
	cfg := GetDefaultCoordinatorConfig()
	cfg.AdminAPI.Port = 70000

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_SameClientAndNodePort(t *testing.T) {
	cfg := GetDefaultCoordinatorConfig()
	cfg.NodePort = cfg.ClientPort

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when client_port equals node_port")
	}
}

func TestValidate_AdminAPIEnabledWithoutSecret(t *testing.T) {
	cfg := GetDefaultCoordinatorConfig()
	cfg.AdminAPI.Enabled = true
	cfg.AdminAPI.JWTSecret = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for admin API enabled without a JWT secret")
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("expected error about jwt_secret, got: %v", err)
	}
}

func TestValidate_PostgresBackendWithoutDSN(t *testing.T) {
	cfg := GetDefaultCoordinatorConfig()
	cfg.Persistence.Backend = "postgres"
	cfg.Persistence.Postgres.DSN = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for postgres backend without a DSN")
	}
}

func TestValidate_FailureTimeoutMustExceedHeartbeat(t *testing.T) {
	cfg := GetDefaultCoordinatorConfig()
	cfg.Cluster.FailureTimeout = cfg.Cluster.HeartbeatInterval

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when failure_timeout does not exceed heartbeat_interval")
	}
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	testCases := []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"}

	for _, level := range testCases {
		cfg := GetDefaultCoordinatorConfig()
		cfg.Logging.Level = level

		if err := Validate(cfg); err != nil {
			t.Errorf("validation failed for level %q: %v", level, err)
		}
		if cfg.Logging.Level != level {
			t.Errorf("expected level to remain %q after validation, got %q", level, cfg.Logging.Level)
		}
	}

	cfg := &CoordinatorConfig{Logging: LoggingConfig{Level: "info"}}
	ApplyCoordinatorDefaults(cfg)
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected ApplyCoordinatorDefaults to normalize 'info' to 'INFO', got %q", cfg.Logging.Level)
	}
}

func TestValidate_ValidNodeConfig(t *testing.T) {
	cfg := GetDefaultNodeConfig()
	cfg.NodeID = "node-1"
	cfg.CoordinatorIP = "10.0.0.1"
	cfg.CoordinatorPort = 6100
	cfg.ClientPort = 7000

	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid node config to pass validation, got: %v", err)
	}
}

func TestValidate_NodeMissingNodeID(t *testing.T) {
	cfg := GetDefaultNodeConfig()
	cfg.CoordinatorIP = "10.0.0.1"
	cfg.CoordinatorPort = 6100
	cfg.ClientPort = 7000

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for missing node_id")
	}
}

func TestValidate_NodeColdTierEnabledWithoutBucket(t *testing.T) {
	cfg := GetDefaultNodeConfig()
	cfg.NodeID = "node-1"
	cfg.CoordinatorIP = "10.0.0.1"
	cfg.CoordinatorPort = 6100
	cfg.ClientPort = 7000
	cfg.ColdTier.Enabled = true

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for cold tier enabled without a bucket")
	}
}
