package config

import (
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func withTempConfigDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	return tmpDir
}

func TestInitCoordinatorConfig_Success(t *testing.T) {
	withTempConfigDir(t)

	configPath, err := InitCoordinatorConfig(false)
	if err != nil {
		t.Fatalf("InitCoordinatorConfig failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatalf("config file was not created at %s", configPath)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	contentStr := string(content)
	for _, section := range []string{"logging:", "persistence:", "cluster:", "admin_api:"} {
		if !strings.Contains(contentStr, section) {
			t.Errorf("config file missing section: %s", section)
		}
	}

	var cfg CoordinatorConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		t.Fatalf("generated config is not valid YAML: %v", err)
	}
}

func TestInitCoordinatorConfig_AlreadyExists(t *testing.T) {
	withTempConfigDir(t)

	if _, err := InitCoordinatorConfig(false); err != nil {
		t.Fatalf("first InitCoordinatorConfig failed: %v", err)
	}

	_, err := InitCoordinatorConfig(false)
	if err == nil {
		t.Fatal("expected error when config already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected 'already exists' error, got: %v", err)
	}
}

func TestInitCoordinatorConfig_Force(t *testing.T) {
	withTempConfigDir(t)

	configPath, err := InitCoordinatorConfig(false)
	if err != nil {
		t.Fatalf("first InitCoordinatorConfig failed: %v", err)
	}

	if _, err := InitCoordinatorConfig(true); err != nil {
		t.Fatalf("InitCoordinatorConfig with force failed: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("failed to stat recreated config: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("recreated config file is empty")
	}
}

func TestInitNodeConfig_Success(t *testing.T) {
	withTempConfigDir(t)

	configPath, err := InitNodeConfig("node-1", false)
	if err != nil {
		t.Fatalf("InitNodeConfig failed: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	var cfg NodeConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		t.Fatalf("generated config is not valid YAML: %v", err)
	}
	if cfg.NodeID != "node-1" {
		t.Errorf("expected node_id 'node-1' in generated config, got %q", cfg.NodeID)
	}
}

func TestInitNodeConfig_AlreadyExists(t *testing.T) {
	withTempConfigDir(t)

	if _, err := InitNodeConfig("node-1", false); err != nil {
		t.Fatalf("first InitNodeConfig failed: %v", err)
	}

	_, err := InitNodeConfig("node-1", false)
	if err == nil {
		t.Fatal("expected error when node config already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected 'already exists' error, got: %v", err)
	}
}

func TestGeneratedCoordinatorConfigIsLoadable(t *testing.T) {
	withTempConfigDir(t)

	configPath, err := InitCoordinatorConfig(false)
	if err != nil {
		t.Fatalf("InitCoordinatorConfig failed: %v", err)
	}

	cfg, err := LoadCoordinator(configPath)
	if err != nil {
		t.Fatalf("failed to load generated config: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected INFO log level in generated config, got %q", cfg.Logging.Level)
	}
	if cfg.AdminAPI.Port != 8080 {
		t.Errorf("expected admin API port 8080 in generated config, got %d", cfg.AdminAPI.Port)
	}
}
