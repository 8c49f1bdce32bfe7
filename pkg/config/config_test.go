package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences, causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func TestLoadCoordinator_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
logging:
  level: "DEBUG"

client_port: 6000
node_port: 6100

persistence:
  backend: textfile
  textfile:
    path: "` + yamlSafePath(tmpDir) + `/registry"

admin_api:
  enabled: true
  jwt_secret: "test-secret-key-for-testing-minimum-32-chars"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadCoordinator(configPath)
	if err != nil {
		t.Fatalf("LoadCoordinator: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected log level DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.ClientPort != 6000 {
		t.Errorf("expected client_port 6000, got %d", cfg.ClientPort)
	}
	if cfg.Cluster.HeartbeatInterval != 10*time.Second {
		t.Errorf("expected default heartbeat interval 10s, got %v", cfg.Cluster.HeartbeatInterval)
	}
	if cfg.SearchCache.Capacity != 50 {
		t.Errorf("expected default search cache capacity 50, got %d", cfg.SearchCache.Capacity)
	}
}

func TestLoadCoordinator_NoFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	// Point XDG_CONFIG_HOME somewhere empty so no ambient config is found.
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadCoordinator("")
	if err != nil {
		t.Fatalf("LoadCoordinator: %v", err)
	}
	if cfg.ClientPort != 6000 || cfg.NodePort != 6100 {
		t.Errorf("expected default ports, got client=%d node=%d", cfg.ClientPort, cfg.NodePort)
	}
}

func TestLoadNode_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "node.yaml")

	content := `
node_id: node-1
coordinator_ip: 10.0.0.1
coordinator_port: 6100
client_port: 7000
storage_dir: "` + yamlSafePath(tmpDir) + `/storage"
backup_dir: "` + yamlSafePath(tmpDir) + `/backups"
checkpoint_dir: "` + yamlSafePath(tmpDir) + `/checkpoints"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadNode(configPath)
	if err != nil {
		t.Fatalf("LoadNode: %v", err)
	}
	if cfg.NodeID != "node-1" {
		t.Errorf("expected node_id 'node-1', got %q", cfg.NodeID)
	}
	if cfg.ControlPort() != 8000 {
		t.Errorf("expected control port 8000, got %d", cfg.ControlPort())
	}
}

func TestSaveYAML_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := GetDefaultCoordinatorConfig()
	cfg.ClientPort = 7777

	if err := SaveYAML(cfg, path); err != nil {
		t.Fatalf("SaveYAML: %v", err)
	}

	loaded, err := LoadCoordinator(path)
	if err != nil {
		t.Fatalf("LoadCoordinator after save: %v", err)
	}
	if loaded.ClientPort != 7777 {
		t.Errorf("expected client_port 7777 after round trip, got %d", loaded.ClientPort)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat saved config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected config file mode 0600, got %v", info.Mode().Perm())
	}
}
