package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// InitCoordinatorConfig writes a default coordinator config.yaml to the
// default config directory, refusing to overwrite an existing file unless
// force is true. Returns the path written.
func InitCoordinatorConfig(force bool) (string, error) {
	path := DefaultConfigPath()
	return path, initConfig(path, force, GetDefaultCoordinatorConfig())
}

// InitNodeConfig writes a default node config.yaml under
// $XDG_CONFIG_HOME/docfs/<nodeID>.yaml (nodes commonly co-reside on a
// coordinator host, so the coordinator's own config.yaml name is reserved).
func InitNodeConfig(nodeID string, force bool) (string, error) {
	path := filepath.Join(configDir(), nodeID+".yaml")
	cfg := GetDefaultNodeConfig()
	cfg.NodeID = nodeID
	return path, initConfig(path, force, cfg)
}

func initConfig(path string, force bool, cfg any) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}
	return SaveYAML(cfg, path)
}
