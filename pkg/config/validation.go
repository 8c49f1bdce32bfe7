package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct tag validation against a *CoordinatorConfig or
// *NodeConfig, plus a handful of cross-field checks the `validate` tags
// can't express (admin API secret requirement, persistence backend
// consistency).
func Validate(cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	switch c := cfg.(type) {
	case *CoordinatorConfig:
		return validateCoordinator(c)
	case *NodeConfig:
		return validateNode(c)
	default:
		return fmt.Errorf("config: unsupported type %T", cfg)
	}
}

func validateCoordinator(cfg *CoordinatorConfig) error {
	if cfg.ClientPort == cfg.NodePort {
		return fmt.Errorf("client_port and node_port must differ")
	}
	if cfg.AdminAPI.Enabled && cfg.AdminAPI.JWTSecret == "" {
		return fmt.Errorf("admin_api.jwt_secret is required when admin_api.enabled is true")
	}
	if cfg.Persistence.Backend == "postgres" && cfg.Persistence.Postgres.DSN == "" {
		return fmt.Errorf("persistence.postgres.dsn is required when persistence.backend is postgres")
	}
	if cfg.Cluster.FailureTimeout <= cfg.Cluster.HeartbeatInterval {
		return fmt.Errorf("cluster.failure_timeout must exceed cluster.heartbeat_interval")
	}
	return nil
}

func validateNode(cfg *NodeConfig) error {
	if cfg.ClientPort+1000 > 65535 {
		return fmt.Errorf("client_port %d leaves no room for the control_port (client_port+1000)", cfg.ClientPort)
	}
	if cfg.ColdTier.Enabled && cfg.ColdTier.Bucket == "" {
		return fmt.Errorf("cold_tier.bucket is required when cold_tier.enabled is true")
	}
	return nil
}
