// Package config defines the layered configuration for the coordinator and
// storage node binaries: CLI flags override environment variables
// (DOCFS_*), which override a YAML file, which overrides built-in defaults.
// Environment variables are read only when a config file is found, and only
// for keys that the file sets; without a file the loaders return the
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/corefs/docfs/internal/bytesize"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LoggingConfig controls logging behavior, shared by both binaries.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port serving /metrics.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// PersistenceConfig selects and configures the metadata registry persister.
// Backend is one of "textfile" (spec-mandated registry.dat), "badger", or
// "postgres".
type PersistenceConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=textfile badger postgres" yaml:"backend"`

	TextFile TextFileConfig `mapstructure:"textfile" yaml:"textfile"`
	Badger   BadgerConfig   `mapstructure:"badger" yaml:"badger"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// TextFileConfig configures the flat registry.dat persister mandated by the
// base protocol.
type TextFileConfig struct {
	// Path is the directory containing registry.dat.
	Path string `mapstructure:"path" yaml:"path"`
}

// BadgerConfig configures the embedded key-value persister.
type BadgerConfig struct {
	// Path is the directory for the Badger database files.
	Path string `mapstructure:"path" yaml:"path"`
}

// PostgresConfig configures the relational registry persister.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// MaxOpenConns bounds the connection pool size.
	MaxOpenConns int `mapstructure:"max_open_conns" yaml:"max_open_conns"`

	// MigrationsPath is accepted but not read: pgstore creates its schema
	// with GORM AutoMigrate.
	MigrationsPath string `mapstructure:"migrations_path" yaml:"migrations_path"`
}

// AdminAPIConfig configures the coordinator's read/write HTTP admin surface,
// entirely separate from the unauthenticated client<->coordinator wire
// protocol.
type AdminAPIConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// JWTSecret signs admin API bearer tokens. Required when Enabled.
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret,omitempty"`

	// TokenTTL bounds how long an issued bearer token remains valid.
	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`

	// BcryptCost is the cost factor for hashing operator passwords.
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"omitempty,min=4,max=31" yaml:"bcrypt_cost"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// ClusterConfig controls heartbeat-based failure detection between the
// coordinator and its storage nodes.
type ClusterConfig struct {
	// HeartbeatInterval is how often the coordinator pings each registered
	// node. Default: 10s.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" validate:"required,gt=0" yaml:"heartbeat_interval"`

	// FailureTimeout must exceed HeartbeatInterval (checked by Validate).
	// Default: 60s. The failure detector does not read it: a node is marked
	// FAILED on its first failed heartbeat, or when it has no control
	// connection, with no grace period.
	FailureTimeout time.Duration `mapstructure:"failure_timeout" validate:"required,gt=0" yaml:"failure_timeout"`

	// NodeEvictionTTL, when non-zero, drops a node from the default CREATE
	// placement list once it has been FAILED for longer than this duration.
	// Existing file records keep their assigned node id regardless; this
	// only affects where new files land. Zero disables eviction, matching
	// the base protocol where failed nodes accumulate until an operator
	// issues DISCONNECT.
	NodeEvictionTTL time.Duration `mapstructure:"node_eviction_ttl" yaml:"node_eviction_ttl,omitempty"`
}

// SearchCacheConfig bounds the coordinator's LRU filename search cache.
type SearchCacheConfig struct {
	// Capacity is the maximum number of cached queries. Default: 50.
	Capacity int `mapstructure:"capacity" validate:"required,gt=0" yaml:"capacity"`
}

// CoordinatorConfig is the complete configuration for the coordinator
// binary: wire protocol listeners, persistence backend, failure detection,
// admin API, and ambient observability.
type CoordinatorConfig struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`

	// ClientPort is the TCP port clients connect to for the wire protocol
	// (CREATE, READ, WRITE, ...).
	ClientPort int `mapstructure:"client_port" validate:"required,min=1,max=65535" yaml:"client_port"`

	// NodePort is the TCP port storage nodes use to register and send
	// heartbeat responses.
	NodePort int `mapstructure:"node_port" validate:"required,min=1,max=65535" yaml:"node_port"`

	// BindAddress is the interface to bind both listeners to. Empty binds
	// all interfaces.
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address"`

	MaxConnections  int           `mapstructure:"max_connections" yaml:"max_connections"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// CacheDir holds a read-fallback copy of content the coordinator has
	// served from a node backup, so a repeat READ while the node is still
	// down does not re-touch the backup tree (spec.md §4.2 READ, §6).
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`

	// BackupDir holds the coordinator's per-node backup copies under
	// <node_id>/. A copy is written empty when a file is created and is not
	// refreshed with later content. BackupDir serves as the fallback source when a node is FAILED and the cache misses (spec.md
	// §4.2 READ, §6).
	BackupDir string `mapstructure:"backup_dir" yaml:"backup_dir"`

	Persistence PersistenceConfig `mapstructure:"persistence" yaml:"persistence"`
	Cluster     ClusterConfig     `mapstructure:"cluster" yaml:"cluster"`
	SearchCache SearchCacheConfig `mapstructure:"search_cache" yaml:"search_cache"`
	AdminAPI    AdminAPIConfig    `mapstructure:"admin_api" yaml:"admin_api"`

	// ExecEnabled gates the EXEC opcode, which runs client file content as a
	// shell script (spec.md §9 "keep EXEC behind a feature flag"). Off by
	// default.
	ExecEnabled bool `mapstructure:"exec_enabled" yaml:"exec_enabled"`
}

// ColdTierConfig configures optional S3-backed offload of checkpoint and
// backup content on a storage node.
type ColdTierConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	Bucket string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Region string `mapstructure:"region" yaml:"region,omitempty"`

	// Endpoint overrides the AWS endpoint resolution, for S3-compatible
	// object stores.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// Prefix is prepended to every object key uploaded by this node.
	Prefix string `mapstructure:"prefix" yaml:"prefix,omitempty"`
}

// NodeConfig is the complete configuration for a storage node binary: data
// directories, client listener, coordinator registration target, and the
// optional cold tier.
type NodeConfig struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`

	// NodeID uniquely identifies this node to the coordinator.
	NodeID string `mapstructure:"node_id" validate:"required" yaml:"node_id"`

	// CoordinatorIP and CoordinatorPort locate the coordinator's node
	// registration listener.
	CoordinatorIP   string `mapstructure:"coordinator_ip" validate:"required" yaml:"coordinator_ip"`
	CoordinatorPort int    `mapstructure:"coordinator_port" validate:"required,min=1,max=65535" yaml:"coordinator_port"`

	// ClientPort is the TCP port clients connect to directly for the
	// sentence/word edit protocol. The control channel used for
	// coordinator heartbeats and routing listens on ClientPort+1000.
	ClientPort int `mapstructure:"client_port" validate:"required,min=1,max=65535" yaml:"client_port"`

	BindAddress string `mapstructure:"bind_address" yaml:"bind_address"`

	MaxConnections  int           `mapstructure:"max_connections" yaml:"max_connections"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// StorageDir, BackupDir and CheckpointDir hold a file's live bytes, its
	// most recent backup copy, and its checkpoint snapshots respectively.
	StorageDir    string `mapstructure:"storage_dir" validate:"required" yaml:"storage_dir"`
	BackupDir     string `mapstructure:"backup_dir" validate:"required" yaml:"backup_dir"`
	CheckpointDir string `mapstructure:"checkpoint_dir" validate:"required" yaml:"checkpoint_dir"`

	ColdTier ColdTierConfig `mapstructure:"cold_tier" yaml:"cold_tier"`
}

// ControlPort is the node's coordinator-facing control channel port,
// derived from ClientPort per the base protocol's fixed offset.
func (c NodeConfig) ControlPort() int {
	return c.ClientPort + 1000
}

// LoadCoordinator loads CoordinatorConfig from defaults, file, and
// environment, in that increasing order of precedence (CLI flags are applied
// by the caller on top of the returned struct). When no config file is
// found it returns the built-in defaults without reading the environment.
func LoadCoordinator(configPath string) (*CoordinatorConfig, error) {
	v := viper.New()
	setupViper(v, configPath, "DOCFS")

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultCoordinatorConfig(), nil
	}

	var cfg CoordinatorConfig
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("unmarshal coordinator config: %w", err)
	}
	ApplyCoordinatorDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("coordinator config validation: %w", err)
	}
	return &cfg, nil
}

// LoadNode loads NodeConfig from file, environment, and defaults.
func LoadNode(configPath string) (*NodeConfig, error) {
	v := viper.New()
	setupViper(v, configPath, "DOCFS_NODE")

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultNodeConfig(), nil
	}

	var cfg NodeConfig
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("unmarshal node config: %w", err)
	}
	ApplyNodeDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("node config validation: %w", err)
	}
	return &cfg, nil
}

// SaveYAML writes cfg (a *CoordinatorConfig or *NodeConfig) to path in YAML
// format with owner-only permissions, since it may carry secrets such as
// AdminAPIConfig.JWTSecret.
func SaveYAML(cfg any, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// setupViper wires environment variable and config-file discovery for a
// single envPrefix (distinct prefixes let a coordinator and a node on the
// same host avoid colliding DOCFS_* variables).
func setupViper(v *viper.Viper, configPath, envPrefix string) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(configDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// configDir returns $XDG_CONFIG_HOME/docfs, or ~/.config/docfs, or "." as a
// last resort.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "docfs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "docfs")
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(DefaultConfigPath())
	return err == nil
}

// ConfigDir exposes configDir for the init command.
func ConfigDir() string {
	return configDir()
}
