package commands

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/internal/telemetry"
	"github.com/corefs/docfs/pkg/config"
	"github.com/corefs/docfs/pkg/coordinator"
	"github.com/corefs/docfs/pkg/coordinator/adminapi"
	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/metadatastore/persist/badgerstore"
	"github.com/corefs/docfs/pkg/metadatastore/persist/pgstore"
	"github.com/corefs/docfs/pkg/metadatastore/persist/textfile"
	"github.com/corefs/docfs/pkg/metrics"
	"github.com/corefs/docfs/pkg/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the coordinator",
	Long: `Start the docfs coordinator: the client and node-registration
listeners, the failure detector, and (if configured) the admin API.

The coordinator runs in the foreground. Use a process supervisor (systemd,
a container runtime) for daemonization.

Shutdown is triggered by SIGTERM, SIGINT, SIGHUP, or typing SHUTDOWN
followed by Enter on stdin.

Examples:
  # Start with default config location
  coordinator start

  # Start with a custom config file
  coordinator start --config /etc/docfs/coordinator.yaml

  # Override a setting via environment variable
  DOCFS_LOGGING_LEVEL=DEBUG coordinator start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadCoordinator(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := initLogger(cfg.Logging); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "docfs-coordinator",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	stopProfiling, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "docfs-coordinator",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	var coordMetrics metrics.CoordinatorMetrics
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		coordMetrics = prometheus.NewCoordinatorMetrics()
		metricsSrv = newMetricsServer(cfg.Metrics.Port)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
		logger.Info("metrics enabled", "port", cfg.Metrics.Port)
	}

	persister, closePersister, err := openPersister(cfg.Persistence)
	if err != nil {
		return fmt.Errorf("failed to open persistence backend: %w", err)
	}
	defer func() {
		if closePersister != nil {
			_ = closePersister()
		}
	}()

	store := metadatastore.New(metadatastore.Config{
		SearchCacheCapacity: cfg.SearchCache.Capacity,
		NodeEvictionTTL:     cfg.Cluster.NodeEvictionTTL,
	})
	if err := store.LoadFrom(persister); err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if fp, ok := persister.(metadatastore.FolderPersister); ok {
		if err := store.LoadFoldersFrom(fp); err != nil {
			logger.Warn("failed to load folders", "error", err)
		}
	}

	coord := coordinator.New(*cfg, store, coordMetrics)

	serverDone := make(chan error, 1)
	go func() { serverDone <- coord.Serve(ctx) }()

	var adminSrv *adminapi.Server
	if cfg.AdminAPI.Enabled {
		adminSrv, err = adminapi.NewServer(cfg.AdminAPI, filepath.Join(cfg.CacheDir, "admin"), store)
		if err != nil {
			cancel()
			<-serverDone
			return fmt.Errorf("failed to start admin API: %w", err)
		}
		go func() {
			if err := adminSrv.Start(ctx); err != nil {
				logger.Error("admin API server error", "error", err)
			}
		}()
		logger.Info("admin API enabled", "port", cfg.AdminAPI.Port)
	}

	stdinDone := make(chan struct{})
	go watchStdinShutdown(ctx, cancel, stdinDone)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	logger.Info("coordinator is running",
		"client_port", cfg.ClientPort, "node_port", cfg.NodePort)

	var runErr error
	select {
	case <-sigCh:
		logger.Info("shutdown signal received")
		cancel()
		runErr = <-serverDone
	case <-stdinDone:
		runErr = <-serverDone
	case runErr = <-serverDone:
	}
	signal.Stop(sigCh)

	if err := store.SaveTo(persister); err != nil {
		logger.Error("failed to save registry on shutdown", "error", err)
	}

	if adminSrv != nil {
		_ = adminSrv.Stop(context.Background())
	}

	if metricsSrv != nil {
		_ = metricsSrv.Close()
	}

	if runErr != nil {
		logger.Error("coordinator stopped with error", "error", runErr)
		return runErr
	}
	logger.Info("coordinator stopped")
	return nil
}

// watchStdinShutdown implements the operator-typed SHUTDOWN command: typing
// "SHUTDOWN" followed by Enter on stdin cancels ctx the same way a TERM
// signal would.
func watchStdinShutdown(ctx context.Context, cancel context.CancelFunc, done chan<- struct{}) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "SHUTDOWN" {
			logger.Info("SHUTDOWN command received on stdin")
			cancel()
			close(done)
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func initLogger(cfg config.LoggingConfig) error {
	if err := logger.Init(logger.Config{Level: cfg.Level, Format: cfg.Format, Output: cfg.Output}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func newMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: ":" + strconv.Itoa(port), Handler: mux}
}

// openPersister opens the configured registry persister. The returned close
// function may be nil for persisters with nothing to close.
func openPersister(cfg config.PersistenceConfig) (metadatastore.Persister, func() error, error) {
	switch cfg.Backend {
	case "badger":
		s, err := badgerstore.Open(cfg.Badger.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case "postgres":
		pgCfg, err := parsePostgresDSN(cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		pgCfg.MaxOpenConns = cfg.Postgres.MaxOpenConns
		s, err := pgstore.Open(pgCfg)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		return textfile.New(cfg.TextFile.Path), nil, nil
	}
}

// parsePostgresDSN converts the coordinator's single libpq-style
// "key=value key=value" DSN string into pgstore's discrete Config fields.
// pgstore speaks GORM's connection struct, not a raw DSN, so this is the one
// seam between the two persistence layers' configuration shapes.
func parsePostgresDSN(dsn string) (pgstore.Config, error) {
	var cfg pgstore.Config
	for _, field := range strings.Fields(dsn) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := kv[0], kv[1]
		switch key {
		case "host":
			cfg.Host = val
		case "port":
			p, err := strconv.Atoi(val)
			if err != nil {
				return cfg, fmt.Errorf("invalid port %q: %w", val, err)
			}
			cfg.Port = p
		case "dbname":
			cfg.Database = val
		case "user":
			cfg.User = val
		case "password":
			cfg.Password = val
		case "sslmode":
			cfg.SSLMode = val
		}
	}
	return cfg, nil
}
