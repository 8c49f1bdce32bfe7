// Command storagenode runs a docfs storage node: it registers with a
// coordinator, then serves the direct client data channel (READ, STREAM,
// WRITE, UNDO) while answering the coordinator's control channel
// (heartbeats, CREATE/DELETE/MOVE, CHECKPOINT/REVERT, REPLICATE, SHUTDOWN).
//
// Launch contract (spec.md §6): positional arguments
// <node_id> <coordinator_ip> <coordinator_port> <client_port>, optionally
// followed by --config naming a YAML file for the remaining settings. The
// positional values take precedence over the same keys in the file or the
// environment.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/internal/telemetry"
	"github.com/corefs/docfs/pkg/config"
	"github.com/corefs/docfs/pkg/metrics"
	"github.com/corefs/docfs/pkg/metrics/prometheus"
	"github.com/corefs/docfs/pkg/netserver"
	"github.com/corefs/docfs/pkg/storagenode"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "docfs-storagenode",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
		NodeID:         cfg.NodeID,
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
		ServiceName:    "docfs-storagenode",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
		NodeID:         cfg.NodeID,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	var lockMetrics metrics.LockMetrics
	var coldMetrics metrics.ColdTierMetrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		lockMetrics = prometheus.NewLockMetrics()
		coldMetrics = prometheus.NewColdTierMetrics()
	}

	node, err := storagenode.New(*cfg, lockMetrics, coldMetrics)
	if err != nil {
		return fmt.Errorf("failed to initialize node: %w", err)
	}

	if err := node.Dial(ctx); err != nil {
		return fmt.Errorf("failed to register with coordinator: %w", err)
	}

	dataListener := netserver.New(netserver.Config{
		BindAddress:     cfg.BindAddress,
		Port:            cfg.ClientPort,
		MaxConnections:  cfg.MaxConnections,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, "storagenode-data")

	errCh := make(chan error, 2)
	go func() { errCh <- dataListener.ServeWithFactory(ctx, &storagenode.DataConnectionFactory{Node: node}) }()
	go func() { errCh <- node.ServeControl(ctx) }()

	disconnectDone := make(chan struct{})
	go watchStdinDisconnect(ctx, cancel, disconnectDone)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	logger.Info("storage node is running",
		"node_id", cfg.NodeID, "client_port", cfg.ClientPort, "control_port", cfg.ControlPort())

	select {
	case <-sigCh:
		logger.Info("shutdown signal received")
		cancel()
	case <-disconnectDone:
		cancel()
	case err := <-errCh:
		cancel()
		if err != nil {
			logger.Error("storage node stopped with error", "error", err)
			return err
		}
	}
	signal.Stop(sigCh)

	_ = dataListener.Stop(context.Background())
	logger.Info("storage node stopped")
	return nil
}

// watchStdinDisconnect implements the operator DISCONNECT command (spec.md
// §6 "nodes exit 0 on ... operator DISCONNECT on stdin").
func watchStdinDisconnect(ctx context.Context, cancel context.CancelFunc, done chan<- struct{}) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "DISCONNECT" {
			logger.Info("DISCONNECT command received on stdin")
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

// parseArgs loads an optional --config file (with DOCFS_NODE_* environment
// overrides) via config.LoadNode, then sets the launch contract's four
// positional arguments on the result, so they win over the file and the
// environment.
func parseArgs(args []string) (*config.NodeConfig, error) {
	var configPath string
	var positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" && i+1 < len(args) {
			configPath = args[i+1]
			i++
			continue
		}
		positional = append(positional, args[i])
	}

	if len(positional) < 4 {
		return nil, fmt.Errorf("usage: storagenode <node_id> <coordinator_ip> <coordinator_port> <client_port> [--config path]")
	}

	coordPort, err := strconv.Atoi(positional[2])
	if err != nil {
		return nil, fmt.Errorf("invalid coordinator_port %q: %w", positional[2], err)
	}
	clientPort, err := strconv.Atoi(positional[3])
	if err != nil {
		return nil, fmt.Errorf("invalid client_port %q: %w", positional[3], err)
	}

	cfg, err := config.LoadNode(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.NodeID = positional[0]
	cfg.CoordinatorIP = positional[1]
	cfg.CoordinatorPort = coordPort
	cfg.ClientPort = clientPort
	return cfg, nil
}
