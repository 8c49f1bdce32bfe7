// Package coordinator implements the naming/routing process: the
// client-facing wire protocol router, the node registration and control
// channel, and the background failure detector (spec.md §4.1-§4.4).
// Everything here is glue over pkg/metadatastore, which owns the actual
// registry, ACL, folder, checkpoint, request, session and node state.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/pkg/config"
	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/metrics"
	"github.com/corefs/docfs/pkg/netserver"
)

// Coordinator owns the metadata store, the table of live node control
// channels, and the configuration both listeners and the failure detector
// read from.
type Coordinator struct {
	cfg   config.CoordinatorConfig
	store *metadatastore.Store

	metrics metrics.CoordinatorMetrics

	nodesMu sync.Mutex
	nodes   map[string]*nodeConn

	backups     *readCache
	execAllowed bool

	clientListener *netserver.Base
	nodeListener   *netserver.Base
}

// New constructs a Coordinator. Callers that need to restore persisted
// state should call store.LoadFrom before passing it in.
func New(cfg config.CoordinatorConfig, store *metadatastore.Store, m metrics.CoordinatorMetrics) *Coordinator {
	return &Coordinator{
		cfg:         cfg,
		store:       store,
		metrics:     m,
		nodes:       make(map[string]*nodeConn),
		backups:     newReadCache(cfg.CacheDir, cfg.BackupDir),
		execAllowed: cfg.ExecEnabled,
	}
}

// Serve starts the client listener, the node registration listener, and the
// failure detector, blocking until ctx is cancelled or one of them fails.
func (c *Coordinator) Serve(ctx context.Context) error {
	c.clientListener = netserver.New(netserver.Config{
		BindAddress:     c.cfg.BindAddress,
		Port:            c.cfg.ClientPort,
		MaxConnections:  c.cfg.MaxConnections,
		ShutdownTimeout: c.cfg.ShutdownTimeout,
	}, "coordinator-client")
	c.clientListener.Metrics = c.metricsAdapter()

	c.nodeListener = netserver.New(netserver.Config{
		BindAddress:     c.cfg.BindAddress,
		Port:            c.cfg.NodePort,
		ShutdownTimeout: c.cfg.ShutdownTimeout,
	}, "coordinator-control")

	errCh := make(chan error, 3)
	go func() { errCh <- c.clientListener.ServeWithFactory(ctx, &clientConnectionFactory{coord: c}) }()
	go func() { errCh <- c.nodeListener.ServeWithFactory(ctx, &nodeRegistrationFactory{coord: c}) }()
	go func() { errCh <- c.runFailureDetector(ctx) }()

	select {
	case <-ctx.Done():
		return c.shutdown()
	case err := <-errCh:
		return err
	}
}

func (c *Coordinator) shutdown() error {
	logger.Info("coordinator shutting down")
	if c.clientListener != nil {
		_ = c.clientListener.Stop(context.Background())
	}
	if c.nodeListener != nil {
		_ = c.nodeListener.Stop(context.Background())
	}
	c.nodesMu.Lock()
	for id, nc := range c.nodes {
		nc.Close()
		delete(c.nodes, id)
	}
	c.nodesMu.Unlock()
	return nil
}

// Store exposes the underlying metadata store, e.g. for persistence at
// startup/shutdown in cmd/coordinator.
func (c *Coordinator) Store() *metadatastore.Store { return c.store }

func (c *Coordinator) metricsAdapter() netserver.MetricsRecorder {
	if c.metrics == nil {
		return nil
	}
	return coordinatorMetricsRecorder{c.metrics}
}

// coordinatorMetricsRecorder adapts metrics.CoordinatorMetrics (which
// additionally reports request and heartbeat metrics) to the narrower
// netserver.MetricsRecorder the accept loop calls into.
type coordinatorMetricsRecorder struct {
	m metrics.CoordinatorMetrics
}

func (r coordinatorMetricsRecorder) RecordConnectionAccepted()    { r.m.RecordConnectionAccepted() }
func (r coordinatorMetricsRecorder) RecordConnectionClosed()      { r.m.RecordConnectionClosed() }
func (r coordinatorMetricsRecorder) RecordConnectionForceClosed() { r.m.RecordConnectionForceClosed() }
func (r coordinatorMetricsRecorder) SetActiveConnections(count int32) {
	r.m.SetActiveConnections(count)
}

// nodeByID returns the live control-channel wrapper for id, if the node is
// currently registered and connected.
func (c *Coordinator) nodeByID(id string) (*nodeConn, bool) {
	c.nodesMu.Lock()
	defer c.nodesMu.Unlock()
	nc, ok := c.nodes[id]
	return nc, ok
}

func (c *Coordinator) setNode(id string, nc *nodeConn) {
	c.nodesMu.Lock()
	defer c.nodesMu.Unlock()
	if old, exists := c.nodes[id]; exists {
		old.Close()
	}
	c.nodes[id] = nc
}

func (c *Coordinator) dropNode(id string, nc *nodeConn) {
	c.nodesMu.Lock()
	defer c.nodesMu.Unlock()
	if cur, ok := c.nodes[id]; ok && cur == nc {
		delete(c.nodes, id)
	}
}

func nodeUnavailable(id string) error {
	return fmt.Errorf("coordinator: node %s has no live control channel", id)
}
