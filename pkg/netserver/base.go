// Package netserver provides the shared TCP accept-loop, connection tracking
// and graceful-shutdown mechanics used by both the coordinator's client/node
// listeners and a storage node's client listener.
package netserver

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corefs/docfs/internal/logger"
)

// ConnectionHandler serves a single accepted connection. Serve blocks until
// the connection is closed or the context is cancelled.
type ConnectionHandler interface {
	Serve(ctx context.Context)
}

// ConnectionFactory creates a ConnectionHandler for each accepted connection.
// The coordinator and storage node each implement this to wire their own
// per-connection request loop.
type ConnectionFactory interface {
	NewConnection(conn net.Conn) ConnectionHandler
}

// Config holds the settings common to every TCP listener in the cluster.
type Config struct {
	// BindAddress is the IP address to bind to. Empty or "0.0.0.0" binds to
	// all interfaces.
	BindAddress string

	// Port is the TCP port to listen on.
	Port int

	// MaxConnections limits the number of concurrent client connections.
	// 0 means unlimited.
	MaxConnections int

	// ShutdownTimeout bounds how long graceful shutdown waits for active
	// connections to finish before force-closing them.
	ShutdownTimeout time.Duration

	// MetricsLogInterval, if non-zero, logs active connection counts on this
	// interval.
	MetricsLogInterval time.Duration
}

// MetricsRecorder lets a server report connection-lifecycle counters to
// pkg/metrics. Nil disables metrics recording.
type MetricsRecorder interface {
	RecordConnectionAccepted()
	RecordConnectionClosed()
	RecordConnectionForceClosed()
	SetActiveConnections(count int32)
}

// Base provides the TCP accept loop, connection tracking, and graceful
// shutdown shared by the coordinator's and storage node's listeners.
// Callers create a Base with New and call ServeWithFactory with their own
// ConnectionFactory.
//
// All exported methods are safe for concurrent use. Shutdown is idempotent.
type Base struct {
	Config Config

	// Name identifies the listener in log lines, e.g. "coordinator-client",
	// "coordinator-control", "storagenode-data".
	Name string

	Metrics MetricsRecorder

	listener   net.Listener
	listenerMu sync.RWMutex

	activeConns  sync.WaitGroup
	shutdownOnce sync.Once
	Shutdown     chan struct{}
	ConnCount    atomic.Int32

	connSemaphore chan struct{}

	ShutdownCtx    context.Context
	CancelRequests context.CancelFunc

	ActiveConnections sync.Map // remote addr -> net.Conn

	// ListenerReady closes once the listener is accepting, for test
	// synchronization.
	ListenerReady chan struct{}
}

// New creates a Base in a stopped state. Call ServeWithFactory to start it.
func New(config Config, name string) *Base {
	var sem chan struct{}
	if config.MaxConnections > 0 {
		sem = make(chan struct{}, config.MaxConnections)
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())

	return &Base{
		Config:         config,
		Name:           name,
		Shutdown:       make(chan struct{}),
		connSemaphore:  sem,
		ShutdownCtx:    shutdownCtx,
		CancelRequests: cancel,
		ListenerReady:  make(chan struct{}),
	}
}

// ServeWithFactory runs the accept loop until ctx is cancelled, delegating
// connection handling to factory.
func (b *Base) ServeWithFactory(ctx context.Context, factory ConnectionFactory) error {
	listenAddr := fmt.Sprintf("%s:%d", b.Config.BindAddress, b.Config.Port)
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("%s: listen on port %d: %w", b.Name, b.Config.Port, err)
	}

	b.listenerMu.Lock()
	b.listener = listener
	b.listenerMu.Unlock()
	close(b.ListenerReady)

	logger.Info(b.Name+" listening", "port", b.Config.Port)

	go func() {
		<-ctx.Done()
		logger.Info(b.Name+" shutdown signal received", "error", ctx.Err())
		b.initiateShutdown()
	}()

	if b.Config.MetricsLogInterval > 0 {
		go b.logMetrics(ctx)
	}

	for {
		if b.connSemaphore != nil {
			select {
			case b.connSemaphore <- struct{}{}:
			case <-b.Shutdown:
				return b.gracefulShutdown()
			}
		}

		conn, err := b.listener.Accept()
		if err != nil {
			if b.connSemaphore != nil {
				<-b.connSemaphore
			}
			select {
			case <-b.Shutdown:
				return b.gracefulShutdown()
			default:
				logger.Debug(b.Name+" accept error", "error", err)
				continue
			}
		}

		if tcp, ok := conn.(*net.TCPConn); ok {
			if err := tcp.SetNoDelay(true); err != nil {
				logger.Debug(b.Name+" failed to set TCP_NODELAY", "error", err)
			}
		}

		b.activeConns.Add(1)
		b.ConnCount.Add(1)

		addr := conn.RemoteAddr().String()
		b.ActiveConnections.Store(addr, conn)

		current := b.ConnCount.Load()
		if b.Metrics != nil {
			b.Metrics.RecordConnectionAccepted()
			b.Metrics.SetActiveConnections(current)
		}

		logger.Debug(b.Name+" connection accepted", "address", addr, "active", current)

		handler := factory.NewConnection(conn)

		go func(addr string, c net.Conn) {
			defer func() {
				b.ActiveConnections.Delete(addr)
				b.activeConns.Done()
				b.ConnCount.Add(-1)
				if b.connSemaphore != nil {
					<-b.connSemaphore
				}
				if b.Metrics != nil {
					b.Metrics.RecordConnectionClosed()
					b.Metrics.SetActiveConnections(b.ConnCount.Load())
				}
				logger.Debug(b.Name+" connection closed", "address", addr, "active", b.ConnCount.Load())
			}()

			handler.Serve(b.ShutdownCtx)
		}(addr, conn)
	}
}

func (b *Base) initiateShutdown() {
	b.shutdownOnce.Do(func() {
		logger.Debug(b.Name + " shutdown initiated")
		close(b.Shutdown)

		b.listenerMu.Lock()
		if b.listener != nil {
			if err := b.listener.Close(); err != nil {
				logger.Debug(b.Name+" error closing listener", "error", err)
			}
		}
		b.listenerMu.Unlock()

		b.interruptBlockingReads()
		b.CancelRequests()
	})
}

func (b *Base) interruptBlockingReads() {
	deadline := time.Now().Add(100 * time.Millisecond)
	b.ActiveConnections.Range(func(key, value any) bool {
		if conn, ok := value.(net.Conn); ok {
			if err := conn.SetReadDeadline(deadline); err != nil {
				logger.Debug(b.Name+" error setting shutdown deadline", "address", key, "error", err)
			}
		}
		return true
	})
}

func (b *Base) gracefulShutdown() error {
	active := b.ConnCount.Load()
	logger.Info(b.Name+" graceful shutdown: waiting for active connections",
		"active", active, "timeout", b.Config.ShutdownTimeout)

	done := make(chan struct{})
	go func() {
		b.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info(b.Name + " graceful shutdown complete")
		return nil
	case <-time.After(b.Config.ShutdownTimeout):
		remaining := b.ConnCount.Load()
		logger.Warn(b.Name+" shutdown timeout exceeded, forcing closure",
			"active", remaining, "timeout", b.Config.ShutdownTimeout)
		b.forceCloseConnections()
		return fmt.Errorf("%s shutdown timeout: %d connections force-closed", b.Name, remaining)
	}
}

func (b *Base) forceCloseConnections() {
	closed := 0
	b.ActiveConnections.Range(func(key, value any) bool {
		addr := key.(string)
		conn := value.(net.Conn)
		if err := conn.Close(); err != nil {
			logger.Debug(b.Name+" error force-closing connection", "address", addr, "error", err)
		} else {
			closed++
			if b.Metrics != nil {
				b.Metrics.RecordConnectionForceClosed()
			}
		}
		return true
	})
	if closed > 0 {
		logger.Info(b.Name+" force-closed connections", "count", closed)
	}
}

// Stop initiates graceful shutdown and waits up to the context deadline (or
// Config.ShutdownTimeout if ctx is nil) for active connections to finish.
// Safe to call multiple times and concurrently with ServeWithFactory.
func (b *Base) Stop(ctx context.Context) error {
	b.initiateShutdown()

	if ctx == nil {
		return b.gracefulShutdown()
	}

	done := make(chan struct{})
	go func() {
		b.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info(b.Name + " graceful shutdown complete")
		return nil
	case <-ctx.Done():
		remaining := b.ConnCount.Load()
		logger.Warn(b.Name+" shutdown context cancelled", "active", remaining, "error", ctx.Err())
		return ctx.Err()
	}
}

func (b *Base) logMetrics(ctx context.Context) {
	ticker := time.NewTicker(b.Config.MetricsLogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info(b.Name+" metrics", "active_connections", b.ConnCount.Load())
		}
	}
}

// ActiveConnectionCount returns the current number of active connections.
func (b *Base) ActiveConnectionCount() int32 {
	return b.ConnCount.Load()
}

// ListenerAddr blocks until the listener is ready and returns its address.
// Used by tests that bind to port 0.
func (b *Base) ListenerAddr() string {
	<-b.ListenerReady
	b.listenerMu.RLock()
	defer b.listenerMu.RUnlock()
	if b.listener == nil {
		return ""
	}
	return b.listener.Addr().String()
}
