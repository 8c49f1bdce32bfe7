package coordinator

import (
	"context"
	"time"

	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/wire"
)

// runFailureDetector sends a HEARTBEAT on every active node's control
// channel once per HeartbeatInterval, flipping a node to FAILED on I/O
// error (spec.md §4.4). No re-dialing is attempted; recovery happens only
// when the node re-registers. When NodeEvictionTTL is configured
// (SPEC_FULL.md §4, resolving spec.md §9 Open Question 5), a node FAILED
// for longer than the TTL is reported to metrics as evicted on every tick
// it remains unreachable.
func (c *Coordinator) runFailureDetector(ctx context.Context) error {
	interval := c.cfg.Cluster.HeartbeatInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.beatAllNodes()
		}
	}
}

func (c *Coordinator) beatAllNodes() {
	for _, rec := range c.store.ListNodes() {
		c.beatNode(rec)
	}
}

func (c *Coordinator) beatNode(rec *metadatastore.NodeRecord) {
	nc, ok := c.nodeByID(rec.ID)
	if !ok {
		c.markFailed(rec.ID)
		return
	}

	reply, err := nc.Call(&wire.Frame{Opcode: wire.OpHeartbeat, Username: rec.ID})
	if err != nil || reply.ResultCode != wire.ResultAck {
		logger.Warn("coordinator: heartbeat failed", "node_id", rec.ID, "error", err)
		c.dropNode(rec.ID, nc)
		nc.Close()
		c.markFailed(rec.ID)
		return
	}

	c.store.MarkHeartbeatSuccess(rec.ID)
	if c.metrics != nil {
		c.metrics.RecordHeartbeat(rec.ID, true)
	}
}

func (c *Coordinator) markFailed(id string) {
	c.store.MarkFailed(id)
	if c.metrics != nil {
		c.metrics.RecordHeartbeat(id, false)
	}

	ttl := c.cfg.Cluster.NodeEvictionTTL
	if ttl <= 0 {
		return
	}
	rec, err := c.store.GetNode(id)
	if err != nil || rec.FailedSince.IsZero() {
		return
	}
	if time.Since(rec.FailedSince) > ttl && c.metrics != nil {
		c.metrics.RecordNodeEvicted(id)
	}
}
