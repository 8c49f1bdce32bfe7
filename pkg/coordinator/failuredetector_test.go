package coordinator

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/wire"
)

func TestBeatNodeMarksHeartbeatSuccessOnAck(t *testing.T) {
	c := newTestCoordinator(t)
	c.store.RegisterNode("node-1", "10.0.0.1", 9001, 10001, nil)

	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()
	c.setNode("node-1", newNodeConn("node-1", "10.0.0.1", 10001, client))

	go func() {
		req, err := wire.Decode(server)
		if err != nil {
			return
		}
		_ = wire.Encode(server, req.Reply(wire.ResultAck))
	}()

	rec, err := c.store.GetNode("node-1")
	require.NoError(t, err)
	c.beatNode(rec)

	rec, err = c.store.GetNode("node-1")
	require.NoError(t, err)
	assert.Equal(t, metadatastore.NodeActive, rec.Status)
}

func TestBeatNodeMarksFailedWithNoLiveConn(t *testing.T) {
	c := newTestCoordinator(t)
	c.store.RegisterNode("node-1", "10.0.0.1", 9001, 10001, nil)

	rec, err := c.store.GetNode("node-1")
	require.NoError(t, err)
	c.beatNode(rec)

	rec, err = c.store.GetNode("node-1")
	require.NoError(t, err)
	assert.Equal(t, metadatastore.NodeFailed, rec.Status)
}

func TestBeatNodeMarksFailedOnIOError(t *testing.T) {
	c := newTestCoordinator(t)
	c.store.RegisterNode("node-1", "10.0.0.1", 9001, 10001, nil)

	server, client := net.Pipe()
	server.Close()
	defer client.Close()
	c.setNode("node-1", newNodeConn("node-1", "10.0.0.1", 10001, client))

	rec, err := c.store.GetNode("node-1")
	require.NoError(t, err)
	c.beatNode(rec)

	rec, err = c.store.GetNode("node-1")
	require.NoError(t, err)
	assert.Equal(t, metadatastore.NodeFailed, rec.Status)

	_, live := c.nodeByID("node-1")
	assert.False(t, live)
}

func TestMarkFailedRecordsEvictionPastTTL(t *testing.T) {
	c := newTestCoordinator(t)
	c.cfg.Cluster.NodeEvictionTTL = time.Millisecond
	c.store.RegisterNode("node-1", "10.0.0.1", 9001, 10001, nil)
	c.store.MarkFailed("node-1")
	time.Sleep(5 * time.Millisecond)

	assert.NotPanics(t, func() { c.markFailed("node-1") })
}
