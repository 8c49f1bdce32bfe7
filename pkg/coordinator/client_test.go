package coordinator

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corefs/docfs/pkg/config"
	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/wire"
)

// newTestCoordinator builds a Coordinator over an in-memory store with no
// persistence and no metrics, for tests that don't need a live listener.
func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	store := metadatastore.New(metadatastore.Config{SearchCacheCapacity: 64})
	dir := t.TempDir()
	cfg := config.CoordinatorConfig{CacheDir: dir, BackupDir: dir}
	return New(cfg, store, nil)
}

// newTestClientConnection starts a clientConnection serving the server half
// of a net.Pipe in the background and returns the client half for the test
// to drive.
func newTestClientConnection(t *testing.T, c *Coordinator) net.Conn {
	t.Helper()
	server, client := net.Pipe()
	conn := &clientConnection{coord: c, conn: server}
	go conn.Serve(context.Background())
	t.Cleanup(func() { client.Close() })
	return client
}

func roundTrip(t *testing.T, conn net.Conn, req *wire.Frame) *wire.Frame {
	t.Helper()
	require.NoError(t, wire.Encode(conn, req))
	reply, err := wire.Decode(conn)
	require.NoError(t, err)
	return reply
}

// registerFakeNode wires a net.Pipe into c.nodes under id, with a background
// goroutine answering every request with a canned success reply carrying no
// data. The pipe is closed by t.Cleanup when the test ends.
func registerFakeNode(t *testing.T, c *Coordinator, id, ip string, clientPort int) {
	t.Helper()
	_, err := c.store.GetNode(id)
	if err != nil {
		c.store.RegisterNode(id, ip, clientPort, clientPort+1000, nil)
	}
	server, client := net.Pipe()
	nc := newNodeConn(id, ip, clientPort+1000, client)
	c.setNode(id, nc)
	t.Cleanup(func() { server.Close() })

	go func() {
		for {
			req, err := wire.Decode(server)
			if err != nil {
				return
			}
			reply := req.Reply(wire.ResultSuccess)
			if err := wire.Encode(server, reply); err != nil {
				return
			}
		}
	}()
}

func TestHandleRegisterClientEstablishesSession(t *testing.T) {
	c := newTestCoordinator(t)
	conn := newTestClientConnection(t, c)

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "alice"})
	assert.Equal(t, wire.ResultSuccess, reply.ResultCode)
}

func TestHandleRegisterClientRejectsDuplicateSession(t *testing.T) {
	c := newTestCoordinator(t)
	require.NoError(t, c.store.BeginSession("alice"))

	conn := newTestClientConnection(t, c)
	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "alice"})
	assert.Equal(t, wire.ResultDenied, reply.ResultCode)
}

func TestDispatchRequiresRegistrationFirst(t *testing.T) {
	c := newTestCoordinator(t)
	conn := newTestClientConnection(t, c)

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpList, Username: "alice"})
	assert.Equal(t, wire.ResultDenied, reply.ResultCode)
}

func TestHandleCreateAssignsDefaultNodeAndRegistersFile(t *testing.T) {
	c := newTestCoordinator(t)
	registerFakeNode(t, c, "node-1", "127.0.0.1", 9001)

	conn := newTestClientConnection(t, c)
	roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "alice"})

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpCreate, Username: "alice", Filename: "report"})
	require.Equal(t, wire.ResultSuccess, reply.ResultCode)

	rec, err := c.store.GetFile("report")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Owner)
	assert.Equal(t, "node-1", rec.NodeID)
}

func TestHandleCreateRejectsExistingName(t *testing.T) {
	c := newTestCoordinator(t)
	registerFakeNode(t, c, "node-1", "127.0.0.1", 9001)
	_, err := c.store.CreateFile("report", "alice", "node-1", "")
	require.NoError(t, err)

	conn := newTestClientConnection(t, c)
	roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "alice"})

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpCreate, Username: "alice", Filename: "report"})
	assert.Equal(t, wire.ResultExists, reply.ResultCode)
}

func TestHandleCreateWithNoActiveNodeIsUnavailable(t *testing.T) {
	c := newTestCoordinator(t)
	conn := newTestClientConnection(t, c)
	roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "alice"})

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpCreate, Username: "alice", Filename: "report"})
	assert.Equal(t, wire.ResultUnavailable, reply.ResultCode)
}

func TestHandleReadRefersToOwningNodeWhenActive(t *testing.T) {
	c := newTestCoordinator(t)
	registerFakeNode(t, c, "node-1", "10.0.0.5", 9001)
	_, err := c.store.CreateFile("report", "alice", "node-1", "")
	require.NoError(t, err)

	conn := newTestClientConnection(t, c)
	roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "alice"})

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRead, Username: "alice", Filename: "report"})
	require.Equal(t, wire.ResultSuccess, reply.ResultCode)
	assert.Equal(t, "10.0.0.5", reply.NodeIP)
	assert.Equal(t, int32(9001), reply.NodePort)
}

func TestHandleReadUnknownFile(t *testing.T) {
	c := newTestCoordinator(t)
	conn := newTestClientConnection(t, c)
	roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "alice"})

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRead, Username: "alice", Filename: "missing"})
	assert.Equal(t, wire.ResultNotFound, reply.ResultCode)
}

func TestHandleReadFallsBackToCacheWhenNodeDown(t *testing.T) {
	c := newTestCoordinator(t)
	c.store.RegisterNode("node-1", "10.0.0.5", 9001, 10001, nil)
	_, err := c.store.CreateFile("report", "alice", "node-1", "")
	require.NoError(t, err)
	c.store.MarkFailed("node-1")
	c.backups.putCached("report", []byte("cached content"))

	conn := newTestClientConnection(t, c)
	roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "alice"})

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRead, Username: "alice", Filename: "report"})
	require.Equal(t, wire.ResultSuccess, reply.ResultCode)
	assert.Equal(t, "cached content", string(reply.Data))
}

func TestHandleReadDeniedWithoutAccess(t *testing.T) {
	c := newTestCoordinator(t)
	registerFakeNode(t, c, "node-1", "10.0.0.5", 9001)
	_, err := c.store.CreateFile("report", "alice", "node-1", "")
	require.NoError(t, err)

	conn := newTestClientConnection(t, c)
	roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "bob"})

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRead, Username: "bob", Filename: "report"})
	assert.Equal(t, wire.ResultDenied, reply.ResultCode)
}

func TestHandleDeleteOwnerOnly(t *testing.T) {
	c := newTestCoordinator(t)
	registerFakeNode(t, c, "node-1", "10.0.0.5", 9001)
	_, err := c.store.CreateFile("report", "alice", "node-1", "")
	require.NoError(t, err)

	conn := newTestClientConnection(t, c)
	roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "bob"})

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpDelete, Username: "bob", Filename: "report"})
	assert.Equal(t, wire.ResultDenied, reply.ResultCode)
}

func TestHandleDeleteRemovesRegistryEntry(t *testing.T) {
	c := newTestCoordinator(t)
	registerFakeNode(t, c, "node-1", "10.0.0.5", 9001)
	_, err := c.store.CreateFile("report", "alice", "node-1", "")
	require.NoError(t, err)

	conn := newTestClientConnection(t, c)
	roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "alice"})

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpDelete, Username: "alice", Filename: "report"})
	require.Equal(t, wire.ResultSuccess, reply.ResultCode)

	_, err = c.store.GetFile("report")
	assert.ErrorIs(t, err, metadatastore.ErrFileNotFound)
}

func TestHandleWriteReferralDeniedWithoutAccess(t *testing.T) {
	c := newTestCoordinator(t)
	registerFakeNode(t, c, "node-1", "10.0.0.5", 9001)
	_, err := c.store.CreateFile("report", "alice", "node-1", "")
	require.NoError(t, err)

	conn := newTestClientConnection(t, c)
	roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "bob"})

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpWrite, Username: "bob", Filename: "report"})
	assert.Equal(t, wire.ResultDenied, reply.ResultCode)
}

func TestHandleWriteReferralRefersOwnerToNode(t *testing.T) {
	c := newTestCoordinator(t)
	registerFakeNode(t, c, "node-1", "10.0.0.5", 9001)
	_, err := c.store.CreateFile("report", "alice", "node-1", "")
	require.NoError(t, err)

	conn := newTestClientConnection(t, c)
	roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRegisterClient, Username: "alice"})

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpWrite, Username: "alice", Filename: "report"})
	require.Equal(t, wire.ResultSuccess, reply.ResultCode)
	assert.Equal(t, "10.0.0.5", reply.NodeIP)
}
