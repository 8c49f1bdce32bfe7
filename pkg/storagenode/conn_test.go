package storagenode

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corefs/docfs/pkg/wire"
)

// newTestDataConnection starts a dataConnection serving the server half of a
// net.Pipe in the background and returns the client half for the test to
// drive. Callers must send an equal number of requests and reads; net.Pipe
// is unbuffered, so the background goroutine and the test alternate in
// lockstep.
func newTestDataConnection(t *testing.T, n *Node) net.Conn {
	t.Helper()
	server, client := net.Pipe()
	conn := &dataConnection{node: n, conn: server}
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

func TestDataConnectionRead(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))
	require.NoError(t, n.files.Write("report", []byte("hello")))

	conn := newTestDataConnection(t, n)
	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRead, Username: "alice", Filename: "report"})
	assert.Equal(t, wire.ResultSuccess, reply.ResultCode)
	assert.Equal(t, "hello", string(reply.Data))
}

func TestDataConnectionReadMissingFile(t *testing.T) {
	n := newTestNode(t)
	conn := newTestDataConnection(t, n)

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpRead, Username: "alice", Filename: "missing"})
	assert.Equal(t, wire.ResultNotFound, reply.ResultCode)
}

func TestDataConnectionStream(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))
	require.NoError(t, n.files.Write("report", []byte("one two three")))

	conn := newTestDataConnection(t, n)

	var words []string
	require.NoError(t, wire.Encode(conn, &wire.Frame{Opcode: wire.OpStream, Username: "alice", Filename: "report"}))
	for {
		reply, err := wire.Decode(conn)
		require.NoError(t, err)
		if reply.ResultCode == wire.ResultSuccess {
			break
		}
		require.Equal(t, wire.ResultData, reply.ResultCode)
		words = append(words, string(reply.Data))
	}

	assert.Equal(t, []string{"one\n", "two\n", "three\n"}, words)
}

func TestDataConnectionWriteEditCycle(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))
	require.NoError(t, n.files.Write("report", []byte("Hello world")))

	conn := newTestDataConnection(t, n)

	begin := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpWrite, Username: "alice", Filename: "report", SentenceNum: 0})
	require.Equal(t, wire.ResultSuccess, begin.ResultCode)
	assert.Equal(t, "Hello world", string(begin.Data))

	step := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpEditInsert, Filename: "report", WordIndex: 2, Data: []byte(".")})
	require.Equal(t, wire.ResultSuccess, step.ResultCode)
	assert.Equal(t, "Hello world .", string(step.Data))

	commit := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpEditCommit, Filename: "report"})
	require.Equal(t, wire.ResultSuccess, commit.ResultCode)
	assert.Equal(t, "Hello world .\n", string(commit.Data))

	onDisk, err := n.files.Read("report")
	require.NoError(t, err)
	assert.Equal(t, "Hello world .\n", string(onDisk))
}

func TestDataConnectionWriteLockConflict(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))

	holderConn := newTestDataConnection(t, n)
	begin := roundTrip(t, holderConn, &wire.Frame{Opcode: wire.OpWrite, Username: "alice", Filename: "report", SentenceNum: 0})
	require.Equal(t, wire.ResultSuccess, begin.ResultCode)

	otherConn := newTestDataConnection(t, n)
	reply := roundTrip(t, otherConn, &wire.Frame{Opcode: wire.OpWrite, Username: "bob", Filename: "report", SentenceNum: 0})
	assert.Equal(t, wire.ResultLocked, reply.ResultCode)
	assert.Equal(t, "alice", string(reply.Data))
}

func TestDataConnectionUndoRejectsConsecutive(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))
	require.NoError(t, n.files.Write("report", []byte("first")))
	require.NoError(t, n.files.Write("report", []byte("second")))

	conn := newTestDataConnection(t, n)

	first := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpUndo, Filename: "report"})
	assert.Equal(t, wire.ResultSuccess, first.ResultCode)

	second := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpUndo, Filename: "report"})
	assert.Equal(t, wire.ResultDenied, second.ResultCode)
}

func TestDataConnectionEditInsertWithoutSessionIsBadRequest(t *testing.T) {
	n := newTestNode(t)
	conn := newTestDataConnection(t, n)

	reply := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpEditInsert, Filename: "report", WordIndex: 0, Data: []byte("x")})
	assert.Equal(t, wire.ResultBadRequest, reply.ResultCode)
}

func TestDataConnectionClosesOnDisconnect(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))

	conn := newTestDataConnection(t, n)
	begin := roundTrip(t, conn, &wire.Frame{Opcode: wire.OpWrite, Username: "alice", Filename: "report", SentenceNum: 0})
	require.Equal(t, wire.ResultSuccess, begin.ResultCode)

	conn.Close()
	time.Sleep(20 * time.Millisecond) // let the server goroutine observe the close and release the lock

	_, ok := n.locks.Acquire("report", 0, "bob")
	assert.True(t, ok, "lock must be released when the data connection drops")
}
