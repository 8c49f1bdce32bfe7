package coordinator

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corefs/docfs/pkg/wire"
)

func TestNodeConnCallRoundTrips(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	nc := newNodeConn("node-1", "10.0.0.1", 9001, client)

	go func() {
		req, err := wire.Decode(server)
		if err != nil {
			return
		}
		_ = wire.Encode(server, req.Reply(wire.ResultSuccess))
	}()

	reply, err := nc.Call(&wire.Frame{Opcode: wire.OpCreate, Filename: "report"})
	require.NoError(t, err)
	assert.Equal(t, wire.ResultSuccess, reply.ResultCode)
}

func TestNodeConnCallAfterCloseFails(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	nc := newNodeConn("node-1", "10.0.0.1", 9001, client)
	nc.Close()

	_, err := nc.Call(&wire.Frame{Opcode: wire.OpCreate, Filename: "report"})
	assert.Error(t, err)
}

func TestNodeConnCloseIsIdempotent(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	nc := newNodeConn("node-1", "10.0.0.1", 9001, client)

	nc.Close()
	assert.NotPanics(t, func() { nc.Close() })
}
