package coordinator

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/wire"
)

func TestRegistrationConnectionRegistersNode(t *testing.T) {
	c := newTestCoordinator(t)
	server, client := net.Pipe()
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	rc := &registrationConnection{coord: c, conn: server}
	done := make(chan struct{})
	go func() {
		rc.Serve(ctx)
		close(done)
	}()

	req := &wire.Frame{
		Opcode:    wire.OpRegisterNode,
		Username:  "node-1",
		NodeIP:    "10.0.0.1",
		NodePort:  9001,
		WordIndex: 10001,
		Data:      []byte("report\nnotes"),
	}
	require.NoError(t, wire.Encode(client, req))
	reply, err := wire.Decode(client)
	require.NoError(t, err)
	assert.Equal(t, wire.ResultSuccess, reply.ResultCode)

	rec, err := c.store.GetNode("node-1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", rec.IP)
	assert.Equal(t, 9001, rec.ClientPort)
	assert.Equal(t, metadatastore.NodeActive, rec.Status)

	_, live := c.nodeByID("node-1")
	assert.True(t, live)

	cancel()
	<-done
}

func TestRegistrationConnectionRejectsWrongFirstOpcode(t *testing.T) {
	c := newTestCoordinator(t)
	server, client := net.Pipe()
	defer client.Close()

	go (&registrationConnection{coord: c, conn: server}).Serve(context.Background())

	require.NoError(t, wire.Encode(client, &wire.Frame{Opcode: wire.OpRead, Username: "node-1"}))
	reply, err := wire.Decode(client)
	require.NoError(t, err)
	assert.Equal(t, wire.ResultBadRequest, reply.ResultCode)
}
