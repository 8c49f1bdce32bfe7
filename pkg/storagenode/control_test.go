package storagenode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corefs/docfs/pkg/wire"
)

func TestDispatchControlCreateDeleteCycle(t *testing.T) {
	n := newTestNode(t)

	create := n.dispatchControl(&wire.Frame{Opcode: wire.OpCreate, Filename: "report"})
	require.Equal(t, wire.ResultSuccess, create.ResultCode)
	assert.True(t, n.files.Exists("report"))

	dup := n.dispatchControl(&wire.Frame{Opcode: wire.OpCreate, Filename: "report"})
	assert.Equal(t, wire.ResultExists, dup.ResultCode)

	del := n.dispatchControl(&wire.Frame{Opcode: wire.OpDelete, Filename: "report"})
	require.Equal(t, wire.ResultSuccess, del.ResultCode)
	assert.False(t, n.files.Exists("report"))
}

func TestDispatchControlHeartbeat(t *testing.T) {
	n := newTestNode(t)
	reply := n.dispatchControl(&wire.Frame{Opcode: wire.OpHeartbeat})
	assert.Equal(t, wire.ResultAck, reply.ResultCode)
}

func TestDispatchControlCheckpointAndRevert(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))
	require.NoError(t, n.files.Write("report", []byte("hello world")))

	chk := n.dispatchControl(&wire.Frame{Opcode: wire.OpCheckpoint, Filename: "report", CheckpointTag: "v1"})
	require.Equal(t, wire.ResultSuccess, chk.ResultCode)
	assert.Equal(t, "11", string(chk.Data))

	require.NoError(t, n.files.Write("report", []byte("changed")))

	rev := n.dispatchControl(&wire.Frame{Opcode: wire.OpRevert, Filename: "report", CheckpointTag: "v1"})
	require.Equal(t, wire.ResultSuccess, rev.ResultCode)

	content, err := n.files.Read("report")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))
}

func TestDispatchControlRevertUnknownTag(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))

	reply := n.dispatchControl(&wire.Frame{Opcode: wire.OpRevert, Filename: "report", CheckpointTag: "missing"})
	assert.Equal(t, wire.ResultCheckpointNotFound, reply.ResultCode)
}

func TestDispatchControlInfoReturnsStats(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))
	require.NoError(t, n.files.Write("report", []byte("one two three")))

	reply := n.dispatchControl(&wire.Frame{Opcode: wire.OpInfo, Filename: "report"})
	require.Equal(t, wire.ResultSuccess, reply.ResultCode)
	assert.Equal(t, "13|3|13", string(reply.Data))
}

func TestDispatchControlInfoMissingFile(t *testing.T) {
	n := newTestNode(t)
	reply := n.dispatchControl(&wire.Frame{Opcode: wire.OpInfo, Filename: "missing"})
	assert.Equal(t, wire.ResultNotFound, reply.ResultCode)
}

func TestDispatchControlReplicate(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))
	require.NoError(t, n.files.Write("report", []byte("mirrored content")))

	reply := n.dispatchControl(&wire.Frame{Opcode: wire.OpReplicate, Filename: "report"})
	require.Equal(t, wire.ResultSuccess, reply.ResultCode)
	assert.Equal(t, "mirrored content", string(reply.Data))
}

func TestDispatchControlUnknownOpcode(t *testing.T) {
	n := newTestNode(t)
	reply := n.dispatchControl(&wire.Frame{Opcode: wire.OpSearch})
	assert.Equal(t, wire.ResultBadRequest, reply.ResultCode)
}
