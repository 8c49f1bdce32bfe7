package coordinator

import (
	"strconv"
	"strings"

	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/wire"
)

// handleCheckpoint asks the owning node to snapshot the live file under
// CheckpointTag, then indexes the result (spec.md §4.2 CHECKPOINT). Requires
// write access, matching the source's "checkpoint is a privileged save
// point" behavior.
func (c *clientConnection) handleCheckpoint(req *wire.Frame) *wire.Frame {
	rec, err := c.coord.store.GetFile(req.Filename)
	if err != nil {
		return storeError(req, err)
	}
	if ok, err := c.coord.store.CheckAccess(req.Filename, req.Username, metadatastore.AccessWrite); err != nil {
		return storeError(req, err)
	} else if !ok {
		return req.ReplyText(wire.ResultDenied, "write access denied")
	}

	nc, ok := c.coord.nodeByID(rec.NodeID)
	if !ok {
		return req.ReplyText(wire.ResultUnavailable, "owning node is not available")
	}
	reply, err := nc.Call(&wire.Frame{Opcode: wire.OpCheckpoint, Filename: req.Filename, CheckpointTag: req.CheckpointTag})
	if err != nil {
		c.coord.dropNode(rec.NodeID, nc)
		nc.Close()
		return req.ReplyText(wire.ResultUnavailable, err.Error())
	}
	if reply.ResultCode.IsError() {
		return req.ReplyData(reply.ResultCode, reply.Data)
	}

	size, _ := strconv.ParseInt(string(reply.Data), 10, 64)
	if err := c.coord.store.AddCheckpoint(req.Filename, req.CheckpointTag, req.Username, size); err != nil {
		return storeError(req, err)
	}
	return req.Reply(wire.ResultSuccess)
}

// handleViewCheckpoint reports one checkpoint's indexed metadata (spec.md
// §4.2 VIEWCHECKPOINT).
func (c *clientConnection) handleViewCheckpoint(req *wire.Frame) *wire.Frame {
	if ok, err := c.coord.store.CheckAccess(req.Filename, req.Username, metadatastore.AccessRead); err != nil {
		return storeError(req, err)
	} else if !ok {
		return req.ReplyText(wire.ResultDenied, "read access denied")
	}
	cp, err := c.coord.store.GetCheckpoint(req.Filename, req.CheckpointTag)
	if err != nil {
		return storeError(req, err)
	}
	return req.ReplyText(wire.ResultSuccess, formatCheckpoint(cp))
}

// handleRevert asks the owning node to restore the live file from a
// checkpoint's bytes; requires write access (spec.md §4.2 REVERT).
func (c *clientConnection) handleRevert(req *wire.Frame) *wire.Frame {
	rec, err := c.coord.store.GetFile(req.Filename)
	if err != nil {
		return storeError(req, err)
	}
	if ok, err := c.coord.store.CheckAccess(req.Filename, req.Username, metadatastore.AccessWrite); err != nil {
		return storeError(req, err)
	} else if !ok {
		return req.ReplyText(wire.ResultDenied, "write access denied")
	}
	if _, err := c.coord.store.GetCheckpoint(req.Filename, req.CheckpointTag); err != nil {
		return storeError(req, err)
	}

	nc, ok := c.coord.nodeByID(rec.NodeID)
	if !ok {
		return req.ReplyText(wire.ResultUnavailable, "owning node is not available")
	}
	reply, err := nc.Call(&wire.Frame{Opcode: wire.OpRevert, Filename: req.Filename, CheckpointTag: req.CheckpointTag})
	if err != nil {
		c.coord.dropNode(rec.NodeID, nc)
		nc.Close()
		return req.ReplyText(wire.ResultUnavailable, err.Error())
	}
	return req.ReplyData(reply.ResultCode, reply.Data)
}

// handleListCheckpoints lists every checkpoint indexed for a file (spec.md
// §4.2 LISTCHECKPOINTS).
func (c *clientConnection) handleListCheckpoints(req *wire.Frame) *wire.Frame {
	if ok, err := c.coord.store.CheckAccess(req.Filename, req.Username, metadatastore.AccessRead); err != nil {
		return storeError(req, err)
	} else if !ok {
		return req.ReplyText(wire.ResultDenied, "read access denied")
	}
	checkpoints, err := c.coord.store.ListCheckpoints(req.Filename)
	if err != nil {
		return storeError(req, err)
	}
	lines := make([]string, 0, len(checkpoints))
	for _, cp := range checkpoints {
		lines = append(lines, formatCheckpoint(cp))
	}
	return req.ReplyText(wire.ResultSuccess, strings.Join(lines, "\n"))
}

func formatCheckpoint(cp *metadatastore.CheckpointRecord) string {
	return "tag=" + cp.Tag + " creator=" + cp.Creator + " size=" + strconv.FormatInt(cp.Size, 10)
}
