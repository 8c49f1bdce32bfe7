package coordinator

import (
	"strings"

	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/wire"
)

// handleCreateFolder creates a folder path (and any missing ancestors),
// entirely coordinator-side metadata with no node involvement (spec.md
// §4.2 CREATEFOLDER).
func (c *clientConnection) handleCreateFolder(req *wire.Frame) *wire.Frame {
	if err := c.coord.store.CreateFolder(req.Folder, req.Username); err != nil {
		return storeError(req, err)
	}
	return req.Reply(wire.ResultSuccess)
}

// handleViewFolder lists every file whose Folder attribute matches, filtered
// to files the requester may read (spec.md §4.2 VIEWFOLDER).
func (c *clientConnection) handleViewFolder(req *wire.Frame) *wire.Frame {
	files, err := c.coord.store.ViewFolder(req.Folder)
	if err != nil {
		return storeError(req, err)
	}
	var names []string
	for _, f := range files {
		if ok, _ := c.coord.store.CheckAccess(f.Name, req.Username, metadatastore.AccessRead); ok {
			names = append(names, f.Name)
		}
	}
	return req.ReplyText(wire.ResultSuccess, strings.Join(names, "\n"))
}

// handleMove requires write access, updates the coordinator's folder
// metadata, and sends a relocate command to the owning node (spec.md §4.2
// MOVE).
func (c *clientConnection) handleMove(req *wire.Frame) *wire.Frame {
	rec, err := c.coord.store.GetFile(req.Filename)
	if err != nil {
		return storeError(req, err)
	}
	if ok, err := c.coord.store.CheckAccess(req.Filename, req.Username, metadatastore.AccessWrite); err != nil {
		return storeError(req, err)
	} else if !ok {
		return req.ReplyText(wire.ResultDenied, "write access denied")
	}

	if nc, ok := c.coord.nodeByID(rec.NodeID); ok {
		reply, err := nc.Call(&wire.Frame{Opcode: wire.OpMoveNode, Filename: req.Filename})
		if err != nil {
			c.coord.dropNode(rec.NodeID, nc)
			nc.Close()
			return req.ReplyText(wire.ResultUnavailable, err.Error())
		}
		if reply.ResultCode.IsError() {
			return req.ReplyData(reply.ResultCode, reply.Data)
		}
	}

	if err := c.coord.store.SetFolder(req.Filename, req.Folder); err != nil {
		return storeError(req, err)
	}
	return req.Reply(wire.ResultSuccess)
}
