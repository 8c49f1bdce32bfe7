package coordinator

import (
	"strconv"
	"strings"

	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/wire"
)

// handleCreate rejects an existing name, selects a node (an explicit id
// carried in Data, falling back to the store's default), forwards CREATE
// over that node's control channel, and on success adds the registry
// record with an empty ACL and invalidates the search cache (spec.md §4.2
// CREATE, §9 design note "SS selection as a string in data").
func (c *clientConnection) handleCreate(req *wire.Frame) *wire.Frame {
	if _, err := c.coord.store.GetFile(req.Filename); err == nil {
		return req.ReplyText(wire.ResultExists, "file already exists")
	}

	nodeID := strings.TrimSpace(string(req.Data))
	if nodeID == "" {
		id, ok := c.coord.store.DefaultCreateNode()
		if !ok {
			return req.ReplyText(wire.ResultUnavailable, "no active storage node available")
		}
		nodeID = id
	}

	nc, ok := c.coord.nodeByID(nodeID)
	if !ok {
		return req.ReplyText(wire.ResultUnavailable, "selected node is not connected")
	}

	reply, err := nc.Call(&wire.Frame{Opcode: wire.OpCreate, Filename: req.Filename})
	if err != nil {
		c.coord.dropNode(nodeID, nc)
		nc.Close()
		return req.ReplyText(wire.ResultUnavailable, err.Error())
	}
	if reply.ResultCode.IsError() {
		return req.ReplyData(reply.ResultCode, reply.Data)
	}

	if _, err := c.coord.store.CreateFile(req.Filename, req.Username, nodeID, req.Folder); err != nil {
		return storeError(req, err)
	}
	c.coord.backups.putBackup(nodeID, req.Filename, nil)
	return req.Reply(wire.ResultSuccess)
}

// handleRead resolves name to a referral when its node is live; otherwise
// it falls back to the coordinator's own cache, then the coordinator's
// mirrored backup, then reassigns the file to any other active node and
// refers there; UNAVAILABLE if every fallback fails (spec.md §4.2 READ).
func (c *clientConnection) handleRead(req *wire.Frame) *wire.Frame {
	rec, err := c.coord.store.GetFile(req.Filename)
	if err != nil {
		return storeError(req, err)
	}
	if ok, err := c.coord.store.CheckAccess(req.Filename, req.Username, metadatastore.AccessRead); err != nil {
		return storeError(req, err)
	} else if !ok {
		return req.ReplyText(wire.ResultDenied, "read access denied")
	}

	if node, err := c.coord.store.GetNode(rec.NodeID); err == nil && node.Status == metadatastore.NodeActive {
		c.coord.store.Touch(req.Filename)
		return referToNode(req, node)
	}

	if content, ok := c.coord.backups.getCached(req.Filename); ok {
		return req.ReplyData(wire.ResultSuccess, content)
	}
	if content, ok := c.coord.backups.getBackup(rec.NodeID, req.Filename); ok {
		c.coord.backups.putCached(req.Filename, content)
		return req.ReplyData(wire.ResultSuccess, content)
	}

	if newNodeID, ok := c.coord.store.AnyActiveNodeExcept(rec.NodeID); ok {
		if err := c.coord.store.ReassignNode(req.Filename, newNodeID); err == nil {
			if node, err := c.coord.store.GetNode(newNodeID); err == nil {
				return referToNode(req, node)
			}
		}
	}

	return req.ReplyText(wire.ResultUnavailable, "file unavailable: node down, no cache, no backup, no other node")
}

// handleStream resolves the same way READ does, except the failure-fallback
// path returns the whole content as one frame instead of a referral, since
// there is no live node to stream word-by-word from (spec.md §4.2 STREAM).
func (c *clientConnection) handleStream(req *wire.Frame) *wire.Frame {
	rec, err := c.coord.store.GetFile(req.Filename)
	if err != nil {
		return storeError(req, err)
	}
	if ok, err := c.coord.store.CheckAccess(req.Filename, req.Username, metadatastore.AccessRead); err != nil {
		return storeError(req, err)
	} else if !ok {
		return req.ReplyText(wire.ResultDenied, "read access denied")
	}

	if node, err := c.coord.store.GetNode(rec.NodeID); err == nil && node.Status == metadatastore.NodeActive {
		return referToNode(req, node)
	}

	if content, ok := c.coord.backups.getCached(req.Filename); ok {
		return req.ReplyData(wire.ResultSuccess, content)
	}
	if content, ok := c.coord.backups.getBackup(rec.NodeID, req.Filename); ok {
		c.coord.backups.putCached(req.Filename, content)
		return req.ReplyData(wire.ResultSuccess, content)
	}
	if newNodeID, ok := c.coord.store.AnyActiveNodeExcept(rec.NodeID); ok {
		if err := c.coord.store.ReassignNode(req.Filename, newNodeID); err == nil {
			if node, err := c.coord.store.GetNode(newNodeID); err == nil {
				return referToNode(req, node)
			}
		}
	}
	return req.ReplyText(wire.ResultUnavailable, "file unavailable: node down, no cache, no backup, no other node")
}

// handleWriteOrUndoReferral answers WRITE and UNDO with a referral to the
// owning node after checking write permission; content never flows through
// the coordinator for either opcode (spec.md §4.2 WRITE/UNDO).
func (c *clientConnection) handleWriteOrUndoReferral(req *wire.Frame) *wire.Frame {
	if _, err := c.coord.store.GetFile(req.Filename); err != nil {
		return storeError(req, err)
	}
	ok, err := c.coord.store.CheckAccess(req.Filename, req.Username, metadatastore.AccessWrite)
	if err != nil {
		return storeError(req, err)
	}
	if !ok {
		return req.ReplyText(wire.ResultDenied, "write access denied")
	}

	rec, _ := c.coord.store.GetFile(req.Filename)
	node, err := c.coord.store.GetNode(rec.NodeID)
	if err != nil || node.Status != metadatastore.NodeActive {
		return req.ReplyText(wire.ResultUnavailable, "owning node is not available")
	}
	return referToNode(req, node)
}

// handleDelete forwards DELETE over the owning node's control channel
// (owner-only), then removes the registry record and invalidates the
// search cache (spec.md §4.2 DELETE).
func (c *clientConnection) handleDelete(req *wire.Frame) *wire.Frame {
	rec, err := c.coord.store.GetFile(req.Filename)
	if err != nil {
		return storeError(req, err)
	}
	if rec.Owner != req.Username {
		return req.ReplyText(wire.ResultDenied, "only the owner may delete")
	}

	if nc, ok := c.coord.nodeByID(rec.NodeID); ok {
		reply, err := nc.Call(&wire.Frame{Opcode: wire.OpDelete, Filename: req.Filename})
		if err != nil {
			c.coord.dropNode(rec.NodeID, nc)
			nc.Close()
		} else if reply.ResultCode.IsError() && reply.ResultCode != wire.ResultNotFound {
			return req.ReplyData(reply.ResultCode, reply.Data)
		}
	}

	if err := c.coord.store.DeleteFile(req.Filename, req.Username); err != nil {
		return storeError(req, err)
	}
	c.coord.backups.invalidate(req.Filename)
	return req.Reply(wire.ResultSuccess)
}

// handleInfo reports size/word/char stats for one file, refreshed live from
// the owning node when it is reachable, computed from the coordinator's
// backup sidecar otherwise (spec.md §4.2 INFO).
func (c *clientConnection) handleInfo(req *wire.Frame) *wire.Frame {
	rec, err := c.coord.store.GetFile(req.Filename)
	if err != nil {
		return storeError(req, err)
	}
	if ok, err := c.coord.store.CheckAccess(req.Filename, req.Username, metadatastore.AccessRead); err != nil {
		return storeError(req, err)
	} else if !ok {
		return req.ReplyText(wire.ResultDenied, "read access denied")
	}

	size, words, chars, ok := c.refreshStats(rec)
	if !ok {
		return req.ReplyText(wire.ResultUnavailable, "file stats unavailable")
	}
	return req.ReplyText(wire.ResultSuccess, formatInfo(rec, size, words, chars))
}

func (c *clientConnection) refreshStats(rec *metadatastore.FileRecord) (size, words, chars int64, ok bool) {
	if node, err := c.coord.store.GetNode(rec.NodeID); err == nil && node.Status == metadatastore.NodeActive {
		if nc, live := c.coord.nodeByID(rec.NodeID); live {
			if reply, err := nc.Call(&wire.Frame{Opcode: wire.OpInfo, Filename: rec.Name}); err == nil && reply.ResultCode == wire.ResultSuccess {
				if s, w, ch, perr := parseStats(string(reply.Data)); perr == nil {
					_ = c.coord.store.UpdateStats(rec.Name, s, w, ch)
					return s, w, ch, true
				}
			}
		}
	}
	if content, hit := c.coord.backups.getCached(rec.Name); hit {
		s, w, ch := statsFromContent(content)
		return s, w, ch, true
	}
	if content, hit := c.coord.backups.getBackup(rec.NodeID, rec.Name); hit {
		s, w, ch := statsFromContent(content)
		return s, w, ch, true
	}
	return rec.Size, rec.WordCount, rec.CharCount, true
}

func statsFromContent(content []byte) (size, words, chars int64) {
	size = int64(len(content))
	chars = size
	words = int64(len(strings.Fields(string(content))))
	return
}

func parseStats(s string) (size, words, chars int64, err error) {
	parts := strings.Split(s, "|")
	if len(parts) != 3 {
		return 0, 0, 0, errBadStats
	}
	size, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return
	}
	words, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return
	}
	chars, err = strconv.ParseInt(parts[2], 10, 64)
	return
}

func formatInfo(rec *metadatastore.FileRecord, size, words, chars int64) string {
	return strings.Join([]string{
		"name=" + rec.Name,
		"owner=" + rec.Owner,
		"node=" + rec.NodeID,
		"size=" + strconv.FormatInt(size, 10),
		"words=" + strconv.FormatInt(words, 10),
		"chars=" + strconv.FormatInt(chars, 10),
	}, " ")
}
