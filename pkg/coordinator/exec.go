package coordinator

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/wire"
)

// execTimeout bounds how long an EXEC-spawned shell may run before it is
// killed, so a runaway script cannot wedge the coordinator's single-threaded
// session loop for this connection indefinitely.
const execTimeout = 30 * time.Second

// handleExec fetches a file's content through fetchContent, writes
// it to a temp script, and runs it under an external shell, returning the
// combined output (spec.md §4.2 EXEC). It is read-permission-gated and,
// per spec.md §9 "keep EXEC behind a feature flag", only runs when
// c.coord.cfg explicitly enables it.
func (c *clientConnection) handleExec(req *wire.Frame) *wire.Frame {
	if !c.coord.execEnabled() {
		return req.ReplyText(wire.ResultDenied, "EXEC is disabled on this coordinator")
	}

	if ok, err := c.coord.store.CheckAccess(req.Filename, req.Username, metadatastore.AccessRead); err != nil {
		return storeError(req, err)
	} else if !ok {
		return req.ReplyText(wire.ResultDenied, "read access denied")
	}

	content, err := c.coord.fetchContent(req.Filename)
	if err != nil {
		return req.ReplyText(wire.ResultUnavailable, err.Error())
	}

	tmp, err := os.CreateTemp("", "docfs-exec-*.sh")
	if err != nil {
		return req.ReplyText(wire.ResultServerError, err.Error())
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return req.ReplyText(wire.ResultServerError, err.Error())
	}
	tmp.Close()
	if err := os.Chmod(tmp.Name(), 0700); err != nil {
		return req.ReplyText(wire.ResultServerError, err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), execTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "/bin/sh", tmp.Name())
	output, err := cmd.CombinedOutput()
	if err != nil {
		logger.Warn("coordinator: EXEC script exited non-zero", "file", req.Filename, "error", err)
	}
	return req.ReplyData(wire.ResultSuccess, output)
}

// fetchContent reads a file's current bytes with a REPLICATE request on its
// owning node's existing control channel, or from the coordinator's backup
// copy when that node is not connected. It is used only
// by EXEC (the only coordinator path that legitimately needs file content
// in-process).
func (c *Coordinator) fetchContent(name string) ([]byte, error) {
	rec, err := c.store.GetFile(name)
	if err != nil {
		return nil, err
	}
	nc, ok := c.nodeByID(rec.NodeID)
	if !ok {
		if content, hit := c.backups.getBackup(rec.NodeID, name); hit {
			return content, nil
		}
		return nil, nodeUnavailable(rec.NodeID)
	}
	reply, err := nc.Call(&wire.Frame{Opcode: wire.OpReplicate, Filename: name})
	if err != nil {
		return nil, err
	}
	if reply.ResultCode.IsError() {
		return nil, nodeUnavailable(rec.NodeID)
	}
	return reply.Data, nil
}

func (c *Coordinator) execEnabled() bool {
	return c.execAllowed
}
