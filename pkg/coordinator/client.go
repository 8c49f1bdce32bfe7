package coordinator

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/netserver"
	"github.com/corefs/docfs/pkg/wire"
)

// clientConnectionFactory builds a clientConnection for each TCP connection
// accepted on the coordinator's client port.
type clientConnectionFactory struct {
	coord *Coordinator
}

func (f *clientConnectionFactory) NewConnection(conn net.Conn) netserver.ConnectionHandler {
	return &clientConnection{coord: f.coord, conn: conn}
}

// clientConnection serves one client's wire-protocol session. Per spec.md
// §5 "Ordering", request/reply order on a single TCP session is strictly
// FIFO, so one synchronous read/dispatch/reply loop per connection is
// sufficient; there is no per-connection concurrency to guard against.
type clientConnection struct {
	coord *Coordinator
	conn  net.Conn

	username   string
	registered bool
}

func (c *clientConnection) Serve(ctx context.Context) {
	defer c.conn.Close()
	defer c.endSession()

	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()

	for {
		req, err := wire.Decode(c.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Debug("coordinator client connection read error", "error", err)
			}
			return
		}

		start := time.Now()
		reply := c.dispatch(req)
		c.recordRequest(req.Opcode, start, reply)

		if err := wire.Encode(c.conn, reply); err != nil {
			logger.Debug("coordinator client connection write error", "error", err)
			return
		}
	}
}

func (c *clientConnection) recordRequest(op wire.Opcode, start time.Time, reply *wire.Frame) {
	if c.coord.metrics == nil {
		return
	}
	c.coord.metrics.RecordRequest(op.String(), time.Since(start), uint16(reply.ResultCode))
}

func (c *clientConnection) endSession() {
	if c.registered {
		c.coord.store.EndSession(c.username)
	}
}

// dispatch routes req to its handler (spec.md §4.2). REGISTER_CLIENT is
// handled here since it establishes c.username for every other opcode; all
// other opcodes require a prior successful REGISTER_CLIENT on this
// connection.
func (c *clientConnection) dispatch(req *wire.Frame) *wire.Frame {
	if req.Opcode == wire.OpRegisterClient {
		return c.handleRegisterClient(req)
	}
	if !c.registered {
		return req.ReplyText(wire.ResultDenied, "REGISTER_CLIENT required before any other operation")
	}

	switch req.Opcode {
	case wire.OpCreate:
		return c.handleCreate(req)
	case wire.OpRead:
		return c.handleRead(req)
	case wire.OpStream:
		return c.handleStream(req)
	case wire.OpWrite, wire.OpUndo:
		return c.handleWriteOrUndoReferral(req)
	case wire.OpDelete:
		return c.handleDelete(req)
	case wire.OpView:
		return c.handleView(req)
	case wire.OpInfo:
		return c.handleInfo(req)
	case wire.OpAddAccess:
		return c.handleAddAccess(req)
	case wire.OpRemAccess:
		return c.handleRemAccess(req)
	case wire.OpRequestAccess:
		return c.handleRequestAccess(req)
	case wire.OpViewRequests:
		return c.handleViewRequests(req)
	case wire.OpApproveRequest:
		return c.handleResolveRequest(req, true)
	case wire.OpDenyRequest:
		return c.handleResolveRequest(req, false)
	case wire.OpList:
		return c.handleList(req)
	case wire.OpListNodes:
		return c.handleListNodes(req)
	case wire.OpSearch:
		return c.handleSearch(req)
	case wire.OpCreateFolder:
		return c.handleCreateFolder(req)
	case wire.OpViewFolder:
		return c.handleViewFolder(req)
	case wire.OpMove:
		return c.handleMove(req)
	case wire.OpCheckpoint:
		return c.handleCheckpoint(req)
	case wire.OpViewCheckpoint:
		return c.handleViewCheckpoint(req)
	case wire.OpRevert:
		return c.handleRevert(req)
	case wire.OpListCheckpoints:
		return c.handleListCheckpoints(req)
	case wire.OpExec:
		return c.handleExec(req)
	default:
		return req.ReplyText(wire.ResultBadRequest, "unsupported opcode: "+req.Opcode.String())
	}
}

// handleRegisterClient enforces the single-active-session-per-username
// invariant (spec.md §4.2, §8 invariant 4).
func (c *clientConnection) handleRegisterClient(req *wire.Frame) *wire.Frame {
	if err := c.coord.store.BeginSession(req.Username); err != nil {
		return req.ReplyText(wire.ResultDenied, "user already has an active session")
	}
	c.username = req.Username
	c.registered = true
	return req.Reply(wire.ResultSuccess)
}

// referToNode builds a referral reply to rec's client port, the standard
// shape for READ/STREAM-live, WRITE and UNDO (spec.md §4.2).
func referToNode(req *wire.Frame, rec *metadatastore.NodeRecord) *wire.Frame {
	return req.Referral(rec.IP, int32(rec.ClientPort))
}

// storeError maps a metadatastore sentinel error onto a wire result code,
// carrying the error text as the reply's human-readable data (spec.md §7).
func storeError(req *wire.Frame, err error) *wire.Frame {
	switch {
	case errors.Is(err, metadatastore.ErrFileNotFound):
		return req.ReplyText(wire.ResultNotFound, err.Error())
	case errors.Is(err, metadatastore.ErrFileExists):
		return req.ReplyText(wire.ResultExists, err.Error())
	case errors.Is(err, metadatastore.ErrFolderNotFound):
		return req.ReplyText(wire.ResultFolderMissing, err.Error())
	case errors.Is(err, metadatastore.ErrFolderExists):
		return req.ReplyText(wire.ResultFolderExists, err.Error())
	case errors.Is(err, metadatastore.ErrCheckpointNotFound):
		return req.ReplyText(wire.ResultCheckpointNotFound, err.Error())
	case errors.Is(err, metadatastore.ErrCheckpointExists):
		return req.ReplyText(wire.ResultExists, err.Error())
	case errors.Is(err, metadatastore.ErrNoRequests):
		return req.ReplyText(wire.ResultNoRequests, err.Error())
	case errors.Is(err, metadatastore.ErrRequestNotFound):
		return req.ReplyText(wire.ResultRequestNotFound, err.Error())
	case errors.Is(err, metadatastore.ErrRequestExists),
		errors.Is(err, metadatastore.ErrSessionExists):
		return req.ReplyText(wire.ResultExists, err.Error())
	case errors.Is(err, metadatastore.ErrDenied),
		errors.Is(err, metadatastore.ErrNotOwner),
		errors.Is(err, metadatastore.ErrCannotRemoveOwner),
		errors.Is(err, metadatastore.ErrCannotRequestOwnFile):
		return req.ReplyText(wire.ResultDenied, err.Error())
	case errors.Is(err, metadatastore.ErrNodeNotFound):
		return req.ReplyText(wire.ResultUnavailable, err.Error())
	default:
		return req.ReplyText(wire.ResultServerError, err.Error())
	}
}
