package storagenode

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/pkg/netserver"
	"github.com/corefs/docfs/pkg/sentence"
	"github.com/corefs/docfs/pkg/wire"
)

// streamWordDelay paces STREAM's word-by-word delivery (spec.md §4.2
// "STREAM"): one word per frame, separated by this much wall-clock time, so
// a client reading interactively sees text arrive at a legible pace.
const streamWordDelay = 100 * time.Millisecond

// DataConnectionFactory builds a connection handler for each client data
// connection accepted on the node's client port. It satisfies
// pkg/netserver.ConnectionFactory.
type DataConnectionFactory struct {
	Node *Node
}

func (f *DataConnectionFactory) NewConnection(conn net.Conn) netserver.ConnectionHandler {
	return &dataConnection{node: f.Node, conn: conn}
}

// dataConnection serves one client's direct data-channel session: READ,
// STREAM, WRITE (the interactive edit sub-protocol), and UNDO. A session
// owns at most one open editSession at a time; it is released on WRITE's
// ETIRW commit or, if the connection drops first, when Serve returns.
type dataConnection struct {
	node *Node
	conn net.Conn

	session *editSession
}

func (c *dataConnection) Serve(ctx context.Context) {
	defer c.conn.Close()
	defer func() {
		if c.session != nil {
			c.session.release()
		}
	}()

	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()

	for {
		req, err := wire.Decode(c.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Debug("storagenode data connection read error", "error", err)
			}
			return
		}

		reply := c.dispatch(req)
		if err := wire.Encode(c.conn, reply); err != nil {
			logger.Debug("storagenode data connection write error", "error", err)
			return
		}
	}
}

func (c *dataConnection) dispatch(req *wire.Frame) *wire.Frame {
	switch req.Opcode {
	case wire.OpRead:
		return c.handleRead(req)
	case wire.OpStream:
		return c.handleStream(req)
	case wire.OpWrite:
		return c.handleBeginWrite(req)
	case wire.OpEditInsert:
		return c.handleEditInsert(req)
	case wire.OpEditCommit:
		return c.handleEditCommit(req)
	case wire.OpUndo:
		return c.handleUndo(req)
	default:
		return req.ReplyText(wire.ResultBadRequest, "unsupported data-channel opcode: "+req.Opcode.String())
	}
}

func (c *dataConnection) handleRead(req *wire.Frame) *wire.Frame {
	content, err := c.node.files.Read(req.Filename)
	if err != nil {
		return fileError(req, err)
	}
	return req.ReplyData(wire.ResultSuccess, content)
}

// handleStream sends content one word per frame, each tagged ResultData,
// paced by streamWordDelay, and terminated with a ResultSuccess frame
// carrying no payload (spec.md §4.2 "STREAM").
func (c *dataConnection) handleStream(req *wire.Frame) *wire.Frame {
	content, err := c.node.files.Read(req.Filename)
	if err != nil {
		return fileError(req, err)
	}

	for _, word := range strings.Fields(string(content)) {
		frame := req.ReplyData(wire.ResultData, []byte(word+"\n"))
		if err := wire.Encode(c.conn, frame); err != nil {
			logger.Debug("storagenode stream write error", "error", err)
			return nil
		}
		time.Sleep(streamWordDelay)
	}

	return req.Reply(wire.ResultSuccess)
}

// handleBeginWrite starts (or refuses) an edit session for (Filename,
// SentenceNum, Username) and returns the locked sentence's text.
func (c *dataConnection) handleBeginWrite(req *wire.Frame) *wire.Frame {
	sess, text, err := c.node.beginEdit(req.Filename, req.SentenceNum, req.Username)
	if err != nil {
		var locked errLocked
		if errors.As(err, &locked) {
			return req.ReplyText(wire.ResultLocked, locked.holder)
		}
		var sentOOR *sentence.ErrSentenceOutOfRange
		if errors.As(err, &sentOOR) {
			return &wire.Frame{Opcode: req.Opcode, RequestID: req.RequestID, ResultCode: wire.ResultSentOOR, WordIndex: int32(sentOOR.Current)}
		}
		return fileError(req, err)
	}

	c.session = sess
	return req.ReplyData(wire.ResultSuccess, []byte(text))
}

// handleEditInsert applies one (word_index, payload) update frame to the
// connection's open edit session. The literal "ETIRW" payload is also
// accepted here (spec.md §4.7 step 4 treats ETIRW as just another payload),
// committing the session exactly as handleEditCommit would.
func (c *dataConnection) handleEditInsert(req *wire.Frame) *wire.Frame {
	if c.session == nil {
		return req.ReplyText(wire.ResultBadRequest, "no open edit session")
	}

	reply, committed, full, err := c.session.Insert(req.WordIndex, string(req.Data))
	if err != nil {
		var wordOOR *sentence.ErrWordOutOfRange
		if errors.As(err, &wordOOR) {
			return &wire.Frame{Opcode: req.Opcode, RequestID: req.RequestID, ResultCode: wire.ResultWordOOR, WordIndex: int32(wordOOR.Current)}
		}
		defer c.clearSession()
		return fileError(req, err)
	}

	if committed {
		c.clearSession()
		return req.ReplyData(wire.ResultSuccess, full)
	}
	return req.ReplyData(wire.ResultSuccess, []byte(reply))
}

// handleEditCommit ends the session explicitly, equivalent to an
// handleEditInsert carrying the literal ETIRW payload.
func (c *dataConnection) handleEditCommit(req *wire.Frame) *wire.Frame {
	if c.session == nil {
		return req.ReplyText(wire.ResultBadRequest, "no open edit session")
	}
	_, _, full, err := c.session.Insert(0, wire.ETIRWToken)
	c.clearSession()
	if err != nil {
		return fileError(req, err)
	}
	return req.ReplyData(wire.ResultSuccess, full)
}

func (c *dataConnection) clearSession() {
	c.session = nil
}

// handleUndo swaps live and sidecar content for Filename, subject to the
// undo table's consecutive-undo guard (spec.md §4.7 "UNDO").
func (c *dataConnection) handleUndo(req *wire.Frame) *wire.Frame {
	if c.node.undo.WasLastOpUndo(req.Filename) {
		return req.ReplyText(wire.ResultDenied, "consecutive undo is not permitted")
	}
	if err := c.node.files.Undo(req.Filename); err != nil {
		return fileError(req, err)
	}
	c.node.undo.MarkUndo(req.Filename)
	return req.Reply(wire.ResultSuccess)
}

func fileError(req *wire.Frame, err error) *wire.Frame {
	switch err {
	case ErrFileNotFound:
		return req.ReplyText(wire.ResultNotFound, err.Error())
	case ErrNoBackup:
		return req.ReplyText(wire.ResultDenied, err.Error())
	default:
		logger.Warn("storagenode data operation failed", "opcode", req.Opcode, "file", req.Filename, "error", err)
		return req.ReplyText(wire.ResultServerError, err.Error())
	}
}
