package storagenode

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/pkg/sentence"
	"github.com/corefs/docfs/pkg/wire"
)

// Dial opens the control channel to the coordinator and sends the
// REGISTER_NODE announcement (spec.md §4.9). The fixed-layout frame has no
// field named for each of (id, ip, control_port, client_port, file_list), so
// the announcement packs them into existing frame fields: Username carries
// the node id, NodeIP/NodePort carry the advertised address and client
// port, WordIndex carries the control port, and Data carries the
// newline-joined file list.
func (n *Node) Dial(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.CoordinatorIP, n.cfg.CoordinatorPort)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("storagenode: dial coordinator %s: %w", addr, err)
	}

	ip, err := discoverAdvertisedIP()
	if err != nil {
		conn.Close()
		return err
	}

	files, err := n.knownFiles()
	if err != nil {
		conn.Close()
		return err
	}

	req := &wire.Frame{
		Opcode:    wire.OpRegisterNode,
		Username:  n.cfg.NodeID,
		NodeIP:    ip,
		NodePort:  int32(n.cfg.ClientPort),
		WordIndex: int32(n.cfg.ControlPort()),
		Data:      []byte(strings.Join(files, "\n")),
	}
	if err := wire.Encode(conn, req); err != nil {
		conn.Close()
		return fmt.Errorf("storagenode: send REGISTER_NODE: %w", err)
	}

	reply, err := wire.Decode(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("storagenode: read REGISTER_NODE reply: %w", err)
	}
	if reply.ResultCode.IsError() {
		conn.Close()
		return fmt.Errorf("storagenode: registration rejected: %s: %s", reply.ResultCode, reply.Data)
	}

	logNodeEvent(n.cfg.NodeID, "registered with coordinator", "ip", ip, "client_port", n.cfg.ClientPort)
	n.control = conn
	return nil
}

// ServeControl reads control-channel frames from the coordinator until the
// connection closes or ctx is cancelled, replying to each in turn. Per
// spec.md §4.2 "Ordering", the coordinator never pipelines two requests on
// the same control channel, so one synchronous read/dispatch/reply loop is
// sufficient.
func (n *Node) ServeControl(ctx context.Context) error {
	if n.control == nil {
		return fmt.Errorf("storagenode: ServeControl called before Dial")
	}
	defer n.control.Close()

	go func() {
		<-ctx.Done()
		n.control.Close()
	}()

	for {
		req, err := wire.Decode(n.control)
		if err != nil {
			return err
		}

		reply := n.dispatchControl(req)
		if err := wire.Encode(n.control, reply); err != nil {
			return err
		}
		if req.Opcode == wire.OpShutdown {
			return nil
		}
	}
}

func (n *Node) dispatchControl(req *wire.Frame) *wire.Frame {
	switch req.Opcode {
	case wire.OpHeartbeat:
		return req.Reply(wire.ResultAck)

	case wire.OpCreate:
		if err := n.files.Create(req.Filename); err != nil {
			return controlError(req, err)
		}
		return req.Reply(wire.ResultSuccess)

	case wire.OpDelete:
		if err := n.files.Delete(req.Filename); err != nil {
			return controlError(req, err)
		}
		return req.Reply(wire.ResultSuccess)

	case wire.OpMoveNode:
		if err := n.files.Move(req.Filename); err != nil {
			return controlError(req, err)
		}
		return req.Reply(wire.ResultSuccess)

	case wire.OpCheckpoint:
		size, err := n.files.Checkpoint(req.Filename, req.CheckpointTag)
		if err != nil {
			return controlError(req, err)
		}
		return req.ReplyData(wire.ResultSuccess, []byte(strconv.FormatInt(size, 10)))

	case wire.OpRevert:
		if err := n.files.Revert(req.Filename, req.CheckpointTag); err != nil {
			return controlError(req, err)
		}
		return req.Reply(wire.ResultSuccess)

	case wire.OpInfo:
		content, err := n.files.Read(req.Filename)
		if err != nil {
			return controlError(req, err)
		}
		words := 0
		for _, s := range sentence.Parse(string(content)) {
			words += len(sentence.Words(s))
		}
		stats := fmt.Sprintf("%d|%d|%d", len(content), words, len(content))
		return req.ReplyData(wire.ResultSuccess, []byte(stats))

	case wire.OpReplicate:
		content, err := n.files.Read(req.Filename)
		if err != nil {
			return controlError(req, err)
		}
		return req.ReplyData(wire.ResultSuccess, content)

	case wire.OpShutdown:
		logNodeEvent(n.cfg.NodeID, "received SHUTDOWN from coordinator")
		return req.Reply(wire.ResultSuccess)

	default:
		return req.ReplyText(wire.ResultBadRequest, "unsupported control opcode: "+req.Opcode.String())
	}
}

func controlError(req *wire.Frame, err error) *wire.Frame {
	switch err {
	case ErrFileNotFound:
		return req.ReplyText(wire.ResultNotFound, err.Error())
	case ErrFileExists:
		return req.ReplyText(wire.ResultExists, err.Error())
	case ErrCheckpointNotFound:
		return req.ReplyText(wire.ResultCheckpointNotFound, err.Error())
	default:
		logger.Warn("storagenode control operation failed", "opcode", req.Opcode, "file", req.Filename, "error", err)
		return req.ReplyText(wire.ResultServerError, err.Error())
	}
}
