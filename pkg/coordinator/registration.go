package coordinator

import (
	"context"
	"net"
	"strings"

	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/pkg/netserver"
	"github.com/corefs/docfs/pkg/wire"
)

// nodeRegistrationFactory builds a registrationConnection for each TCP
// connection accepted on the coordinator's node port.
type nodeRegistrationFactory struct {
	coord *Coordinator
}

func (f *nodeRegistrationFactory) NewConnection(conn net.Conn) netserver.ConnectionHandler {
	return &registrationConnection{coord: f.coord, conn: conn}
}

// registrationConnection handles exactly one node's REGISTER_NODE handshake,
// then blocks for the lifetime of that node's control channel: all further
// reads/writes on conn happen synchronously through the resulting nodeConn's
// Call method, never from this goroutine again, so there is only ever one
// reader of conn at a time.
type registrationConnection struct {
	coord *Coordinator
	conn  net.Conn
}

func (r *registrationConnection) Serve(ctx context.Context) {
	req, err := wire.Decode(r.conn)
	if err != nil {
		logger.Warn("coordinator: failed to read REGISTER_NODE", "error", err)
		r.conn.Close()
		return
	}
	if req.Opcode != wire.OpRegisterNode {
		logger.Warn("coordinator: expected REGISTER_NODE, got", "opcode", req.Opcode)
		_ = wire.Encode(r.conn, req.ReplyText(wire.ResultBadRequest, "expected REGISTER_NODE"))
		r.conn.Close()
		return
	}

	// Field repurposing convention (see pkg/storagenode/control.go's Dial):
	// Username=id, NodeIP=ip, NodePort=client_port, WordIndex=control_port,
	// Data=newline-joined file list.
	id := req.Username
	ip := req.NodeIP
	clientPort := int(req.NodePort)
	controlPort := int(req.WordIndex)
	var files []string
	if len(req.Data) > 0 {
		files = strings.Split(string(req.Data), "\n")
	}

	rejoin := r.coord.store.RegisterNode(id, ip, clientPort, controlPort, files)

	if err := wire.Encode(r.conn, req.Reply(wire.ResultSuccess)); err != nil {
		logger.Warn("coordinator: failed to ack REGISTER_NODE", "node_id", id, "error", err)
		r.conn.Close()
		return
	}

	nc := newNodeConn(id, ip, clientPort, r.conn)
	r.coord.setNode(id, nc)
	if r.coord.metrics != nil {
		r.coord.metrics.SetRegisteredNodes(len(r.coord.store.ListNodes()))
	}
	logger.Info("coordinator: node registered", "node_id", id, "ip", ip, "client_port", clientPort, "rejoin", rejoin, "files", len(files))

	<-ctx.Done()
	r.coord.dropNode(id, nc)
	nc.Close()
}
