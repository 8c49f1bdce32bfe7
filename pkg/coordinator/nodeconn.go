package coordinator

import (
	"net"
	"sync"

	"github.com/corefs/docfs/pkg/wire"
)

// nodeConn wraps one node's long-lived control-channel connection. Call
// serializes every coordinator-initiated request/reply pair on the channel,
// matching spec.md §5 "per node control channel, the coordinator
// serializes operations; concurrent coordinator-side callers contend on a
// per-node mutex" (also spec.md §9 "per-node serialization").
type nodeConn struct {
	id   string
	ip   string
	port int

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

func newNodeConn(id, ip string, port int, conn net.Conn) *nodeConn {
	return &nodeConn{id: id, ip: ip, port: port, conn: conn}
}

// Call sends req and waits for the matching reply. Only one Call may be in
// flight on a given nodeConn at a time; callers queue on mu.
func (nc *nodeConn) Call(req *wire.Frame) (*wire.Frame, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	if nc.closed {
		return nil, nodeUnavailable(nc.id)
	}
	if err := wire.Encode(nc.conn, req); err != nil {
		return nil, err
	}
	return wire.Decode(nc.conn)
}

// Close marks the connection closed and releases the socket. Safe to call
// more than once.
func (nc *nodeConn) Close() {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	if nc.closed {
		return
	}
	nc.closed = true
	nc.conn.Close()
}
