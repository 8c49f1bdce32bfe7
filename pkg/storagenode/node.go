package storagenode

import (
	"context"
	"fmt"
	"net"

	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/pkg/config"
	"github.com/corefs/docfs/pkg/metrics"
)

// Node is a storage node: its file trees, sentence-lock and undo tables, and
// (once Dial is called) the long-lived control channel to the coordinator.
type Node struct {
	cfg config.NodeConfig

	files *fileStore
	locks *lockTable
	undo  *undoTable

	lockMetrics metrics.LockMetrics

	control net.Conn // the coordinator control channel, once registered
}

// New constructs a Node from cfg. Call Dial to register with the
// coordinator before serving client connections. coldMetrics is only
// consulted when cfg.ColdTier.Enabled; pass nil otherwise.
func New(cfg config.NodeConfig, lockMetrics metrics.LockMetrics, coldMetrics metrics.ColdTierMetrics) (*Node, error) {
	cold, err := newColdTier(context.Background(), cfg.ColdTier, coldMetrics)
	if err != nil {
		return nil, err
	}

	fs, err := newFileStore(cfg.StorageDir, cfg.BackupDir, cfg.CheckpointDir, cold)
	if err != nil {
		return nil, err
	}
	return &Node{
		cfg:         cfg,
		files:       fs,
		locks:       newLockTable(lockMetrics),
		undo:        newUndoTable(),
		lockMetrics: lockMetrics,
	}, nil
}

// knownFiles lists every name currently present in the storage tree, for the
// REGISTER_NODE announcement (spec.md §4.9).
func (n *Node) knownFiles() ([]string, error) {
	entries, err := listDir(n.cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("storagenode: list storage dir: %w", err)
	}
	return entries, nil
}

// discoverAdvertisedIP opens a UDP socket to a routable external address and
// reads back the local end, never sending anything — the technique spec.md
// §4.9 specifies for a node to learn its own externally-reachable address
// without relying on hostname configuration.
func discoverAdvertisedIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("storagenode: discover advertised ip: %w", err)
	}
	defer conn.Close()

	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("storagenode: unexpected local addr type %T", conn.LocalAddr())
	}
	return local.IP.String(), nil
}

func logNodeEvent(nodeID, msg string, args ...any) {
	logger.Info("node "+msg, append([]any{"node_id", nodeID}, args...)...)
}
