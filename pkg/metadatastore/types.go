package metadatastore

import "time"

// AccessType is the mask carried in ADDACCESS/REQUESTACCESS payloads and ACL
// entries (spec.md §3, §4.2): bit0 read, bit1 write, write implies read.
type AccessType int32

const (
	AccessRead  AccessType = 1 << 0
	AccessWrite AccessType = 1 << 1
)

// CanRead reports whether the mask grants read access.
func (a AccessType) CanRead() bool { return a&AccessRead != 0 }

// CanWrite reports whether the mask grants write access.
func (a AccessType) CanWrite() bool { return a&AccessWrite != 0 }

// Normalize enforces write-implies-read on a raw mask.
func (a AccessType) Normalize() AccessType {
	if a.CanWrite() {
		return a | AccessRead
	}
	return a
}

// ACLEntry is one (username, can_read, can_write) tuple attached to a file.
type ACLEntry struct {
	Username string
	CanRead  bool
	CanWrite bool
}

// RequestStatus is the lifecycle state of an AccessRequest.
type RequestStatus int

const (
	RequestPending RequestStatus = iota
	RequestApproved
	RequestDenied
)

// AccessRequest is a pending or resolved request by a non-owner for access
// to a file (spec.md §3).
type AccessRequest struct {
	ID          int64
	Requester   string
	File        string
	AccessType  AccessType
	RequestedAt time.Time
	Status      RequestStatus
}

// CheckpointRecord is one named snapshot of a file's content (spec.md §3).
// Content itself lives on the owning node at
// storage/<node_id>/checkpoints/<file>.<tag>; the coordinator only indexes
// metadata.
type CheckpointRecord struct {
	Tag       string
	Creator   string
	CreatedAt time.Time
	Size      int64
}

// FileRecord is the coordinator's metadata entry for one file (spec.md §3).
// Every mutating accessor on Store takes the registry lock internally;
// callers should never mutate a FileRecord obtained from Store directly.
type FileRecord struct {
	Name   string
	Owner  string
	NodeID string
	Folder string

	CreatedAt  time.Time
	ModifiedAt time.Time
	AccessedAt time.Time

	Size      int64
	WordCount int64
	CharCount int64

	ACL         map[string]*ACLEntry
	Checkpoints map[string]*CheckpointRecord
}

// clone returns a deep-enough copy of f safe to hand to callers outside the
// registry lock: ACL and Checkpoints are copied, scalar fields by value.
func (f *FileRecord) clone() *FileRecord {
	cp := *f
	cp.ACL = make(map[string]*ACLEntry, len(f.ACL))
	for k, v := range f.ACL {
		entry := *v
		cp.ACL[k] = &entry
	}
	cp.Checkpoints = make(map[string]*CheckpointRecord, len(f.Checkpoints))
	for k, v := range f.Checkpoints {
		rec := *v
		cp.Checkpoints[k] = &rec
	}
	return &cp
}

// FolderRecord is a coordinator-only directory entry (spec.md §3); it has no
// presence on any node.
type FolderRecord struct {
	Path      string
	Owner     string
	CreatedAt time.Time
}

// UserRecord is an append-only registration of a document-protocol user,
// distinct from the admin API's operator accounts (see pkg/apiclient).
type UserRecord struct {
	Username     string
	RegisteredAt time.Time
}

// NodeStatus is a storage node's liveness as tracked by the failure
// detector (spec.md §4.4).
type NodeStatus int

const (
	NodeActive NodeStatus = iota
	NodeFailed
)

// NodeRecord is the coordinator's view of one storage node (spec.md §3).
// The long-lived control-channel connection itself, and the mutex that
// serializes coordinator-side calls across it (spec.md §9's "per-node
// serialization" design note), are pkg/coordinator concerns layered on top
// of this purely metadata record.
type NodeRecord struct {
	ID          string
	IP          string
	ClientPort  int
	ControlPort int

	Status        NodeStatus
	LastHeartbeat time.Time
	RegisteredAt  time.Time
	FailedSince   time.Time

	// Files is the set of file names this node was last known to hold,
	// maintained as CREATE/DELETE/MOVE mutate the registry.
	Files map[string]struct{}
}
