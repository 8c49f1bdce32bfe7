// Package wire implements the fixed-layout binary frame exchanged on every
// socket in the cluster: client<->coordinator, coordinator<->node control
// channel, and client<->node data channel. One Frame is one logical message;
// Encode/Decode always move exactly FrameSize bytes.
package wire

// Opcode identifies the operation (or internal control message) a frame
// carries. User-facing opcodes mirror the CLI surface one-to-one; the
// REGISTER_*, HEARTBEAT, SHUTDOWN and REPLICATE opcodes never originate from
// a client.
type Opcode int32

const (
	OpUnknown Opcode = iota

	// Client <-> coordinator / client <-> node, user-facing.
	OpCreate
	OpRead
	OpStream
	OpWrite
	OpUndo
	OpDelete
	OpView
	OpInfo
	OpAddAccess
	OpRemAccess
	OpRequestAccess
	OpViewRequests
	OpApproveRequest
	OpDenyRequest
	OpList
	OpListNodes
	OpSearch
	OpCreateFolder
	OpViewFolder
	OpMove
	OpCheckpoint
	OpViewCheckpoint
	OpRevert
	OpListCheckpoints
	OpExec

	// Edit sub-protocol, client <-> node only.
	OpEditInsert
	OpEditCommit // the literal ETIRW payload

	// Internal: never sent by an end-user client.
	OpRegisterClient
	OpRegisterNode
	OpHeartbeat
	OpShutdown
	OpReplicate
	OpMoveNode // coordinator -> node: physically relocate a file on disk
)

//go:generate stringer -type=Opcode

func (o Opcode) String() string {
	switch o {
	case OpCreate:
		return "CREATE"
	case OpRead:
		return "READ"
	case OpStream:
		return "STREAM"
	case OpWrite:
		return "WRITE"
	case OpUndo:
		return "UNDO"
	case OpDelete:
		return "DELETE"
	case OpView:
		return "VIEW"
	case OpInfo:
		return "INFO"
	case OpAddAccess:
		return "ADDACCESS"
	case OpRemAccess:
		return "REMACCESS"
	case OpRequestAccess:
		return "REQUESTACCESS"
	case OpViewRequests:
		return "VIEWREQUESTS"
	case OpApproveRequest:
		return "APPROVEREQUEST"
	case OpDenyRequest:
		return "DENYREQUEST"
	case OpList:
		return "LIST"
	case OpListNodes:
		return "LIST_NODES"
	case OpSearch:
		return "SEARCH"
	case OpCreateFolder:
		return "CREATEFOLDER"
	case OpViewFolder:
		return "VIEWFOLDER"
	case OpMove:
		return "MOVE"
	case OpCheckpoint:
		return "CHECKPOINT"
	case OpViewCheckpoint:
		return "VIEWCHECKPOINT"
	case OpRevert:
		return "REVERT"
	case OpListCheckpoints:
		return "LISTCHECKPOINTS"
	case OpExec:
		return "EXEC"
	case OpEditInsert:
		return "EDIT_INSERT"
	case OpEditCommit:
		return "EDIT_COMMIT"
	case OpRegisterClient:
		return "REGISTER_CLIENT"
	case OpRegisterNode:
		return "REGISTER_NODE"
	case OpHeartbeat:
		return "HEARTBEAT"
	case OpShutdown:
		return "SHUTDOWN"
	case OpReplicate:
		return "REPLICATE"
	case OpMoveNode:
		return "MOVE_NODE"
	default:
		return "UNKNOWN"
	}
}

// ETIRWToken is the literal payload that ends an edit session (spec.md §4.7).
const ETIRWToken = "ETIRW"
