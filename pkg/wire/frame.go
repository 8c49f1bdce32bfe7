package wire

import "fmt"

// Field widths of the fixed-layout record (spec.md §6). These are wire
// constants, not tuning knobs: changing them breaks interoperability with
// any other implementation of the same protocol.
const (
	usernameFieldSize      = 256
	filenameFieldSize      = 256
	folderFieldSize        = 256
	checkpointTagFieldSize = 256
	dataFieldSize          = 4096
	nodeIPFieldSize        = 16
)

// FrameSize is the exact number of bytes Encode writes and Decode consumes
// for one Frame, independent of how much of the fixed-width fields is
// actually populated.
const FrameSize = 4 + // opcode
	usernameFieldSize +
	filenameFieldSize +
	folderFieldSize +
	checkpointTagFieldSize +
	4 + // sentence_num
	4 + // word_index
	4 + // flags
	4 + // request_id
	4 + // data_length
	dataFieldSize +
	4 + // result_code
	nodeIPFieldSize +
	4 // node_port

// Frame is the decoded, Go-native view of one wire record. String fields are
// NUL-trimmed on decode and NUL-padded on encode; Data is truncated to its
// DataLength on decode, never the full 4096-byte buffer.
type Frame struct {
	Opcode Opcode

	Username      string
	Filename      string
	Folder        string
	CheckpointTag string

	SentenceNum int32
	WordIndex   int32
	Flags       int32
	RequestID   int32

	Data []byte

	ResultCode ResultCode

	// NodeIP and NodePort carry a referral: the node the client should open
	// a fresh data-channel connection to.
	NodeIP   string
	NodePort int32
}

// NewRequest builds a request Frame with the given opcode and username,
// leaving every other field at its zero value for the caller to fill in.
func NewRequest(op Opcode, username string) *Frame {
	return &Frame{Opcode: op, Username: username}
}

// WithData returns f with Data set to payload, for chaining at call sites
// that build a frame and send it in one expression.
func (f *Frame) WithData(payload []byte) *Frame {
	f.Data = payload
	return f
}

// Reply builds a response frame carrying the given result code, preserving
// the request's RequestID for correlation.
func (f *Frame) Reply(code ResultCode) *Frame {
	return &Frame{
		Opcode:      f.Opcode,
		RequestID:   f.RequestID,
		SentenceNum: f.SentenceNum,
		WordIndex:   f.WordIndex,
		ResultCode:  code,
	}
}

// ReplyData is Reply with a payload attached.
func (f *Frame) ReplyData(code ResultCode, data []byte) *Frame {
	r := f.Reply(code)
	r.Data = data
	return r
}

// ReplyText is ReplyData with a human-readable string payload, used for the
// `data` string every error response carries per spec.md §7.
func (f *Frame) ReplyText(code ResultCode, text string) *Frame {
	return f.ReplyData(code, []byte(text))
}

// Referral builds a success reply carrying a node address for the client to
// reconnect to.
func (f *Frame) Referral(ip string, port int32) *Frame {
	r := f.Reply(ResultSuccess)
	r.NodeIP = ip
	r.NodePort = port
	return r
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame{op=%s user=%q file=%q req=%d result=%s}",
		f.Opcode, f.Username, f.Filename, f.RequestID, f.ResultCode)
}
