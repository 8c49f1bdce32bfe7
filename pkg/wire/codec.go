package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// byteOrder is little-endian: spec.md §9 Open Question 3 flags the original
// wire as host-native and therefore not endianness-portable, and explicitly
// permits a greenfield implementation to pick a fixed order. Little-endian
// matches the overwhelming majority of deployment targets.
var byteOrder = binary.LittleEndian

// ErrDataTooLarge is returned by Encode when a Frame's Data exceeds the
// fixed 4096-byte payload field.
type ErrDataTooLarge struct{ Len int }

func (e *ErrDataTooLarge) Error() string {
	return fmt.Sprintf("wire: data length %d exceeds %d-byte payload field", e.Len, dataFieldSize)
}

// ErrFieldTooLong is returned by Encode when a fixed-width string field
// (username, filename, folder, checkpoint tag, node IP) does not fit,
// including its NUL terminator.
type ErrFieldTooLong struct {
	Field string
	Value string
	Max   int
}

func (e *ErrFieldTooLong) Error() string {
	return fmt.Sprintf("wire: %s %q exceeds %d-byte field", e.Field, e.Value, e.Max)
}

// Encode writes f to w as exactly FrameSize bytes.
func Encode(w io.Writer, f *Frame) error {
	if len(f.Data) > dataFieldSize {
		return &ErrDataTooLarge{Len: len(f.Data)}
	}

	buf := make([]byte, FrameSize)
	off := 0

	byteOrder.PutUint32(buf[off:], uint32(f.Opcode))
	off += 4

	if err := putFixedString(buf[off:off+usernameFieldSize], "username", f.Username); err != nil {
		return err
	}
	off += usernameFieldSize

	if err := putFixedString(buf[off:off+filenameFieldSize], "filename", f.Filename); err != nil {
		return err
	}
	off += filenameFieldSize

	if err := putFixedString(buf[off:off+folderFieldSize], "folder", f.Folder); err != nil {
		return err
	}
	off += folderFieldSize

	if err := putFixedString(buf[off:off+checkpointTagFieldSize], "checkpoint_tag", f.CheckpointTag); err != nil {
		return err
	}
	off += checkpointTagFieldSize

	byteOrder.PutUint32(buf[off:], uint32(f.SentenceNum))
	off += 4
	byteOrder.PutUint32(buf[off:], uint32(f.WordIndex))
	off += 4
	byteOrder.PutUint32(buf[off:], uint32(f.Flags))
	off += 4
	byteOrder.PutUint32(buf[off:], uint32(f.RequestID))
	off += 4
	byteOrder.PutUint32(buf[off:], uint32(len(f.Data)))
	off += 4

	copy(buf[off:off+dataFieldSize], f.Data)
	off += dataFieldSize

	byteOrder.PutUint32(buf[off:], uint32(f.ResultCode))
	off += 4

	if err := putFixedString(buf[off:off+nodeIPFieldSize], "node_ip", f.NodeIP); err != nil {
		return err
	}
	off += nodeIPFieldSize

	byteOrder.PutUint32(buf[off:], uint32(f.NodePort))

	_, err := w.Write(buf)
	return err
}

// Decode reads exactly FrameSize bytes from r (resuming on short reads, the
// MSG_WAITALL-equivalent behavior spec.md §4.1 requires) and returns the
// decoded Frame. io.EOF is returned unmodified when r is closed before any
// byte is read; a partial frame yields io.ErrUnexpectedEOF.
func Decode(r io.Reader) (*Frame, error) {
	buf := make([]byte, FrameSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	f := &Frame{}
	off := 0

	f.Opcode = Opcode(byteOrder.Uint32(buf[off:]))
	off += 4

	f.Username = getFixedString(buf[off : off+usernameFieldSize])
	off += usernameFieldSize

	f.Filename = getFixedString(buf[off : off+filenameFieldSize])
	off += filenameFieldSize

	f.Folder = getFixedString(buf[off : off+folderFieldSize])
	off += folderFieldSize

	f.CheckpointTag = getFixedString(buf[off : off+checkpointTagFieldSize])
	off += checkpointTagFieldSize

	f.SentenceNum = int32(byteOrder.Uint32(buf[off:]))
	off += 4
	f.WordIndex = int32(byteOrder.Uint32(buf[off:]))
	off += 4
	f.Flags = int32(byteOrder.Uint32(buf[off:]))
	off += 4
	f.RequestID = int32(byteOrder.Uint32(buf[off:]))
	off += 4

	dataLen := byteOrder.Uint32(buf[off:])
	off += 4

	if dataLen > dataFieldSize {
		return nil, &ErrDataTooLarge{Len: int(dataLen)}
	}
	f.Data = append([]byte(nil), buf[off:off+int(dataLen)]...)
	off += dataFieldSize

	f.ResultCode = ResultCode(byteOrder.Uint32(buf[off:]))
	off += 4

	f.NodeIP = getFixedString(buf[off : off+nodeIPFieldSize])
	off += nodeIPFieldSize

	f.NodePort = int32(byteOrder.Uint32(buf[off:]))

	return f, nil
}

// putFixedString copies s into dst, NUL-padding the remainder. It fails if s
// (plus its terminator) does not fit, rather than silently truncating a
// filename or username.
func putFixedString(dst []byte, field, s string) error {
	if len(s) >= len(dst) {
		return &ErrFieldTooLong{Field: field, Value: s, Max: len(dst) - 1}
	}
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

// getFixedString returns the portion of src before the first NUL byte.
func getFixedString(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		return string(src[:i])
	}
	return string(src)
}
