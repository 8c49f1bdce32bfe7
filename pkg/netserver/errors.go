package netserver

// WireError is a domain error that carries a wire-protocol result code.
// No type in this repository implements it: the coordinator and storage
// node handlers map their sentinel errors (such as
// metadatastore.ErrFileNotFound or storagenode.ErrFileNotFound) to wire
// result codes directly in their own reply helpers.
type WireError interface {
	error

	// Code returns the wire result code to send back to the client.
	Code() uint16

	// Unwrap returns the underlying domain error for errors.Is/As.
	Unwrap() error
}
