package cometd

import "errors"

// Session errors
var (
	// ErrClientExited is returned by every transport operation after either
	// half of the connection has been torn down. It is the normal
	// termination signal, not a failure.
	ErrClientExited = errors.New("client has exited")

	// ErrMissingClientID is returned when an operation that requires an
	// established session runs before a successful handshake.
	ErrMissingClientID = errors.New("missing client id")
)

// ProtocolError reports an inbound frame that could not be decoded as a
// packet batch. The session loop surfaces it to the handler and keeps
// running.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return "malformed packet batch: " + e.Err.Error()
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
