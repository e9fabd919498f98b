package comm

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrTransport matches every failure reported by a messaging runtime.
var ErrTransport = errors.New("transport failure")

// Causes carried by a TransportError.
var (
	ErrMalformed    = errors.New("malformed message")
	ErrSizeMismatch = errors.New("message size mismatch")
	ErrClosed       = errors.New("communicator closed")
	ErrInvalidRank  = errors.New("invalid rank")
)

// A TransportError is a fault reported by the messaging runtime while
// performing Op with Peer. It is fatal to the benchmark run.
type TransportError struct {
	Op   string
	Peer int
	Err  error
}

// Fail wraps err into a TransportError.
func Fail(op string, peer int, err error) error {
	return &TransportError{Op: op, Peer: peer, Err: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s with rank %d: %v", e.Op, e.Peer, e.Err)
}

// Unwrap returns the cause of the failure.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports every TransportError as an ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
