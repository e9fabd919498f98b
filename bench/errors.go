package bench

import "github.com/pkg/errors"

// ErrArgument reports invalid benchmark parameters. It is detected before any
// message is exchanged.
var ErrArgument = errors.New("invalid argument")

// ErrCorrupted reports a receiver buffer that differs from what the sender
// sent.
var ErrCorrupted = errors.New("received data differs from sent data")
