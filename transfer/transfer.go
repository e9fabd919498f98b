// Package transfer implements the ways a float64 buffer can be moved from the
// sender rank to the receiver rank.
//
// Every strategy is called collectively: the sender and the receiver both call
// Transfer with their own buffer. When the call returns on the receiver, its
// buffer holds the sender's content and has the sender's length.
package transfer

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/sarchlab/bandwidth/comm"
)

// A Strategy moves a buffer from the sender to the receiver exactly once.
type Strategy interface {
	Name() string
	Transfer(c comm.Communicator, buf *[]float64) error
}

// Names of the bundled strategies.
const (
	RawKnownSize    = "raw-known-size"
	RawUnknownSize  = "raw-unknown-size"
	Serialized      = "serialized"
	SkeletonContent = "skeleton-content"
)

// DefaultStrategy is the strategy used when none is selected. It is the only raw
// strategy that works when the receiver does not know the length.
const DefaultStrategy = RawUnknownSize

// ErrUnknownStrategy is returned by Lookup for a name that is not registered.
var ErrUnknownStrategy = errors.New("unknown strategy")

type funcStrategy struct {
	name string
	fn   func(c comm.Communicator, buf *[]float64) error
}

func (s funcStrategy) Name() string { return s.name }

func (s funcStrategy) Transfer(c comm.Communicator, buf *[]float64) error {
	return s.fn(c, buf)
}

// StrategyFunc turns a function into a named Strategy.
func StrategyFunc(
	name string,
	fn func(c comm.Communicator, buf *[]float64) error,
) Strategy {
	return funcStrategy{name: name, fn: fn}
}

var registry = map[string]Strategy{}

// Register adds a strategy to the registry. Registering two strategies under
// the same name panics.
func Register(s Strategy) {
	if _, exists := registry[s.Name()]; exists {
		panic("strategy " + s.Name() + " registered twice")
	}

	registry[s.Name()] = s
}

// Lookup returns the registered strategy with the given name.
func Lookup(name string) (Strategy, error) {
	s, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStrategy,
			"%q, available: %v", name, Names())
	}

	return s, nil
}

// Names lists the registered strategies in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func init() {
	Register(StrategyFunc(RawKnownSize, rawKnownSize))
	Register(StrategyFunc(RawUnknownSize, rawUnknownSize))
	Register(StrategyFunc(Serialized, serialized))
	Register(StrategyFunc(SkeletonContent, skeletonContent))
}

func isSender(c comm.Communicator) bool {
	return c.Rank() == comm.Sender
}

// resize sets the length of buf to n, keeping the backing array when it is
// large enough.
func resize(buf *[]float64, n int) {
	if cap(*buf) >= n {
		*buf = (*buf)[:n]
		return
	}

	*buf = make([]float64, n)
}

// rawKnownSize assumes both ranks already hold buffers of the same length and
// only moves the payload.
func rawKnownSize(c comm.Communicator, buf *[]float64) error {
	if isSender(c) {
		return c.SendFloat64s(comm.Receiver, *buf)
	}

	return c.RecvFloat64s(comm.Sender, *buf)
}

// rawUnknownSize sends the element count first, then the payload. An empty
// buffer needs no payload message.
func rawUnknownSize(c comm.Communicator, buf *[]float64) error {
	if isSender(c) {
		n := len(*buf)
		if err := c.SendInt(comm.Receiver, n); err != nil {
			return err
		}

		if n == 0 {
			return nil
		}

		return c.SendFloat64s(comm.Receiver, *buf)
	}

	n, err := c.RecvInt(comm.Sender)
	if err != nil {
		return err
	}

	if n < 0 {
		return comm.Fail("recv length", comm.Sender,
			errors.Wrapf(comm.ErrMalformed, "negative length %d", n))
	}

	resize(buf, n)
	if n == 0 {
		return nil
	}

	return c.RecvFloat64s(comm.Sender, *buf)
}

// serialized hands the whole container to the runtime's serializer.
func serialized(c comm.Communicator, buf *[]float64) error {
	if isSender(c) {
		return c.SendObject(comm.Receiver, *buf)
	}

	var got []float64
	if err := c.RecvObject(comm.Sender, &got); err != nil {
		return err
	}

	resize(buf, len(got))
	copy(*buf, got)

	return nil
}

// skeletonContent exchanges the container's shape as a serialized skeleton,
// then moves the content as raw payload.
func skeletonContent(c comm.Communicator, buf *[]float64) error {
	if isSender(c) {
		sk := comm.Skeleton{Len: len(*buf)}
		if err := c.SendObject(comm.Receiver, sk); err != nil {
			return err
		}

		return c.SendFloat64s(comm.Receiver, *buf)
	}

	var sk comm.Skeleton
	if err := c.RecvObject(comm.Sender, &sk); err != nil {
		return err
	}

	if sk.Len < 0 {
		return comm.Fail("recv skeleton", comm.Sender,
			errors.Wrapf(comm.ErrMalformed, "negative length %d", sk.Len))
	}

	resize(buf, sk.Len)

	return c.RecvFloat64s(comm.Sender, *buf)
}
