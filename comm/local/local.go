// Package local provides an in-process messaging runtime. Two Comms created by
// NewPair exchange messages through buffered Go channels, which lets two ranks
// run as goroutines of one process.
package local

import (
	"bytes"
	"encoding/gob"
	"sync"

	"github.com/pkg/errors"

	"github.com/sarchlab/bandwidth/comm"
)

type msgKind int

const (
	kindInt msgKind = iota
	kindFloats
	kindObject
	kindBarrier
	kindBroadcast
)

var kindNames = map[msgKind]string{
	kindInt:       "int",
	kindFloats:    "float64s",
	kindObject:    "object",
	kindBarrier:   "barrier",
	kindBroadcast: "broadcast",
}

type message struct {
	kind   msgKind
	i      int
	floats []float64
	object []byte
}

// DefaultQueueLen is the number of messages that can be in flight in each
// direction before a send blocks.
const DefaultQueueLen = 64

// Comm is one end of an in-process pair.
type Comm struct {
	rank int
	in   <-chan message
	out  chan<- message

	closeOnce *sync.Once
	done      chan struct{}
}

// NewPair creates the sender and receiver ends of a connected pair.
func NewPair() (*Comm, *Comm) {
	return NewPairWithQueueLen(DefaultQueueLen)
}

// NewPairWithQueueLen creates a pair whose queues hold n messages each way.
func NewPairWithQueueLen(n int) (*Comm, *Comm) {
	toReceiver := make(chan message, n)
	toSender := make(chan message, n)
	done := make(chan struct{})
	once := &sync.Once{}

	sender := &Comm{
		rank:      comm.Sender,
		in:        toSender,
		out:       toReceiver,
		closeOnce: once,
		done:      done,
	}
	receiver := &Comm{
		rank:      comm.Receiver,
		in:        toReceiver,
		out:       toSender,
		closeOnce: once,
		done:      done,
	}

	return sender, receiver
}

// Rank returns the local rank.
func (c *Comm) Rank() int { return c.rank }

// Size always returns 2.
func (c *Comm) Size() int { return 2 }

func (c *Comm) peer() int { return 1 - c.rank }

func (c *Comm) checkPeer(op string, r int) error {
	if r != c.peer() {
		return comm.Fail(op, r, comm.ErrInvalidRank)
	}

	return nil
}

func (c *Comm) send(op string, msg message) error {
	select {
	case <-c.done:
		return comm.Fail(op, c.peer(), comm.ErrClosed)
	default:
	}

	select {
	case c.out <- msg:
		return nil
	case <-c.done:
		return comm.Fail(op, c.peer(), comm.ErrClosed)
	}
}

func (c *Comm) recv(op string, kind msgKind) (message, error) {
	var msg message

	select {
	case msg = <-c.in:
	case <-c.done:
		return msg, comm.Fail(op, c.peer(), comm.ErrClosed)
	}

	if msg.kind != kind {
		return msg, comm.Fail(op, c.peer(), errors.Wrapf(comm.ErrMalformed,
			"expected %s, got %s", kindNames[kind], kindNames[msg.kind]))
	}

	return msg, nil
}

// SendInt sends a single integer.
func (c *Comm) SendInt(dst int, v int) error {
	if err := c.checkPeer("send int", dst); err != nil {
		return err
	}

	return c.send("send int", message{kind: kindInt, i: v})
}

// RecvInt receives a single integer.
func (c *Comm) RecvInt(src int) (int, error) {
	if err := c.checkPeer("recv int", src); err != nil {
		return 0, err
	}

	msg, err := c.recv("recv int", kindInt)

	return msg.i, err
}

// SendFloat64s sends a copy of data. The caller may reuse data as soon as the
// call returns.
func (c *Comm) SendFloat64s(dst int, data []float64) error {
	if err := c.checkPeer("send float64s", dst); err != nil {
		return err
	}

	payload := make([]float64, len(data))
	copy(payload, data)

	return c.send("send float64s", message{kind: kindFloats, floats: payload})
}

// RecvFloat64s receives exactly len(data) elements into data.
func (c *Comm) RecvFloat64s(src int, data []float64) error {
	if err := c.checkPeer("recv float64s", src); err != nil {
		return err
	}

	msg, err := c.recv("recv float64s", kindFloats)
	if err != nil {
		return err
	}

	if len(msg.floats) != len(data) {
		return comm.Fail("recv float64s", src, errors.Wrapf(
			comm.ErrSizeMismatch,
			"got %d elements, want %d", len(msg.floats), len(data)))
	}

	copy(data, msg.floats)

	return nil
}

// SendObject gob-encodes v and sends the encoding.
func (c *Comm) SendObject(dst int, v any) error {
	if err := c.checkPeer("send object", dst); err != nil {
		return err
	}

	buf := bytes.Buffer{}
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return comm.Fail("send object", dst, errors.Wrap(err, "encode"))
	}

	return c.send("send object", message{kind: kindObject, object: buf.Bytes()})
}

// RecvObject receives a gob encoding and decodes it into v.
func (c *Comm) RecvObject(src int, v any) error {
	if err := c.checkPeer("recv object", src); err != nil {
		return err
	}

	msg, err := c.recv("recv object", kindObject)
	if err != nil {
		return err
	}

	err = gob.NewDecoder(bytes.NewReader(msg.object)).Decode(v)
	if err != nil {
		return comm.Fail("recv object", src,
			errors.Wrap(comm.ErrMalformed, err.Error()))
	}

	return nil
}

// Barrier returns once the peer has entered its barrier too.
func (c *Comm) Barrier() error {
	if err := c.send("barrier", message{kind: kindBarrier}); err != nil {
		return err
	}

	_, err := c.recv("barrier", kindBarrier)

	return err
}

// BroadcastInt sends v from root to the peer.
func (c *Comm) BroadcastInt(root int, v int) (int, error) {
	if root != comm.Sender && root != comm.Receiver {
		return 0, comm.Fail("broadcast", root, comm.ErrInvalidRank)
	}

	if root == c.rank {
		err := c.send("broadcast", message{kind: kindBroadcast, i: v})
		return v, err
	}

	msg, err := c.recv("broadcast", kindBroadcast)

	return msg.i, err
}

// Close tears down both ends of the pair. Pending and future calls on either
// end fail with ErrClosed.
func (c *Comm) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}
