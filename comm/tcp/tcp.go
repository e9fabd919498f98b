// Package tcp is a two-rank messaging runtime over a single TCP connection.
//
// Every message is a frame made of a one-byte kind, an eight-byte
// little-endian payload length and the payload. Float64 payloads are written
// straight from the caller's slice in host byte order; the handshake refuses
// peers whose byte order differs.
package tcp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"
	"math"
	"net"
	"time"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/sarchlab/bandwidth/comm"
)

type frameKind byte

const (
	kindHello frameKind = iota + 1
	kindInt
	kindFloats
	kindObject
	kindBarrier
	kindBroadcast
)

func (k frameKind) String() string {
	switch k {
	case kindHello:
		return "hello"
	case kindInt:
		return "int"
	case kindFloats:
		return "float64s"
	case kindObject:
		return "object"
	case kindBarrier:
		return "barrier"
	case kindBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

const (
	headerSize = 9
	bufferSize = 64 * 1024
)

// Comm is a TCP communicator between rank 0 and rank 1.
type Comm struct {
	rank int
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer

	header  [headerSize]byte
	scratch []byte
}

func newComm(rank int, conn net.Conn) *Comm {
	return &Comm{
		rank: rank,
		conn: conn,
		r:    bufio.NewReaderSize(conn, bufferSize),
		w:    bufio.NewWriterSize(conn, bufferSize),
	}
}

func errInvalidRank(rank int) error {
	return comm.Fail("connect", rank, errors.Wrapf(comm.ErrInvalidRank,
		"tcp runtime supports ranks 0 and 1, got %d", rank))
}

func (b Builder) accept() (net.Conn, error) {
	l := b.listener
	if l == nil {
		var err error

		l, err = net.Listen("tcp", b.addr)
		if err != nil {
			return nil, comm.Fail("listen", 1, errors.Wrap(err, b.addr))
		}
	}
	defer l.Close()

	conn, err := l.Accept()
	if err != nil {
		return nil, comm.Fail("accept", 1, err)
	}

	return conn, nil
}

func (b Builder) dial() (net.Conn, error) {
	deadline := time.Now().Add(b.dialTimeout)

	for {
		conn, err := net.Dial("tcp", b.addr)
		if err == nil {
			return conn, nil
		}

		if time.Now().After(deadline) {
			return nil, comm.Fail("dial", 0, errors.Wrapf(err,
				"rank 0 not reachable at %s after %s", b.addr, b.dialTimeout))
		}

		time.Sleep(b.dialRetry)
	}
}

// byteOrderMark is 1.0 in host byte order.
func byteOrderMark() []byte {
	one := []float64{1}
	return append([]byte(nil), float64Bytes(one)...)
}

func (c *Comm) handshake() error {
	payload := make([]byte, 8, 16)
	binary.LittleEndian.PutUint64(payload, uint64(c.rank))
	payload = append(payload, byteOrderMark()...)

	if err := c.writeFrame("handshake", kindHello, payload); err != nil {
		return err
	}

	n, err := c.readHeader("handshake", kindHello)
	if err != nil {
		return err
	}

	if n != 16 {
		return c.fail("handshake", errors.Wrapf(comm.ErrMalformed,
			"hello of %d bytes", n))
	}

	got, err := c.readPayload("handshake", int(n))
	if err != nil {
		return err
	}

	peerRank := int(binary.LittleEndian.Uint64(got[:8]))
	if peerRank != c.peer() {
		return c.fail("handshake", errors.Wrapf(comm.ErrInvalidRank,
			"peer claims rank %d, want %d", peerRank, c.peer()))
	}

	if !bytes.Equal(got[8:], byteOrderMark()) {
		return c.fail("handshake", errors.Wrap(comm.ErrMalformed,
			"peer uses a different byte order"))
	}

	return nil
}

func float64Bytes(data []float64) []byte {
	if len(data) == 0 {
		return nil
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))),
		len(data)*8)
}

func (c *Comm) peer() int { return 1 - c.rank }

func (c *Comm) fail(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) {
		err = errors.Wrap(comm.ErrClosed, err.Error())
	}

	return comm.Fail(op, c.peer(), err)
}

func (c *Comm) checkPeer(op string, r int) error {
	if r != c.peer() {
		return comm.Fail(op, r, comm.ErrInvalidRank)
	}

	return nil
}

func (c *Comm) writeHeader(op string, kind frameKind, n uint64) error {
	c.header[0] = byte(kind)
	binary.LittleEndian.PutUint64(c.header[1:], n)

	if _, err := c.w.Write(c.header[:]); err != nil {
		return c.fail(op, err)
	}

	return nil
}

func (c *Comm) writeFrame(op string, kind frameKind, payload []byte) error {
	if err := c.writeHeader(op, kind, uint64(len(payload))); err != nil {
		return err
	}

	if _, err := c.w.Write(payload); err != nil {
		return c.fail(op, err)
	}

	if err := c.w.Flush(); err != nil {
		return c.fail(op, err)
	}

	return nil
}

func (c *Comm) readHeader(op string, want frameKind) (uint64, error) {
	if _, err := io.ReadFull(c.r, c.header[:]); err != nil {
		return 0, c.fail(op, err)
	}

	kind := frameKind(c.header[0])
	if kind != want {
		return 0, c.fail(op, errors.Wrapf(comm.ErrMalformed,
			"expected %s frame, got %s", want, kind))
	}

	return binary.LittleEndian.Uint64(c.header[1:]), nil
}

func (c *Comm) readPayload(op string, n int) ([]byte, error) {
	if cap(c.scratch) < n {
		c.scratch = make([]byte, n)
	}

	buf := c.scratch[:n]
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, c.fail(op, err)
	}

	return buf, nil
}

// Rank returns the local rank.
func (c *Comm) Rank() int { return c.rank }

// Size always returns 2.
func (c *Comm) Size() int { return 2 }

// SendInt sends v as an eight-byte integer.
func (c *Comm) SendInt(dst int, v int) error {
	if err := c.checkPeer("send int", dst); err != nil {
		return err
	}

	var payload [8]byte
	binary.LittleEndian.PutUint64(payload[:], uint64(int64(v)))

	return c.writeFrame("send int", kindInt, payload[:])
}

// RecvInt receives an eight-byte integer.
func (c *Comm) RecvInt(src int) (int, error) {
	if err := c.checkPeer("recv int", src); err != nil {
		return 0, err
	}

	return c.recvInt("recv int", kindInt)
}

func (c *Comm) recvInt(op string, kind frameKind) (int, error) {
	n, err := c.readHeader(op, kind)
	if err != nil {
		return 0, err
	}

	if n != 8 {
		return 0, c.fail(op, errors.Wrapf(comm.ErrMalformed,
			"integer of %d bytes", n))
	}

	payload, err := c.readPayload(op, 8)
	if err != nil {
		return 0, err
	}

	return int(int64(binary.LittleEndian.Uint64(payload))), nil
}

// SendFloat64s writes the memory backing data without copying it.
func (c *Comm) SendFloat64s(dst int, data []float64) error {
	if err := c.checkPeer("send float64s", dst); err != nil {
		return err
	}

	return c.writeFrame("send float64s", kindFloats, float64Bytes(data))
}

// RecvFloat64s reads the payload straight into the memory backing data.
func (c *Comm) RecvFloat64s(src int, data []float64) error {
	if err := c.checkPeer("recv float64s", src); err != nil {
		return err
	}

	n, err := c.readHeader("recv float64s", kindFloats)
	if err != nil {
		return err
	}

	if n != uint64(len(data))*8 {
		return c.fail("recv float64s", errors.Wrapf(comm.ErrSizeMismatch,
			"got %d bytes, want %d elements", n, len(data)))
	}

	if _, err := io.ReadFull(c.r, float64Bytes(data)); err != nil {
		return c.fail("recv float64s", err)
	}

	return nil
}

// SendObject gob-encodes v with a fresh encoder and sends the encoding.
func (c *Comm) SendObject(dst int, v any) error {
	if err := c.checkPeer("send object", dst); err != nil {
		return err
	}

	buf := bytes.Buffer{}
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return comm.Fail("send object", dst, errors.Wrap(err, "encode"))
	}

	return c.writeFrame("send object", kindObject, buf.Bytes())
}

// RecvObject receives a gob encoding and decodes it into v.
func (c *Comm) RecvObject(src int, v any) error {
	if err := c.checkPeer("recv object", src); err != nil {
		return err
	}

	n, err := c.readHeader("recv object", kindObject)
	if err != nil {
		return err
	}

	if n > math.MaxInt32 {
		return c.fail("recv object", errors.Wrapf(comm.ErrMalformed,
			"object of %d bytes", n))
	}

	payload, err := c.readPayload("recv object", int(n))
	if err != nil {
		return err
	}

	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(v); err != nil {
		return c.fail("recv object", errors.Wrap(comm.ErrMalformed, err.Error()))
	}

	return nil
}

// Barrier announces arrival to the peer and waits for the peer's announcement.
func (c *Comm) Barrier() error {
	if err := c.writeFrame("barrier", kindBarrier, nil); err != nil {
		return err
	}

	n, err := c.readHeader("barrier", kindBarrier)
	if err != nil {
		return err
	}

	if n != 0 {
		return c.fail("barrier", errors.Wrapf(comm.ErrMalformed,
			"barrier with %d byte payload", n))
	}

	return nil
}

// BroadcastInt sends v from root to the other rank.
func (c *Comm) BroadcastInt(root int, v int) (int, error) {
	if root != 0 && root != 1 {
		return 0, comm.Fail("broadcast", root, comm.ErrInvalidRank)
	}

	if root == c.rank {
		var payload [8]byte
		binary.LittleEndian.PutUint64(payload[:], uint64(int64(v)))

		return v, c.writeFrame("broadcast", kindBroadcast, payload[:])
	}

	return c.recvInt("broadcast", kindBroadcast)
}

// Close closes the connection.
func (c *Comm) Close() error {
	if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return c.fail("close", err)
	}

	return nil
}
