package tcp

import (
	"net"
	"time"
)

// DefaultAddr is the rendezvous address used when none is configured.
const DefaultAddr = "127.0.0.1:47000"

// Builder can build TCP communicators.
type Builder struct {
	rank        int
	addr        string
	listener    net.Listener
	dialRetry   time.Duration
	dialTimeout time.Duration
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		addr:        DefaultAddr,
		dialRetry:   50 * time.Millisecond,
		dialTimeout: 30 * time.Second,
	}
}

// WithRank sets the rank of the endpoint to build. Rank 0 listens, rank 1
// dials.
func (b Builder) WithRank(rank int) Builder {
	b.rank = rank
	return b
}

// WithAddr sets the rendezvous address.
func (b Builder) WithAddr(addr string) Builder {
	b.addr = addr
	return b
}

// WithListener makes rank 0 accept its peer on an existing listener instead of
// listening on the rendezvous address.
func (b Builder) WithListener(l net.Listener) Builder {
	b.listener = l
	return b
}

// WithDialTimeout sets how long rank 1 keeps retrying to reach rank 0. It only
// applies to connection setup.
func (b Builder) WithDialTimeout(d time.Duration) Builder {
	b.dialTimeout = d
	return b
}

// Build connects to the peer and returns a ready communicator.
func (b Builder) Build() (*Comm, error) {
	var (
		conn net.Conn
		err  error
	)

	switch b.rank {
	case 0:
		conn, err = b.accept()
	case 1:
		conn, err = b.dial()
	default:
		return nil, errInvalidRank(b.rank)
	}

	if err != nil {
		return nil, err
	}

	c := newComm(b.rank, conn)

	if err := c.handshake(); err != nil {
		conn.Close()
		return nil, err
	}

	return c, nil
}
