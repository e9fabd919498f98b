// Package environment owns the messaging runtime of a benchmark process. A
// process initializes it once, uses its communicator and finalizes it before
// exiting. Finalization also runs when the process exits through atexit.
package environment

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/bandwidth/comm"
	"github.com/sarchlab/bandwidth/comm/tcp"
)

// ConnectFunc creates the communicator of a process.
type ConnectFunc func(b Bootstrap) (comm.Communicator, error)

// ConnectTCP connects to the peer over TCP.
func ConnectTCP(b Bootstrap) (comm.Communicator, error) {
	return tcp.MakeBuilder().
		WithRank(b.Rank).
		WithAddr(b.Addr).
		Build()
}

// Options configures Init.
type Options struct {
	Bootstrap Bootstrap

	// Connect defaults to ConnectTCP.
	Connect ConnectFunc
}

// Env is the initialized runtime of the process.
type Env struct {
	bootstrap Bootstrap
	comm      comm.Communicator
	logger    *log.Logger

	finalizeOnce sync.Once
	finalizeErr  error
}

var (
	initMutex   sync.Mutex
	initialized bool
)

// Init connects the process to its peer. A process can be initialized only
// once; a second call panics.
func Init(opts Options) (*Env, error) {
	initMutex.Lock()
	defer initMutex.Unlock()

	if initialized {
		log.Panic("environment is already initialized")
	}

	connect := opts.Connect
	if connect == nil {
		connect = ConnectTCP
	}

	c, err := connect(opts.Bootstrap)
	if err != nil {
		return nil, errors.Wrapf(err, "rank %d connect to %s",
			opts.Bootstrap.Rank, opts.Bootstrap.Addr)
	}

	initialized = true

	e := &Env{
		bootstrap: opts.Bootstrap,
		comm:      c,
		logger: log.New(os.Stderr,
			fmt.Sprintf("rank %d: ", opts.Bootstrap.Rank), log.LstdFlags),
	}

	atexit.Register(func() {
		if err := e.Finalize(); err != nil {
			e.logger.Print(err)
		}
	})

	return e, nil
}

// Comm returns the communicator of the process.
func (e *Env) Comm() comm.Communicator {
	return e.comm
}

// Rank returns the rank of the process.
func (e *Env) Rank() int {
	return e.comm.Rank()
}

// Bootstrap returns the bootstrap the environment was initialized with.
func (e *Env) Bootstrap() Bootstrap {
	return e.bootstrap
}

// Logger returns a logger that writes to stderr, prefixed with the rank.
func (e *Env) Logger() *log.Logger {
	return e.logger
}

// Finalize shuts the runtime down. Calling it more than once is allowed; only
// the first call closes the communicator.
func (e *Env) Finalize() error {
	e.finalizeOnce.Do(func() {
		if err := e.comm.Close(); err != nil {
			e.finalizeErr = errors.Wrap(err, "finalize")
		}
	})

	return e.finalizeErr
}
