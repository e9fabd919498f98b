// Package launch starts the two ranks of a benchmark as child processes, the
// way mpirun -np 2 would.
package launch

import (
	"context"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/bandwidth/environment"
	"github.com/sarchlab/bandwidth/idgen"
)

// NumRanks is the number of processes a launch starts.
const NumRanks = 2

// RankPlaceholder is replaced by the rank number in the exec prefix.
const RankPlaceholder = "{rank}"

// killGrace bounds how long a killed rank's output is drained.
const killGrace = 5 * time.Second

// A Launcher starts every rank of a run and waits for all of them.
type Launcher struct {
	// Executable is the program every rank runs.
	Executable string

	// Args are passed to every rank.
	Args []string

	// Prefix is a shell-quoted command that wraps every rank, for example
	// "taskset -c {rank}" or "ssh node{rank}".
	Prefix string

	// Addr is the rendezvous address. A free local port is picked when empty.
	Addr string

	// RunID is shared by all ranks. A new one is generated when empty.
	RunID string

	Stdout io.Writer
	Stderr io.Writer
}

type lockedWriter struct {
	lock *sync.Mutex
	w    io.Writer
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.w.Write(p)
}

// FreeAddr returns a loopback address with a port nobody listens on.
func FreeAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", errors.Wrap(err, "find free port")
	}
	defer l.Close()

	return l.Addr().String(), nil
}

func (l *Launcher) bootstraps() ([]environment.Bootstrap, error) {
	addr := l.Addr
	if addr == "" {
		var err error

		addr, err = FreeAddr()
		if err != nil {
			return nil, err
		}
	}

	runID := idgen.RunID(l.RunID)

	bootstraps := make([]environment.Bootstrap, NumRanks)
	for rank := range bootstraps {
		bootstraps[rank] = environment.Bootstrap{
			Rank:  rank,
			Addr:  addr,
			RunID: runID,
		}
	}

	return bootstraps, nil
}

func (l *Launcher) argv(rank int) ([]string, error) {
	prefix, err := shellwords.Parse(l.Prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "parse exec prefix %q", l.Prefix)
	}

	argv := make([]string, 0, len(prefix)+1+len(l.Args))
	for _, word := range prefix {
		argv = append(argv,
			strings.ReplaceAll(word, RankPlaceholder, strconv.Itoa(rank)))
	}

	argv = append(argv, l.Executable)
	argv = append(argv, l.Args...)

	return argv, nil
}

// Commands returns the unstarted commands of all ranks, indexed by rank.
func (l *Launcher) Commands(ctx context.Context) ([]*exec.Cmd, error) {
	if l.Executable == "" {
		return nil, errors.New("no executable to launch")
	}

	bootstraps, err := l.bootstraps()
	if err != nil {
		return nil, err
	}

	stdout := l.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	stderr := l.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	lock := &sync.Mutex{}
	cmds := make([]*exec.Cmd, NumRanks)

	for rank, b := range bootstraps {
		argv, err := l.argv(rank)
		if err != nil {
			return nil, err
		}

		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Env = append(os.Environ(), b.Environ()...)
		cmd.Stdout = lockedWriter{lock: lock, w: stdout}
		cmd.Stderr = lockedWriter{lock: lock, w: stderr}
		cmd.WaitDelay = killGrace
		cmds[rank] = cmd
	}

	return cmds, nil
}

// Run starts all ranks and waits for them. When one rank fails, the others
// are killed and the first failure is returned.
func (l *Launcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	cmds, err := l.Commands(ctx)
	if err != nil {
		return err
	}

	for rank, cmd := range cmds {
		g.Go(func() error {
			if err := cmd.Run(); err != nil {
				return errors.Wrapf(err, "rank %d", rank)
			}

			return nil
		})
	}

	return g.Wait()
}
