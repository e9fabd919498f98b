package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/bandwidth/bench"
	"github.com/sarchlab/bandwidth/datarecording"
	"github.com/sarchlab/bandwidth/environment"
	"github.com/sarchlab/bandwidth/idgen"
	"github.com/sarchlab/bandwidth/monitoring"
	"github.com/sarchlab/bandwidth/report"
	"github.com/sarchlab/bandwidth/transfer"
)

// session is one process's part of a run.
type session struct {
	env   *environment.Env
	bench *bench.Benchmark
	exec  *datarecording.ExecRecorder
}

func parseCount(name, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.Wrapf(bench.ErrArgument,
			"%s must be an integer, got %q", name, arg)
	}

	return n, nil
}

func parseCounts(names []string, args []string) ([]int, error) {
	counts := make([]int, len(args))
	for i, arg := range args {
		var err error

		counts[i], err = parseCount(names[i], arg)
		if err != nil {
			return nil, err
		}
	}

	return counts, nil
}

// newSession checks the options, connects to the peer and builds the
// benchmark with the requested observers.
func newSession(cmd *cobra.Command) (*session, error) {
	strategy, err := transfer.Lookup(opts.strategy)
	if err != nil {
		return nil, errors.Wrap(bench.ErrArgument, err.Error())
	}

	policy, err := bench.LookupPolicy(opts.policy)
	if err != nil {
		return nil, err
	}

	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}

	bootstrap, err := environment.LoadBootstrap(envFiles...)
	if err != nil {
		return nil, errors.Wrap(bench.ErrArgument, err.Error())
	}

	bootstrap.RunID = idgen.RunID(bootstrap.RunID)

	if opts.record != "" {
		if err := checkRecordTarget(bootstrap.Rank); err != nil {
			return nil, err
		}
	}

	env, err := environment.Init(environment.Options{Bootstrap: bootstrap})
	if err != nil {
		return nil, err
	}

	s := &session{env: env}

	s.bench = bench.MakeBuilder().
		WithComm(env.Comm()).
		WithStrategy(strategy).
		WithPolicy(policy).
		WithVerification(opts.verify).
		WithPrinter(report.NewPrinter(env.Rank(), cmd.OutOrStdout())).
		Build(fmt.Sprintf("Rank%d", env.Rank()))

	if opts.verbose {
		s.bench.AcceptHook(bench.NewStepLogger(env.Logger()))
	}

	if opts.record != "" {
		if err := s.attachRecorder(); err != nil {
			return nil, err
		}
	}

	if opts.monitor && env.Rank() == report.ReportingRank {
		m := monitoring.NewMonitor().
			WithPortNumber(opts.monitorPort).
			WithBrowser(opts.openBrowser)
		m.RegisterBenchmark(s.bench)
		m.StartServer()
	}

	return s, nil
}

func recordPath(rank int) string {
	return fmt.Sprintf("%s_rank%d", opts.record, rank)
}

// checkRecordTarget fails when the database the rank would record into
// already exists.
func checkRecordTarget(rank int) error {
	filename := recordPath(rank) + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		return errors.Wrapf(bench.ErrArgument,
			"record file %s already exists", filename)
	}

	if !os.IsNotExist(err) {
		return errors.Wrap(bench.ErrArgument, err.Error())
	}

	return nil
}

func (s *session) attachRecorder() error {
	bootstrap := s.env.Bootstrap()

	recorder, err := datarecording.New(recordPath(bootstrap.Rank))
	if err != nil {
		return err
	}

	s.bench.AcceptHook(datarecording.NewSampleRecorder(recorder, bootstrap.RunID))

	s.exec = datarecording.NewExecRecorder(recorder, bootstrap.RunID)
	s.exec.Start()
	s.exec.Set("Rank", strconv.Itoa(bootstrap.Rank))
	s.exec.Set("Address", bootstrap.Addr)
	s.exec.Set("Strategy", s.bench.Strategy().Name())
	s.exec.Set("Policy", s.bench.Policy().Name)

	return nil
}

// close records the end of the run and shuts the runtime down.
func (s *session) close() error {
	if s.exec != nil {
		if err := s.exec.End(); err != nil {
			s.env.Logger().Print(err)
		}
	}

	return s.env.Finalize()
}

// execute runs f and always closes the session. The returned error names the
// rank; cobra prints it.
func (s *session) execute(f func(b *bench.Benchmark) error) error {
	err := f(s.bench)

	if closeErr := s.close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return errors.Wrapf(err, "rank %d", s.env.Bootstrap().Rank)
	}

	return nil
}

// run executes f on a new session.
func run(cmd *cobra.Command, f func(b *bench.Benchmark) error) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	return s.execute(f)
}
