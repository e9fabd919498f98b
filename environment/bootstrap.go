package environment

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/sarchlab/bandwidth/comm/tcp"
)

// Variables that tell a process where it sits in the run.
const (
	EnvRank  = "BANDWIDTH_RANK"
	EnvAddr  = "BANDWIDTH_ADDR"
	EnvRunID = "BANDWIDTH_RUN_ID"
)

// DefaultEnvFile is read when no other file is named. It may be absent.
const DefaultEnvFile = ".env"

// Bootstrap is what a process needs to know before it can reach its peer.
type Bootstrap struct {
	Rank  int
	Addr  string
	RunID string
}

// LoadBootstrap reads the bootstrap variables from the process environment.
// Variables the process environment does not set are taken from the given
// .env files, then from defaults. Naming a file that does not exist is an
// error. With no files named, a missing DefaultEnvFile is ignored.
func LoadBootstrap(files ...string) (Bootstrap, error) {
	fromFile, err := readEnvFiles(files)
	if err != nil {
		return Bootstrap{}, err
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}

		return fromFile[key]
	}

	b := Bootstrap{
		Addr:  lookup(EnvAddr),
		RunID: lookup(EnvRunID),
	}

	if b.Addr == "" {
		b.Addr = tcp.DefaultAddr
	}

	if rank := lookup(EnvRank); rank != "" {
		b.Rank, err = strconv.Atoi(rank)
		if err != nil {
			return Bootstrap{}, errors.Wrapf(err, "%s=%q", EnvRank, rank)
		}
	}

	if b.Rank != 0 && b.Rank != 1 {
		return Bootstrap{}, errors.Errorf(
			"%s must be 0 or 1, got %d", EnvRank, b.Rank)
	}

	return b, nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return map[string]string{}, nil
		}

		files = []string{DefaultEnvFile}
	}

	vars, err := godotenv.Read(files...)
	if err != nil {
		return nil, errors.Wrap(err, "read env file")
	}

	return vars, nil
}

// Environ returns the variables that hand b to a child process.
func (b Bootstrap) Environ() []string {
	env := []string{
		EnvRank + "=" + strconv.Itoa(b.Rank),
		EnvAddr + "=" + b.Addr,
	}

	if b.RunID != "" {
		env = append(env, EnvRunID+"="+b.RunID)
	}

	return env
}
