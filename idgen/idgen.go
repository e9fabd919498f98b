// Package idgen generates IDs for benchmark runs and the objects they create.
package idgen

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator can generate IDs.
type Generator interface {
	// Generate returns an ID that the generator has not returned before.
	Generate() string
}

// Sequential generates "1", "2", "3" and so on. It is safe for concurrent use.
type Sequential struct {
	nextID uint64
}

// Generate returns the next number.
func (g *Sequential) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.nextID, 1), 10)
}

// Unique generates globally unique, sortable IDs. Two processes never
// generate the same ID.
type Unique struct{}

// Generate returns a new xid.
func (Unique) Generate() string {
	return xid.New().String()
}

var (
	defaultMutex        sync.Mutex
	defaultInstantiated bool
	defaultGenerator    Generator
)

// UseSequential makes DefaultGenerator return a sequential generator. It must be
// called before the first call to DefaultGenerator.
func UseSequential() {
	use(&Sequential{})
}

// UseUnique makes DefaultGenerator return a unique-ID generator. It must be called
// before the first call to DefaultGenerator.
func UseUnique() {
	use(Unique{})
}

func use(g Generator) {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()

	if defaultInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	defaultGenerator = g
	defaultInstantiated = true
}

// DefaultGenerator returns the process-wide generator. Unless configured otherwise, it
// generates unique IDs.
func DefaultGenerator() Generator {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()

	if !defaultInstantiated {
		defaultGenerator = Unique{}
		defaultInstantiated = true
	}

	return defaultGenerator
}

// RunID returns the ID of the current run. A non-empty inherited ID, such as
// one a launcher handed to both ranks, wins over a generated one.
func RunID(inherited string) string {
	if inherited != "" {
		return inherited
	}

	return DefaultGenerator().Generate()
}
