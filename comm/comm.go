// Package comm defines the capabilities a messaging runtime must offer to the
// bandwidth benchmark. The benchmark never talks to a network directly. It is
// handed a Communicator at startup and only ever invokes it.
package comm

// Ranks of the two endpoints taking part in a benchmark.
const (
	// Sender is the rank that owns the data and reports results.
	Sender = 0

	// Receiver is the rank that receives the data.
	Receiver = 1

	// Root is the origin of every broadcast.
	Root = Sender
)

// Skeleton describes the shape of a float64 container without its content.
// It is exchanged ahead of the content by the skeleton-content strategy.
type Skeleton struct {
	Len int
}

// A Communicator is one endpoint's handle to the messaging runtime.
//
// All calls block until the operation completes locally. Receives block until
// the matching send arrives. There is no timeout; a peer that never sends
// leaves the caller blocked.
type Communicator interface {
	// Rank returns the rank of the local endpoint.
	Rank() int

	// Size returns the number of endpoints in the communicator.
	Size() int

	// SendInt sends a single integer to dst.
	SendInt(dst int, v int) error

	// RecvInt receives a single integer from src.
	RecvInt(src int) (int, error)

	// SendFloat64s sends the raw content of data to dst.
	SendFloat64s(dst int, data []float64) error

	// RecvFloat64s receives exactly len(data) elements from src into data. A
	// message of a different length fails with ErrSizeMismatch.
	RecvFloat64s(src int, data []float64) error

	// SendObject serializes v with the runtime's native serialization and
	// sends it to dst.
	SendObject(dst int, v any) error

	// RecvObject receives a serialized value from src and decodes it into v,
	// which must be a pointer.
	RecvObject(src int, v any) error

	// Barrier returns once every endpoint has entered the barrier.
	Barrier() error

	// BroadcastInt distributes v from root to every endpoint. Every endpoint
	// gets root's value back.
	BroadcastInt(root int, v int) (int, error)

	// Close releases the runtime resources held by the endpoint.
	Close() error
}

// Peer returns the other endpoint of a two-endpoint communicator.
func Peer(c Communicator) int {
	if c.Rank() == Sender {
		return Receiver
	}

	return Sender
}
