package input

import "time"

// Source delivers raw input records from the platform queue. Implementations
// live in the driver packages; the decoder is their only consumer.
//
// Sources do not serialize access themselves. The decoder wraps every call
// in the process console gate so that a pull cannot interleave with console
// mutation on another thread.
type Source interface {
	// Read removes and returns up to max records. It blocks until at
	// least one record is available or the timeout elapses. A zero
	// timeout returns immediately with whatever is pending; a negative
	// timeout blocks indefinitely. An elapsed timeout yields an empty
	// slice and a nil error.
	Read(max int, timeout time.Duration) ([]Record, error)

	// Peek returns up to max records without removing them.
	Peek(max int) ([]Record, error)

	// Pending returns the number of records currently queued.
	Pending() (int, error)
}
