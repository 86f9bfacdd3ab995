package tenma

import "time"

// Transport is the duplex line channel between the driver and the load.
// This abstraction allows for testing with mock implementations.
type Transport interface {
	// Open acquires the port. Opening an already open transport is a no-op.
	Open() error

	// IsOpen reports whether the port is currently held.
	IsOpen() bool

	// Write sends all bytes of p.
	Write(p []byte) (int, error)

	// ReadLine blocks until a line terminator or the timeout elapses and
	// returns the line without its terminator. A timeout is not an error:
	// it yields whatever was received, usually the empty string.
	ReadLine(timeout time.Duration) (string, error)

	// Close releases the port. It is safe to call on a closed transport.
	Close() error
}
