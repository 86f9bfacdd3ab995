package transports

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// ErrClosed is returned by I/O on a transport that is not open.
var ErrClosed = errors.New("transport is closed")

// port is the subset of serial.Port used by SerialTransport.
type port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	Close() error
}

type openFunc func(name string, mode *serial.Mode) (port, error)

func openSerialPort(name string, mode *serial.Mode) (port, error) {
	return serial.Open(name, mode)
}

// SerialTransport implements a line transport over a hardware serial port.
type SerialTransport struct {
	cfg  SerialConfig
	open openFunc

	port    port
	buf     []byte
	pending []byte
}

// SerialConfig holds configuration for opening a serial port.
type SerialConfig struct {
	Port     string
	BaudRate int
	Timeout  time.Duration
}

// NewSerial validates cfg and returns a transport that is not yet open.
func NewSerial(cfg SerialConfig) (*SerialTransport, error) {
	if cfg.Port == "" {
		return nil, errors.New("serial port path is required")
	}

	if cfg.BaudRate == 0 {
		cfg.BaudRate = 9600
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	return &SerialTransport{
		cfg:  cfg,
		open: openSerialPort,
		buf:  make([]byte, 256),
	}, nil
}

// Open claims the port. Opening may toggle DTR/RTS on some adapters.
func (t *SerialTransport) Open() error {
	if t.port != nil {
		return nil
	}

	mode := &serial.Mode{
		BaudRate: t.cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := t.open(t.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", t.cfg.Port, err)
	}

	if err := p.SetReadTimeout(t.cfg.Timeout); err != nil {
		p.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	// Discard anything the device sent before we were listening
	if err := p.ResetInputBuffer(); err != nil {
		p.Close()
		return fmt.Errorf("failed to flush input: %w", err)
	}

	t.port = p
	t.pending = t.pending[:0]
	return nil
}

// IsOpen reports whether the port is held.
func (t *SerialTransport) IsOpen() bool {
	return t.port != nil
}

func (t *SerialTransport) Write(p []byte) (int, error) {
	if t.port == nil {
		return 0, ErrClosed
	}
	return t.port.Write(p)
}

// ReadLine reads until '\n' or until timeout elapses. On timeout it returns
// what was received so far, which is usually nothing. A trailing '\r' is
// kept; callers trim whitespace.
func (t *SerialTransport) ReadLine(timeout time.Duration) (string, error) {
	if t.port == nil {
		return "", ErrClosed
	}

	deadline := time.Now().Add(timeout)
	for {
		if i := bytes.IndexByte(t.pending, '\n'); i >= 0 {
			line := string(t.pending[:i])
			t.pending = append(t.pending[:0], t.pending[i+1:]...)
			return line, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			partial := string(t.pending)
			t.pending = t.pending[:0]
			return partial, nil
		}

		if err := t.port.SetReadTimeout(remaining); err != nil {
			return "", fmt.Errorf("failed to set read timeout: %w", err)
		}

		n, err := t.port.Read(t.buf)
		if err != nil {
			return "", err
		}
		t.pending = append(t.pending, t.buf[:n]...)
	}
}

// Close releases the port. Closing a closed transport is a no-op.
func (t *SerialTransport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	t.pending = t.pending[:0]
	return err
}

// PortName returns the serial port name. The driver reports it in
// connection errors.
func (t *SerialTransport) PortName() string {
	return t.cfg.Port
}
