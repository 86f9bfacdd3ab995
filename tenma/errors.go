package tenma

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNotConnected = errors.New("device not connected")
	ErrNoResponse   = errors.New("no response from device")
	ErrInvalidMode  = errors.New("invalid mode")
	ErrMissingUnit  = errors.New("missing unit suffix")
)

// ConnectionError is returned when the port cannot be claimed.
type ConnectionError struct {
	Port string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("connection error: %v", e.Err)
	}
	return fmt.Sprintf("connection error on %s: %v", e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// TransportError represents a broken channel during a write or read.
type TransportError struct {
	Op  string // Operation that failed (e.g., "set voltage", "identify")
	Err error  // Underlying error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError represents a response that could not be interpreted.
type ParseError struct {
	Op       string // Operation that issued the query
	Response string // Response line as received, without terminator
	Err      error  // Underlying error (if applicable)
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid response for %s %q: %v", e.Op, e.Response, e.Err)
	}
	return fmt.Sprintf("invalid response for %s %q", e.Op, e.Response)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsNotConnected returns true if the operation was refused because the
// device has not been verified.
func IsNotConnected(err error) bool {
	return errors.Is(err, ErrNotConnected)
}

// IsNoResponse returns true if the device did not answer before the timeout.
func IsNoResponse(err error) bool {
	return errors.Is(err, ErrNoResponse)
}

// IsParseError returns true if the error chain contains a ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsTransportError returns true if the error chain contains a TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsSoft reports whether err is one the driver degrades on: the caller got
// a safe default value and may keep polling.
func IsSoft(err error) bool {
	if err == nil || IsTransportError(err) {
		return false
	}
	return IsNotConnected(err) || IsParseError(err) || IsNoResponse(err)
}

// GetParseError extracts a ParseError from an error chain, if present.
func GetParseError(err error) (*ParseError, bool) {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr, true
	}
	return nil, false
}
