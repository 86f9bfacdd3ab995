package transports

import (
	"bytes"
	"time"
)

// MockTransport implements a line transport for testing.
type MockTransport struct {
	ReadData  []byte
	ReadErr   error
	WriteData []byte
	WriteErr  error
	OpenErr   error
	CloseErr  error

	Opened      bool
	Closed      bool
	Opens       int
	ReadTimeout time.Duration

	// ReadFunc allows custom read behavior for complex tests
	ReadFunc func(timeout time.Duration) (string, error)
}

// NewMockTransport returns a mock that will answer with lines in order.
func NewMockTransport(lines ...string) *MockTransport {
	m := &MockTransport{}
	m.QueueLines(lines...)
	return m
}

// QueueLines appends newline terminated responses to ReadData.
func (m *MockTransport) QueueLines(lines ...string) {
	for _, line := range lines {
		m.ReadData = append(m.ReadData, line...)
		m.ReadData = append(m.ReadData, '\n')
	}
}

func (m *MockTransport) Open() error {
	if m.OpenErr != nil {
		return m.OpenErr
	}
	if !m.Opened {
		m.Opened = true
		m.Closed = false
		m.Opens++
	}
	return nil
}

func (m *MockTransport) IsOpen() bool {
	return m.Opened
}

func (m *MockTransport) Write(p []byte) (int, error) {
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	m.WriteData = append(m.WriteData, p...)
	return len(p), nil
}

func (m *MockTransport) ReadLine(timeout time.Duration) (string, error) {
	m.ReadTimeout = timeout
	if m.ReadFunc != nil {
		return m.ReadFunc(timeout)
	}
	if m.ReadErr != nil {
		return "", m.ReadErr
	}

	i := bytes.IndexByte(m.ReadData, '\n')
	if i < 0 {
		// Simulate a timeout: hand back the partial line, if any
		line := string(m.ReadData)
		m.ReadData = nil
		return line, nil
	}
	line := string(m.ReadData[:i])
	m.ReadData = m.ReadData[i+1:]
	return line, nil
}

func (m *MockTransport) Close() error {
	m.Opened = false
	m.Closed = true
	return m.CloseErr
}

// Written returns everything written so far as a string.
func (m *MockTransport) Written() string {
	return string(m.WriteData)
}

// Reset clears recorded writes.
func (m *MockTransport) Reset() {
	m.WriteData = nil
}
