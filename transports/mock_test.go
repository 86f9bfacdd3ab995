package transports

import (
	"testing"
	"time"
)

func TestMockTransport_Lines(t *testing.T) {
	m := NewMockTransport("ON", "")
	m.ReadData = append(m.ReadData, "12"...)

	for _, want := range []string{"ON", "", "12", ""} {
		got, err := m.ReadLine(time.Second)
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if got != want {
			t.Errorf("line: got %q, want %q", got, want)
		}
	}
}

func TestMockTransport_Lifecycle(t *testing.T) {
	m := &MockTransport{}
	m.Open()
	m.Open()
	if m.Opens != 1 {
		t.Errorf("opens: got %d, want 1", m.Opens)
	}
	m.Close()
	if m.IsOpen() || !m.Closed {
		t.Error("mock not closed")
	}
}
