package batterylog

import (
	"fmt"
	"io"
)

// ConsoleSink prints a progress line per sample.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink returns a sink printing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (c *ConsoleSink) Write(s Sample) error {
	_, err := fmt.Fprintf(c.w, "Time: %.1f s; Voltage: %g V; Current: %g A; Capacity: %.4f Ah\n",
		s.Elapsed.Seconds(), s.Voltage, s.Current, s.Capacity)
	return err
}

func (c *ConsoleSink) Close() error {
	return nil
}
