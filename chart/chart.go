// Package chart draws the discharge history in the terminal: voltage and
// cumulative capacity against elapsed time, stacked as two line plots so
// each keeps its own scale.
package chart

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/guptarohit/asciigraph"

	"github.com/Blup1980/tenma-DC-load/batterylog"
)

const (
	defaultWidth  = 60
	defaultHeight = 15

	clearScreen = "\x1b[H\x1b[2J"
)

// Terminal redraws the plot on every sample. It implements
// batterylog.Observer.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	width  int
	height int
}

// NewTerminal returns a chart writing to w. Non-positive dimensions fall
// back to 60x15.
func NewTerminal(w io.Writer, width, height int) *Terminal {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return &Terminal{w: w, width: width, height: height}
}

// Observe clears the screen and draws the full history.
func (t *Terminal) Observe(history []batterylog.Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.w, clearScreen+Render(history, t.width, t.height))
}

// Render plots history in roughly width columns and height rows, voltage
// above capacity, followed by the elapsed time range.
func Render(history []batterylog.Sample, width, height int) string {
	if len(history) == 0 {
		return "waiting for samples\n"
	}

	voltage := make([]float64, len(history))
	capacity := make([]float64, len(history))
	for i, s := range history {
		voltage[i] = s.Voltage
		capacity[i] = s.Capacity
	}

	plotHeight := max(height/2-1, 1)

	var b strings.Builder
	b.WriteString(asciigraph.Plot(voltage,
		asciigraph.Height(plotHeight),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption("Voltage (V)")))
	b.WriteString("\n\n")
	b.WriteString(asciigraph.Plot(capacity,
		asciigraph.Height(plotHeight),
		asciigraph.Width(width),
		asciigraph.Precision(4),
		asciigraph.Caption("Capacity (Ah)")))
	b.WriteString("\n\n")

	last := history[len(history)-1].Elapsed.Seconds()
	fmt.Fprintf(&b, "elapsed 0..%.0f s, %d samples\n", last, len(history))
	return b.String()
}
