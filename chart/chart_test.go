package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Blup1980/tenma-DC-load/batterylog"
)

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, "waiting for samples\n", Render(nil, 10, 5))
}

func TestRender_SingleSample(t *testing.T) {
	out := Render([]batterylog.Sample{{Elapsed: time.Second, Voltage: 12, Capacity: 0}}, 10, 8)

	assert.Contains(t, out, "12.00")
	assert.Contains(t, out, "0.0000")
	assert.True(t, strings.HasSuffix(out, "elapsed 0..1 s, 1 samples\n"), out)
}

func TestRender_TwoSeries(t *testing.T) {
	history := []batterylog.Sample{
		{Elapsed: 0, Voltage: 12, Capacity: 0},
		{Elapsed: 45 * time.Second, Voltage: 11.5, Capacity: 0.05},
		{Elapsed: 90 * time.Second, Voltage: 11, Capacity: 0.1},
	}
	out := Render(history, 20, 12)

	volts := strings.Index(out, "Voltage (V)")
	amps := strings.Index(out, "Capacity (Ah)")
	assert.True(t, volts >= 0 && amps > volts, "voltage plot must precede capacity plot:\n%s", out)

	// each plot is labelled on its own scale
	assert.Contains(t, out[:volts], "12.00")
	assert.Contains(t, out[:volts], "11.00")
	assert.Contains(t, out[volts:amps], "0.1000")
	assert.Contains(t, out[volts:amps], "0.0000")
	assert.NotContains(t, out[volts:amps], "12.00")

	assert.True(t, strings.HasSuffix(out, "elapsed 0..90 s, 3 samples\n"), out)
}

func TestTerminal_Observe(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, 0, 0)

	term.Observe([]batterylog.Sample{{Voltage: 12}})
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, clearScreen))
	assert.Contains(t, out, "Voltage (V)")
	assert.Contains(t, out, "Capacity (Ah)")
}
