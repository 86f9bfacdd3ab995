package batterylog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// CSVHeader is the first row of every log file.
var CSVHeader = []string{"Time", "Voltage (V)", "Current (A)", "Cumulative Capacity (Ah)"}

// CSVDelimiter separates fields in log files.
const CSVDelimiter = ';'

// CSVSink writes samples as delimited text, flushing after every row so a
// crash loses at most the sample in flight.
type CSVSink struct {
	w      *csv.Writer
	closer io.Closer
}

// CreateCSV creates (or truncates) path and writes the header.
func CreateCSV(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	sink, err := NewCSVSink(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	sink.closer = f
	return sink, nil
}

// NewCSVSink writes the header to w and returns a sink over it.
// Closing the sink does not close w.
func NewCSVSink(w io.Writer) (*CSVSink, error) {
	cw := csv.NewWriter(w)
	cw.Comma = CSVDelimiter

	if err := cw.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	return &CSVSink{w: cw}, nil
}

func (c *CSVSink) Write(s Sample) error {
	row := []string{
		formatFloat(s.Elapsed.Seconds()),
		formatFloat(s.Voltage),
		formatFloat(s.Current),
		formatFloat(s.Capacity),
	}
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVSink) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
		c.closer = nil
	}
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
