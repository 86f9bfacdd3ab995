// Package batterylog runs a discharge logging session against a DC load:
// it polls voltage and current, integrates capacity and energy and hands
// each sample to sinks and observers.
package batterylog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Blup1980/tenma-DC-load/tenma"
)

// Lifecycle errors returned by Run.
var (
	ErrSessionRunning  = errors.New("session already running")
	ErrSessionFinished = errors.New("session already finished")
)

// Meter is the part of the load driver a session needs.
type Meter interface {
	SetOutput(ctx context.Context, on bool) error
	Output(ctx context.Context) (bool, error)
	MeasureVoltage(ctx context.Context) (float64, error)
	MeasureCurrent(ctx context.Context) (float64, error)
}

// Sample is one logged row.
type Sample struct {
	Time     time.Time
	Elapsed  time.Duration // Since the session started
	Voltage  float64       // Volts
	Current  float64       // Amps
	Capacity float64       // Cumulative amp-hours
	Energy   float64       // Cumulative watt-hours
	Degraded bool          // A reading could not be parsed and is zero
}

// Sink persists samples. Write is called once per sample, Close once when
// the session ends.
type Sink interface {
	Write(s Sample) error
	Close() error
}

// Observer is notified after every sample with the full history.
// The slice must not be retained or modified.
type Observer interface {
	Observe(history []Sample)
}

// StopReason says why a session ended.
type StopReason int

const (
	StopOutputOff       StopReason = iota + 1 // Device reported its input OFF
	StopDeviceSilent                          // Output query got no reply
	StopNotConnected                          // Driver was never verified
	StopInterrupted                           // Context cancelled or Stop called
	StopDurationReached                       // MaxDuration elapsed
	StopTransportFault                        // Serial channel broke
	StopSinkFault                             // A sink failed to write
)

func (r StopReason) String() string {
	switch r {
	case StopOutputOff:
		return "output switched off"
	case StopDeviceSilent:
		return "device stopped responding"
	case StopNotConnected:
		return "device not connected"
	case StopInterrupted:
		return "interrupted"
	case StopDurationReached:
		return "duration reached"
	case StopTransportFault:
		return "transport fault"
	case StopSinkFault:
		return "sink fault"
	}
	return fmt.Sprintf("stop(%d)", int(r))
}

// Planned reports whether the reason is an expected end of test rather
// than a fault.
func (r StopReason) Planned() bool {
	switch r {
	case StopOutputOff, StopInterrupted, StopDurationReached:
		return true
	}
	return false
}

// Result summarizes a finished session.
type Result struct {
	Reason     StopReason
	Samples    int
	Degraded   int
	Duration   time.Duration
	Capacity   float64 // Amp-hours
	Energy     float64 // Watt-hours
	LastSample Sample
}

// SessionConfig holds configuration for a logging session.
type SessionConfig struct {
	// Meter is the load to poll. Required.
	Meter Meter

	// Interval between samples. Default is 1 second.
	Interval time.Duration

	// MaxDuration ends the session after this long. Zero means unlimited.
	MaxDuration time.Duration

	// EnableOutput switches the load input on before the first sample.
	EnableOutput bool

	Sinks     []Sink
	Observers []Observer

	// Logger for session events. Default is a no-op logger.
	Logger *zap.Logger

	// Now returns the current time. Default is time.Now.
	Now func() time.Time
}

// Session is a single logging run with a start/stop lifecycle.
type Session struct {
	cfg SessionConfig
	log *zap.Logger

	mu       sync.Mutex
	running  bool
	finished bool
	cancel   context.CancelFunc
	samples  []Sample
	capacity float64
	energy   float64
}

// NewSession creates a logging session. It does not touch the device.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Meter == nil {
		return nil, errors.New("session requires a meter")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Session{
		cfg: cfg,
		log: cfg.Logger.Named("session"),
	}, nil
}

// Running reports whether Run is in progress.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Samples returns a copy of the samples recorded so far.
func (s *Session) Samples() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Stop ends a running session after its current sample. It is a no-op when
// the session is not running.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Run polls the meter until the device switches off, the context is
// cancelled, MaxDuration elapses or a fault occurs. Sinks are closed on
// every exit path, so a session can run only once. The returned error is
// nil for planned stops.
func (s *Session) Run(ctx context.Context) (res Result, err error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return Result{}, ErrSessionRunning
	}
	if s.finished {
		s.mu.Unlock()
		return Result{}, ErrSessionFinished
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		closeErr := s.closeSinks()
		if err == nil && closeErr != nil {
			err = closeErr
		}

		s.mu.Lock()
		s.running = false
		s.finished = true
		s.cancel = nil
		res.Samples = len(s.samples)
		res.Capacity = s.capacity
		res.Energy = s.energy
		if n := len(s.samples); n > 0 {
			res.LastSample = s.samples[n-1]
			res.Duration = res.LastSample.Elapsed
		}
		s.mu.Unlock()

		s.log.Info("logging stopped",
			zap.Stringer("reason", res.Reason),
			zap.Int("samples", res.Samples),
			zap.Float64("capacity_ah", res.Capacity),
			zap.Error(err))
	}()

	if s.cfg.EnableOutput {
		if err := s.cfg.Meter.SetOutput(ctx, true); err != nil {
			if reason, fatal := s.classify(ctx, err); fatal {
				res.Reason = reason
				return res, s.faultErr(reason, err)
			}
		}
	}

	s.log.Info("logging started", zap.Duration("interval", s.cfg.Interval))

	start := s.cfg.Now()
	prev := start

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		sample, degraded, err := s.poll(ctx, start, prev)
		if err != nil {
			if reason, fatal := s.classify(ctx, err); fatal {
				res.Reason = reason
				return res, s.faultErr(reason, err)
			}
		}
		prev = sample.Time
		if degraded {
			res.Degraded++
		}

		history := s.record(sample)

		for _, sink := range s.cfg.Sinks {
			if err := sink.Write(sample); err != nil {
				res.Reason = StopSinkFault
				return res, fmt.Errorf("write sample: %w", err)
			}
		}
		for _, obs := range s.cfg.Observers {
			obs.Observe(history)
		}

		on, err := s.cfg.Meter.Output(ctx)
		if err != nil {
			reason, _ := s.classify(ctx, err)
			res.Reason = reason
			return res, s.faultErr(reason, err)
		}
		if !on {
			res.Reason = StopOutputOff
			return res, nil
		}

		if s.cfg.MaxDuration > 0 && sample.Elapsed >= s.cfg.MaxDuration {
			res.Reason = StopDurationReached
			return res, nil
		}

		select {
		case <-ctx.Done():
			res.Reason = StopInterrupted
			return res, nil
		case <-ticker.C:
		}
	}
}

// poll takes one sample. Soft driver errors degrade the reading to zero.
func (s *Session) poll(ctx context.Context, start, prev time.Time) (Sample, bool, error) {
	var degraded bool

	voltage, err := s.cfg.Meter.MeasureVoltage(ctx)
	if err != nil {
		if !tenma.IsSoft(err) || tenma.IsNotConnected(err) {
			return Sample{}, false, err
		}
		degraded = true
	}

	current, err := s.cfg.Meter.MeasureCurrent(ctx)
	if err != nil {
		if !tenma.IsSoft(err) || tenma.IsNotConnected(err) {
			return Sample{}, false, err
		}
		degraded = true
	}

	now := s.cfg.Now()
	hours := now.Sub(prev).Hours()

	s.mu.Lock()
	s.capacity += current * hours
	s.energy += voltage * current * hours
	sample := Sample{
		Time:     now,
		Elapsed:  now.Sub(start),
		Voltage:  voltage,
		Current:  current,
		Capacity: s.capacity,
		Energy:   s.energy,
		Degraded: degraded,
	}
	s.mu.Unlock()

	return sample, degraded, nil
}

func (s *Session) record(sample Sample) []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
	return s.samples
}

// classify maps a driver error to a stop reason. fatal is false for errors
// the session degrades on.
func (s *Session) classify(ctx context.Context, err error) (reason StopReason, fatal bool) {
	switch {
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return StopInterrupted, true
	case tenma.IsTransportError(err):
		return StopTransportFault, true
	case tenma.IsNotConnected(err):
		return StopNotConnected, true
	case tenma.IsNoResponse(err):
		return StopDeviceSilent, true
	case tenma.IsSoft(err):
		return StopDeviceSilent, false
	}
	return StopTransportFault, true
}

// faultErr returns nil for planned stops and err otherwise.
func (s *Session) faultErr(reason StopReason, err error) error {
	if reason.Planned() {
		return nil
	}
	return err
}

func (s *Session) closeSinks() error {
	var errs []error
	for _, sink := range s.cfg.Sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
