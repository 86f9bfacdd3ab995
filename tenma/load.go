package tenma

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Blup1980/tenma-DC-load/transports"
)

// State is the lifecycle state of a connection.
type State int

const (
	StateClosed   State = iota // Port not held
	StateOpen                  // Port held, device not identified
	StateVerified              // Device answered the identification query
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateVerified:
		return "verified"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Load manages communication with a single DC load.
type Load struct {
	transport Transport
	port      string
	timeout   time.Duration
	model     *Model
	log       *zap.Logger

	mu    sync.Mutex
	state State
}

// LoadConfig holds configuration for creating a new Load.
type LoadConfig struct {
	// Transport is the underlying communication transport.
	// If nil, Port must be specified to open a serial connection.
	Transport Transport

	// Port is the serial port path (e.g., "/dev/ttyUSB0" or "COM4").
	// Ignored if Transport is provided; a transport with a PortName method
	// names the port itself.
	Port string

	// BaudRate is the communication speed. Default is 9600.
	BaudRate int

	// Timeout for reading a response line. Default is 1 second.
	Timeout time.Duration

	// Model describes the connected load. Default is Model72_13200.
	Model *Model

	// Logger receives protocol diagnostics. Default is a no-op logger.
	Logger *zap.Logger
}

// NewLoad creates a new load driver. The port is not opened until Connect.
func NewLoad(cfg LoadConfig) (*Load, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 9600
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	if cfg.Model == nil {
		cfg.Model = &Model72_13200
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	transport := cfg.Transport
	if transport == nil {
		if cfg.Port == "" {
			return nil, errors.New("either Transport or Port must be specified")
		}
		serial, err := transports.NewSerial(transports.SerialConfig{
			Port:     cfg.Port,
			BaudRate: cfg.BaudRate,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create serial transport: %w", err)
		}
		transport = serial
	}

	port := cfg.Port
	if named, ok := transport.(interface{ PortName() string }); ok {
		port = named.PortName()
	}

	return &Load{
		transport: transport,
		port:      port,
		timeout:   cfg.Timeout,
		model:     cfg.Model,
		log:       cfg.Logger.With(zap.String("device", cfg.Model.Name)),
	}, nil
}

// Model returns the ratings of the load.
func (l *Load) Model() *Model {
	return l.model
}

// State returns the current connection state.
func (l *Load) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Verified reports whether the device answered the identification query.
func (l *Load) Verified() bool {
	return l.State() == StateVerified
}

// Connect opens the transport if needed and identifies the device.
//
// A silent device is not an error: Connect logs "no response from device",
// leaves the state at StateOpen and returns nil, so that a caller may keep
// going while the load powers up. Failing to claim the port returns a
// ConnectionError.
func (l *Load) Connect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if !l.transport.IsOpen() {
		if err := l.transport.Open(); err != nil {
			l.state = StateClosed
			l.log.Error("failed to open port", zap.String("port", l.port), zap.Error(err))
			return &ConnectionError{Port: l.port, Err: err}
		}
	}
	l.state = StateOpen

	line, err := l.queryLocked("identify", encodeQuery(cmdIdentify))
	if err != nil {
		return err
	}

	if line == "" {
		l.log.Warn("no response from device")
		return nil
	}

	l.state = StateVerified
	l.log.Info("device connected", zap.String("idn", line))
	return nil
}

// Disconnect closes the transport and clears the verified state.
// It is safe to call multiple times.
func (l *Load) Disconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = StateClosed

	if err := l.transport.Close(); err != nil {
		l.log.Error("failed to close port", zap.Error(err))
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}

// Close implements io.Closer; it is an alias for Disconnect.
func (l *Load) Close() error {
	return l.Disconnect()
}

// Identify re-issues the identification query and parses the reply.
func (l *Load) Identify(ctx context.Context) (Identity, error) {
	line, err := l.query(ctx, "identify", encodeQuery(cmdIdentify))
	if err != nil {
		return Identity{}, err
	}

	id, err := ParseIdentity(line)
	if err != nil {
		return Identity{}, l.parseFailed("identify", line, err)
	}
	return id, nil
}

// Set writes a parameter. No response is expected.
func (l *Load) Set(ctx context.Context, p Parameter, value float64) error {
	if !p.Valid() {
		return fmt.Errorf("unknown parameter %v", p)
	}

	op := "set " + p.String()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkLocked(ctx, op); err != nil {
		return err
	}
	if rating, ok := l.model.Rating(p.Quantity); ok && value > rating {
		l.log.Warn("value exceeds rating", zap.String("op", op), zap.Float64("value", value), zap.Float64("rating", rating))
	}
	return l.writeLocked(op, encodeSet(p, value))
}

// Get reads a parameter. A malformed or missing reply yields 0 and a
// ParseError.
func (l *Load) Get(ctx context.Context, p Parameter) (float64, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("unknown parameter %v", p)
	}
	return l.readValue(ctx, "get "+p.String(), encodeQuery(p.Header()), p.Unit())
}

// SetMode selects the operating mode. Unknown modes are rejected before
// anything is written.
func (l *Load) SetMode(ctx context.Context, mode Mode) error {
	if !mode.Valid() {
		l.log.Error("invalid mode", zap.String("mode", string(mode)))
		return fmt.Errorf("%w %q: use VOLC, CURR, RES or POW", ErrInvalidMode, string(mode))
	}
	return l.send(ctx, "set mode", encodeCommand(cmdFunction, string(mode)))
}

// Mode reads the operating mode.
func (l *Load) Mode(ctx context.Context) (Mode, error) {
	line, err := l.query(ctx, "get mode", encodeQuery(cmdFunction))
	if err != nil {
		return "", err
	}

	mode, err := decodeMode(line)
	if err != nil {
		return "", l.parseFailed("get mode", line, err)
	}
	return mode, nil
}

// SetOutput switches the load input on or off.
func (l *Load) SetOutput(ctx context.Context, on bool) error {
	state := outputOff
	if on {
		state = outputOn
	}
	return l.send(ctx, "set output", encodeCommand(cmdOutput, state))
}

// Output reports whether the load input is on. Only the exact reply "ON"
// counts as on; an empty reply returns false with ErrNoResponse.
func (l *Load) Output(ctx context.Context) (bool, error) {
	line, err := l.query(ctx, "get output", encodeQuery(cmdOutput))
	if err != nil {
		return false, err
	}
	if line == "" {
		return false, l.parseFailed("get output", line, ErrNoResponse)
	}
	return decodeOutput(line), nil
}

// MeasureVoltage measures the voltage at the load terminals.
func (l *Load) MeasureVoltage(ctx context.Context) (float64, error) {
	return l.measure(ctx, Voltage)
}

// MeasureCurrent measures the current through the load.
func (l *Load) MeasureCurrent(ctx context.Context) (float64, error) {
	return l.measure(ctx, Current)
}

// MeasurePower measures the power dissipated by the load.
func (l *Load) MeasurePower(ctx context.Context) (float64, error) {
	return l.measure(ctx, Power)
}

// Measure reads voltage, current and power in turn. Values that could not be
// parsed are zero and their errors are joined into the returned error.
func (l *Load) Measure(ctx context.Context) (Measurement, error) {
	var (
		m    Measurement
		errs []error
	)

	for _, f := range []struct {
		q   Quantity
		dst *float64
	}{
		{Voltage, &m.Voltage},
		{Current, &m.Current},
		{Power, &m.Power},
	} {
		v, err := l.measure(ctx, f.q)
		if err != nil {
			if !IsSoft(err) {
				return m, err
			}
			errs = append(errs, err)
		}
		*f.dst = v
	}

	return m, errors.Join(errs...)
}

// Trigger sends a bus trigger. No response is expected.
func (l *Load) Trigger(ctx context.Context) error {
	return l.send(ctx, "trigger", encodeCommand(cmdTrigger, ""))
}

// Snapshot reads back every parameter, the mode and the output state.
// Soft failures leave zero values and are joined into the returned error.
func (l *Load) Snapshot(ctx context.Context) (Settings, error) {
	s := Settings{Values: make(map[Parameter]float64)}
	var errs []error

	soft := func(err error) error {
		if err != nil && IsSoft(err) {
			errs = append(errs, err)
			return nil
		}
		return err
	}

	for _, p := range Parameters() {
		v, err := l.Get(ctx, p)
		if err := soft(err); err != nil {
			return s, err
		}
		s.Values[p] = v
	}

	mode, err := l.Mode(ctx)
	if err := soft(err); err != nil {
		return s, err
	}
	s.Mode = mode

	on, err := l.Output(ctx)
	if err := soft(err); err != nil {
		return s, err
	}
	s.Output = on

	return s, errors.Join(errs...)
}

// Internal methods

func (l *Load) measure(ctx context.Context, q Quantity) (float64, error) {
	return l.readValue(ctx, "measure "+q.String(), encodeQuery(cmdMeasure+q.Header()), q.Unit())
}

func (l *Load) readValue(ctx context.Context, op string, query []byte, unit string) (float64, error) {
	line, err := l.query(ctx, op, query)
	if err != nil {
		return 0, err
	}

	v, err := decodeValue(line, unit)
	if err != nil {
		return 0, l.parseFailed(op, line, err)
	}
	return v, nil
}

func (l *Load) send(ctx context.Context, op string, cmd []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkLocked(ctx, op); err != nil {
		return err
	}
	return l.writeLocked(op, cmd)
}

func (l *Load) query(ctx context.Context, op string, cmd []byte) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkLocked(ctx, op); err != nil {
		return "", err
	}
	return l.queryLocked(op, cmd)
}

func (l *Load) checkLocked(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if l.state != StateVerified {
		l.log.Warn("device not connected", zap.String("op", op))
		return fmt.Errorf("%s: %w", op, ErrNotConnected)
	}
	return nil
}

func (l *Load) writeLocked(op string, cmd []byte) error {
	n, err := l.transport.Write(cmd)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("write failed: %w", err)}
	}
	if n != len(cmd) {
		return &TransportError{Op: op, Err: fmt.Errorf("incomplete write: %d of %d bytes", n, len(cmd))}
	}

	l.log.Debug("sent", zap.String("op", op), zap.ByteString("cmd", cmd[:len(cmd)-1]))
	return nil
}

func (l *Load) queryLocked(op string, cmd []byte) (string, error) {
	if err := l.writeLocked(op, cmd); err != nil {
		return "", err
	}

	line, err := l.transport.ReadLine(l.timeout)
	if err != nil {
		return "", &TransportError{Op: op, Err: fmt.Errorf("read failed: %w", err)}
	}

	line = strings.TrimSpace(line)
	l.log.Debug("received", zap.String("op", op), zap.String("line", line))
	return line, nil
}

func (l *Load) parseFailed(op, line string, err error) error {
	l.log.Warn("invalid response", zap.String("op", op), zap.String("response", line), zap.Error(err))
	return &ParseError{Op: op, Response: line, Err: err}
}
