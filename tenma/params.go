package tenma

import "context"

// Constant voltage

// SetVoltage sets the constant-voltage level in volts.
func (l *Load) SetVoltage(ctx context.Context, volts float64) error {
	return l.Set(ctx, ParamVoltage, volts)
}

// Voltage reads the constant-voltage level.
func (l *Load) Voltage(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamVoltage)
}

// SetVoltageMin sets the lower voltage limit.
func (l *Load) SetVoltageMin(ctx context.Context, volts float64) error {
	return l.Set(ctx, ParamVoltageMin, volts)
}

// VoltageMin reads the lower voltage limit.
func (l *Load) VoltageMin(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamVoltageMin)
}

// SetVoltageMax sets the upper voltage limit.
func (l *Load) SetVoltageMax(ctx context.Context, volts float64) error {
	return l.Set(ctx, ParamVoltageMax, volts)
}

// VoltageMax reads the upper voltage limit.
func (l *Load) VoltageMax(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamVoltageMax)
}

// Constant current

// SetCurrent sets the constant-current level in amps.
func (l *Load) SetCurrent(ctx context.Context, amps float64) error {
	return l.Set(ctx, ParamCurrent, amps)
}

// Current reads the constant-current level.
func (l *Load) Current(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamCurrent)
}

// SetCurrentMin sets the lower current limit.
func (l *Load) SetCurrentMin(ctx context.Context, amps float64) error {
	return l.Set(ctx, ParamCurrentMin, amps)
}

// CurrentMin reads the lower current limit.
func (l *Load) CurrentMin(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamCurrentMin)
}

// SetCurrentMax sets the upper current limit.
func (l *Load) SetCurrentMax(ctx context.Context, amps float64) error {
	return l.Set(ctx, ParamCurrentMax, amps)
}

// CurrentMax reads the upper current limit.
func (l *Load) CurrentMax(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamCurrentMax)
}

// Constant resistance

// SetResistance sets the constant-resistance level in ohms.
func (l *Load) SetResistance(ctx context.Context, ohms float64) error {
	return l.Set(ctx, ParamResistance, ohms)
}

// Resistance reads the constant-resistance level.
func (l *Load) Resistance(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamResistance)
}

// SetResistanceMin sets the lower resistance limit.
func (l *Load) SetResistanceMin(ctx context.Context, ohms float64) error {
	return l.Set(ctx, ParamResistanceMin, ohms)
}

// ResistanceMin reads the lower resistance limit.
func (l *Load) ResistanceMin(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamResistanceMin)
}

// SetResistanceMax sets the upper resistance limit.
func (l *Load) SetResistanceMax(ctx context.Context, ohms float64) error {
	return l.Set(ctx, ParamResistanceMax, ohms)
}

// ResistanceMax reads the upper resistance limit.
func (l *Load) ResistanceMax(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamResistanceMax)
}

// Constant power

// SetPower sets the constant-power level in watts.
func (l *Load) SetPower(ctx context.Context, watts float64) error {
	return l.Set(ctx, ParamPower, watts)
}

// Power reads the constant-power level.
func (l *Load) Power(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamPower)
}

// SetPowerMin sets the lower power limit.
func (l *Load) SetPowerMin(ctx context.Context, watts float64) error {
	return l.Set(ctx, ParamPowerMin, watts)
}

// PowerMin reads the lower power limit.
func (l *Load) PowerMin(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamPowerMin)
}

// SetPowerMax sets the upper power limit.
func (l *Load) SetPowerMax(ctx context.Context, watts float64) error {
	return l.Set(ctx, ParamPowerMax, watts)
}

// PowerMax reads the upper power limit.
func (l *Load) PowerMax(ctx context.Context) (float64, error) {
	return l.Get(ctx, ParamPowerMax)
}

// Output convenience

// Enable switches the load input on.
func (l *Load) Enable(ctx context.Context) error {
	return l.SetOutput(ctx, true)
}

// Disable switches the load input off.
func (l *Load) Disable(ctx context.Context) error {
	return l.SetOutput(ctx, false)
}
