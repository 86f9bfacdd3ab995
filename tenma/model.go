package tenma

import (
	"fmt"
	"strings"
)

// Model describes a load model and its rated limits.
type Model struct {
	Name        string
	Description string
	MaxVoltage  float64 // Volts
	MaxCurrent  float64 // Amps
	MaxPower    float64 // Watts
}

// Model72_13200 is the Tenma 72-13200 DC load.
var Model72_13200 = Model{
	Name:        "Tenma 72-13200",
	Description: "DC Load, 0-60V, 0-30A, 300W",
	MaxVoltage:  60,
	MaxCurrent:  30,
	MaxPower:    300,
}

// Rating returns the rated maximum for q, if the model defines one.
func (m *Model) Rating(q Quantity) (float64, bool) {
	switch q {
	case Voltage:
		return m.MaxVoltage, m.MaxVoltage > 0
	case Current:
		return m.MaxCurrent, m.MaxCurrent > 0
	case Power:
		return m.MaxPower, m.MaxPower > 0
	}
	return 0, false
}

// Identity is the parsed reply to an identification query.
type Identity struct {
	Manufacturer string
	Model        string
	Serial       string
	Firmware     string
	Raw          string
}

func (id Identity) String() string {
	if id.Manufacturer == "" {
		return id.Raw
	}
	return fmt.Sprintf("%s %s (serial %s, firmware %s)", id.Manufacturer, id.Model, id.Serial, id.Firmware)
}

// ParseIdentity splits an *IDN? reply of the form
// "MANUFACTURER,MODEL,SERIAL,FIRMWARE". Missing fields stay empty.
func ParseIdentity(line string) (Identity, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Identity{}, ErrNoResponse
	}

	id := Identity{Raw: line}
	fields := strings.SplitN(line, ",", 4)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	id.Manufacturer = fields[0]
	if len(fields) > 1 {
		id.Model = fields[1]
	}
	if len(fields) > 2 {
		id.Serial = fields[2]
	}
	if len(fields) > 3 {
		id.Firmware = fields[3]
	}

	return id, nil
}

// Measurement is a snapshot of the values at the load terminals.
type Measurement struct {
	Voltage float64 // Volts
	Current float64 // Amps
	Power   float64 // Watts
}

// Settings is a full readback of the programmed state.
type Settings struct {
	Values map[Parameter]float64
	Mode   Mode
	Output bool
}

// Value returns the readback for p, or 0 when it was not read.
func (s Settings) Value(p Parameter) float64 {
	return s.Values[p]
}
