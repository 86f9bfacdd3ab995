package tenma

import (
	"fmt"
	"strings"
)

// Quantity is an electrical quantity the load can regulate.
type Quantity int

const (
	Voltage Quantity = iota
	Current
	Resistance
	Power
)

// quantityRow is one row of the command table.
type quantityRow struct {
	Name   string
	Header string // SCPI header, e.g. ":VOLT"
	Unit   string // Unit suffix on the wire
	Mode   Mode   // Operating mode that regulates this quantity
}

var quantityTable = [...]quantityRow{
	Voltage:    {Name: "voltage", Header: ":VOLT", Unit: "V", Mode: ModeVoltage},
	Current:    {Name: "current", Header: ":CURR", Unit: "A", Mode: ModeCurrent},
	Resistance: {Name: "resistance", Header: ":RES", Unit: "OHM", Mode: ModeResistance},
	Power:      {Name: "power", Header: ":POW", Unit: "W", Mode: ModePower},
}

// Valid reports whether q names a known quantity.
func (q Quantity) Valid() bool {
	return q >= Voltage && q <= Power
}

func (q Quantity) row() quantityRow {
	return quantityTable[q]
}

func (q Quantity) String() string {
	if !q.Valid() {
		return fmt.Sprintf("quantity(%d)", int(q))
	}
	return q.row().Name
}

// Unit returns the unit suffix used on the wire.
func (q Quantity) Unit() string {
	return q.row().Unit
}

// Header returns the command header, e.g. ":CURR".
func (q Quantity) Header() string {
	return q.row().Header
}

// ParseQuantity maps a user supplied name to a Quantity.
func ParseQuantity(name string) (Quantity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "voltage", "volt", "v":
		return Voltage, nil
	case "current", "curr", "i", "a":
		return Current, nil
	case "resistance", "res", "r", "ohm":
		return Resistance, nil
	case "power", "pow", "p", "w":
		return Power, nil
	}
	return 0, fmt.Errorf("unknown quantity %q", name)
}

// Variant selects the nominal setting or one of its limits.
type Variant int

const (
	Nominal Variant = iota
	Min             // Lower limit (:LOW)
	Max             // Upper limit (:UPP)
)

var variantSuffix = [...]string{
	Nominal: "",
	Min:     ":LOW",
	Max:     ":UPP",
}

func (v Variant) String() string {
	switch v {
	case Nominal:
		return "nominal"
	case Min:
		return "minimum"
	case Max:
		return "maximum"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// Parameter is a settable value: a quantity in one variant.
type Parameter struct {
	Quantity Quantity
	Variant  Variant
}

// All parameters known to the load.
var (
	ParamVoltage    = Parameter{Quantity: Voltage, Variant: Nominal}
	ParamVoltageMin = Parameter{Quantity: Voltage, Variant: Min}
	ParamVoltageMax = Parameter{Quantity: Voltage, Variant: Max}

	ParamCurrent    = Parameter{Quantity: Current, Variant: Nominal}
	ParamCurrentMin = Parameter{Quantity: Current, Variant: Min}
	ParamCurrentMax = Parameter{Quantity: Current, Variant: Max}

	ParamResistance    = Parameter{Quantity: Resistance, Variant: Nominal}
	ParamResistanceMin = Parameter{Quantity: Resistance, Variant: Min}
	ParamResistanceMax = Parameter{Quantity: Resistance, Variant: Max}

	ParamPower    = Parameter{Quantity: Power, Variant: Nominal}
	ParamPowerMin = Parameter{Quantity: Power, Variant: Min}
	ParamPowerMax = Parameter{Quantity: Power, Variant: Max}
)

// Parameters returns every parameter in table order.
func Parameters() []Parameter {
	params := make([]Parameter, 0, len(quantityTable)*len(variantSuffix))
	for q := range quantityTable {
		for v := range variantSuffix {
			params = append(params, Parameter{Quantity: Quantity(q), Variant: Variant(v)})
		}
	}
	return params
}

// Valid reports whether the parameter exists in the command table.
func (p Parameter) Valid() bool {
	return p.Quantity.Valid() && p.Variant >= Nominal && p.Variant <= Max
}

// Header returns the full command header, e.g. ":VOLT:LOW".
func (p Parameter) Header() string {
	return p.Quantity.Header() + variantSuffix[p.Variant]
}

// Unit returns the wire unit suffix.
func (p Parameter) Unit() string {
	return p.Quantity.Unit()
}

func (p Parameter) String() string {
	if p.Variant == Nominal {
		return p.Quantity.String()
	}
	return p.Variant.String() + " " + p.Quantity.String()
}

// Mode is the operating mode of the load.
type Mode string

const (
	ModeVoltage    Mode = "VOLC"
	ModeCurrent    Mode = "CURR"
	ModeResistance Mode = "RES"
	ModePower      Mode = "POW"
)

// Modes lists the modes accepted by SetMode.
var Modes = []Mode{ModeVoltage, ModeCurrent, ModeResistance, ModePower}

// Valid reports whether m is one of the four mode literals.
func (m Mode) Valid() bool {
	switch m {
	case ModeVoltage, ModeCurrent, ModeResistance, ModePower:
		return true
	}
	return false
}

func (m Mode) String() string {
	return string(m)
}

// Fixed commands outside the parameter table.
const (
	cmdIdentify = "*IDN"
	cmdTrigger  = "*TRG"
	cmdOutput   = ":INP"
	cmdFunction = ":FUNC"
	cmdMeasure  = ":MEAS"
)

const (
	outputOn  = "ON"
	outputOff = "OFF"
)

// Mode returns the operating mode that regulates q.
func (q Quantity) Mode() Mode {
	return q.row().Mode
}
