package tenma

import (
	"errors"
	"strconv"
	"testing"
)

func TestEncodeSet(t *testing.T) {
	tests := []struct {
		param Parameter
		value float64
		want  string
	}{
		{ParamVoltage, 12.5, ":VOLT 12.5V\n"},
		{ParamVoltageMin, 0, ":VOLT:LOW 0V\n"},
		{ParamVoltageMax, 60, ":VOLT:UPP 60V\n"},
		{ParamCurrent, 1.25, ":CURR 1.25A\n"},
		{ParamCurrentMin, 0.001, ":CURR:LOW 0.001A\n"},
		{ParamCurrentMax, 30, ":CURR:UPP 30A\n"},
		{ParamResistance, 100, ":RES 100OHM\n"},
		{ParamResistanceMin, 0.5, ":RES:LOW 0.5OHM\n"},
		{ParamResistanceMax, 7500, ":RES:UPP 7500OHM\n"},
		{ParamPower, 150.75, ":POW 150.75W\n"},
		{ParamPowerMin, -1, ":POW:LOW -1W\n"},
		{ParamPowerMax, 300, ":POW:UPP 300W\n"},
	}

	for _, tt := range tests {
		got := string(encodeSet(tt.param, tt.value))
		if got != tt.want {
			t.Errorf("encodeSet(%v, %v): got %q, want %q", tt.param, tt.value, got, tt.want)
		}
	}
}

func TestEncodeQuery(t *testing.T) {
	if got := string(encodeQuery(cmdIdentify)); got != "*IDN?\n" {
		t.Errorf("identify: got %q", got)
	}
	if got := string(encodeQuery(cmdMeasure + Power.Header())); got != ":MEAS:POW?\n" {
		t.Errorf("measure power: got %q", got)
	}
	if got := string(encodeCommand(cmdTrigger, "")); got != "*TRG\n" {
		t.Errorf("trigger: got %q", got)
	}
}

func TestDecodeValue(t *testing.T) {
	for _, unit := range []string{"V", "A", "OHM", "W"} {
		for _, x := range []float64{0, 0.5, -12.34, 1000} {
			line := strconv.FormatFloat(x, 'f', -1, 64) + unit
			got, err := decodeValue(line, unit)
			if err != nil {
				t.Errorf("decodeValue(%q): %v", line, err)
				continue
			}
			if got != x {
				t.Errorf("decodeValue(%q): got %v, want %v", line, got, x)
			}
		}
	}
}

func TestDecodeValue_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		unit string
		want error
	}{
		{"empty", "", "V", ErrNoResponse},
		{"whitespace", " \r", "V", ErrNoResponse},
		{"missing unit", "12.5", "V", ErrMissingUnit},
		{"wrong unit", "12.5A", "V", ErrMissingUnit},
		{"not a number", "abcV", "V", strconv.ErrSyntax},
		{"unit only", "OHM", "OHM", strconv.ErrSyntax},
		{"nan", "NaNW", "W", strconv.ErrSyntax},
		{"hex float", "0x1p4V", "V", strconv.ErrSyntax},
		{"signed hex", "-0X10A", "A", strconv.ErrSyntax},
		{"hex with digit separator", "0x_1p4W", "W", strconv.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeValue(tt.line, tt.unit)
			if !errors.Is(err, tt.want) {
				t.Errorf("error: got %v, want %v", err, tt.want)
			}
			if got != 0 {
				t.Errorf("value: got %v, want 0", got)
			}
		})
	}
}

func TestDecodeOutput(t *testing.T) {
	tests := map[string]bool{
		"ON":  true,
		"OFF": false,
		"":    false,
		"on":  false,
		"1":   false,
	}
	for line, want := range tests {
		if got := decodeOutput(line); got != want {
			t.Errorf("decodeOutput(%q): got %v, want %v", line, got, want)
		}
	}
}

func TestDecodeMode(t *testing.T) {
	for _, m := range Modes {
		got, err := decodeMode(string(m))
		if err != nil || got != m {
			t.Errorf("decodeMode(%q): got %q, %v", m, got, err)
		}
	}

	if _, err := decodeMode("CC"); !errors.Is(err, errUnknownMode) {
		t.Errorf("expected errUnknownMode, got %v", err)
	}
	if _, err := decodeMode(""); !errors.Is(err, ErrNoResponse) {
		t.Errorf("expected ErrNoResponse, got %v", err)
	}
}

func TestParameters(t *testing.T) {
	params := Parameters()
	if len(params) != 12 {
		t.Fatalf("got %d parameters, want 12", len(params))
	}

	headers := map[string]bool{}
	for _, p := range params {
		if !p.Valid() {
			t.Errorf("%v not valid", p)
		}
		headers[p.Header()] = true
	}

	for _, h := range []string{
		":VOLT", ":VOLT:LOW", ":VOLT:UPP",
		":CURR", ":CURR:LOW", ":CURR:UPP",
		":RES", ":RES:LOW", ":RES:UPP",
		":POW", ":POW:LOW", ":POW:UPP",
	} {
		if !headers[h] {
			t.Errorf("missing header %s", h)
		}
	}

	if (Parameter{Quantity: Quantity(9)}).Valid() {
		t.Error("unknown quantity reported valid")
	}
}

func TestParseQuantity(t *testing.T) {
	tests := map[string]Quantity{
		"voltage": Voltage,
		"V":       Voltage,
		"Current": Current,
		"res":     Resistance,
		"power":   Power,
	}
	for name, want := range tests {
		got, err := ParseQuantity(name)
		if err != nil || got != want {
			t.Errorf("ParseQuantity(%q): got %v, %v", name, got, err)
		}
	}
	if _, err := ParseQuantity("flux"); err == nil {
		t.Error("expected error for unknown quantity")
	}
}

func TestQuantityMode(t *testing.T) {
	tests := map[Quantity]Mode{
		Voltage:    ModeVoltage,
		Current:    ModeCurrent,
		Resistance: ModeResistance,
		Power:      ModePower,
	}
	for q, want := range tests {
		if got := q.Mode(); got != want || !got.Valid() {
			t.Errorf("%v mode: got %q, want %q", q, got, want)
		}
	}
}

func TestParseIdentity(t *testing.T) {
	id, err := ParseIdentity("TENMA,72-13200,SN001,1.0")
	if err != nil {
		t.Fatalf("ParseIdentity failed: %v", err)
	}
	if id.Manufacturer != "TENMA" || id.Model != "72-13200" || id.Serial != "SN001" || id.Firmware != "1.0" {
		t.Errorf("identity: got %+v", id)
	}

	id, _ = ParseIdentity("TENMA 72-13200 V2.0")
	if id.Manufacturer != "TENMA 72-13200 V2.0" || id.Model != "" {
		t.Errorf("single field identity: got %+v", id)
	}

	if _, err := ParseIdentity(""); !errors.Is(err, ErrNoResponse) {
		t.Errorf("expected ErrNoResponse, got %v", err)
	}
}
