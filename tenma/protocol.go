// Package tenma provides a Go driver for the Tenma 72-13200 programmable DC
// electronic load over its serial command interface.
package tenma

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errUnknownMode = errors.New("unrecognized mode")

// Line terminator for commands and responses.
const terminator = "\n"

// encodeCommand builds "HEADER\n" or "HEADER ARG\n".
func encodeCommand(header string, arg string) []byte {
	var b strings.Builder
	b.Grow(len(header) + len(arg) + 2)
	b.WriteString(header)
	if arg != "" {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	b.WriteString(terminator)
	return []byte(b.String())
}

// encodeQuery builds "HEADER?\n".
func encodeQuery(header string) []byte {
	return []byte(header + "?" + terminator)
}

// encodeSet builds the command that sets p to value, e.g. ":VOLT 12.5V\n".
func encodeSet(p Parameter, value float64) []byte {
	return encodeCommand(p.Header(), formatValue(value, p.Unit()))
}

// formatValue renders value in its shortest form followed by unit.
func formatValue(value float64, unit string) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + unit
}

// decodeValue strips unit from the end of line and parses the rest.
func decodeValue(line, unit string) (float64, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, ErrNoResponse
	}

	number, ok := strings.CutSuffix(line, unit)
	if !ok {
		return 0, ErrMissingUnit
	}

	number = strings.TrimSpace(number)
	if isHex(number) {
		return 0, strconv.ErrSyntax
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return 0, numErr.Err
		}
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, strconv.ErrSyntax
	}

	return value, nil
}

// isHex reports whether s carries a 0x prefix, which ParseFloat would
// otherwise accept as a hexadecimal float.
func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// decodeOutput reports whether line is exactly "ON".
func decodeOutput(line string) bool {
	return strings.TrimSpace(line) == outputOn
}

// decodeMode validates a :FUNC? response.
func decodeMode(line string) (Mode, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrNoResponse
	}
	mode := Mode(line)
	if !mode.Valid() {
		return "", errUnknownMode
	}
	return mode, nil
}
