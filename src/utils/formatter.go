package utils

import (
	"math"
	"strconv"
	"strings"
)

type Formatter struct {
}

// QuantizeDown floors value to the largest multiple of step that does not
// exceed it and renders the result with at most 8 fractional digits,
// trailing zeros and a dangling decimal point stripped. A zero step means
// no venue constraint: the value is only rounded to 8 digits. The output is
// stable, quantizing it again returns the same string.
func (m *Formatter) QuantizeDown(value float64, step float64) string {
	quantized := value

	if step > 0 {
		ratio := value / step
		steps := math.Floor(ratio)

		// Snap to the boundary when division noise lands a true multiple
		// just below it, e.g. 20/0.1 = 199.999... or 1234.55/0.05.
		if ratio-steps > 1-1e-9 {
			steps++
		}

		quantized = steps * step
	}

	formatted := strconv.FormatFloat(quantized, 'f', 8, 64)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	if formatted == "" || formatted == "-" {
		return "0"
	}

	return formatted
}
