package calc

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DisplayError is shown for NaN and syntax failures.
	DisplayError = "Error"
	// DisplayInfinity is shown for both signs of infinity.
	DisplayInfinity = "Infinity"

	roundPlaces   = 10
	scientificDig = 6
)

var (
	scientificAbove = decimal.New(1, 10)
	scientificBelow = decimal.New(1, -6)
	half            = decimal.New(5, -1)
)

// Format renders a result for the display.
func Format(r Result) string {
	switch r.Kind {
	case KindNumber:
		return FormatNumber(r.Value)
	case KindInfinite:
		return DisplayInfinity
	default:
		return DisplayError
	}
}

// FormatNumber rounds v half-up to ten decimal places and prints it either in
// plain decimal form or, outside [1e-6, 1e10], as d.dddddde±x.
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return DisplayError
	}
	if math.IsInf(v, 0) {
		return DisplayInfinity
	}

	rounded := decimal.NewFromFloat(v).Shift(roundPlaces).Add(half).Floor().Shift(-roundPlaces)
	abs := rounded.Abs()

	if abs.GreaterThan(scientificAbove) || (!rounded.IsZero() && abs.LessThan(scientificBelow)) {
		return trimExponent(strconv.FormatFloat(rounded.InexactFloat64(), 'e', scientificDig, 64))
	}
	return rounded.String()
}

// NumberText renders v the way it is echoed back into an expression: plain
// decimal digits for ordinary magnitudes, shortest exponent form otherwise.
func NumberText(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return DisplayInfinity
	case math.IsInf(v, -1):
		return "-" + DisplayInfinity
	}

	abs := math.Abs(v)
	if v == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return trimExponent(strconv.FormatFloat(v, 'e', -1, 64))
}

// trimExponent drops the zero padding Go puts in exponents: e-08 becomes e-8.
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	mantissa, sign, digits := s[:i], s[i+1], strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + string(sign) + digits
}
