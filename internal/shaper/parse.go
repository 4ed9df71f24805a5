package shaper

import (
	"math"
	"strconv"
	"strings"
)

// Sentinel tokens treated as absent values, matched case-insensitively
// after trimming.
var sentinels = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
	"null": {},
}

func isSentinel(trimmed string) bool {
	_, ok := sentinels[strings.ToLower(trimmed)]
	return ok
}

// maxWholeInt is the bound below which a whole-number float is emitted as an
// integer string. Matches the 32-bit signed integer columns of the
// relational backend.
const maxWholeInt = 2147483647

// tryParseFloat parses s as a float. NaN and infinities are rejected so the
// formatting paths never emit them; callers substitute the documented
// default on !ok.
func tryParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// coerceInteger normalizes a numeric field: whole numbers within 32-bit
// range become integer strings, other values become 2-decimal-rounded float
// strings, unparsable input becomes "0".
func coerceInteger(raw string) string {
	f, ok := tryParseFloat(raw)
	if !ok {
		return "0"
	}
	if f == math.Trunc(f) && math.Abs(f) < maxWholeInt {
		return strconv.FormatInt(int64(f), 10)
	}
	return formatDecimal(f, 2)
}

// coerceDecimal normalizes a rate field to the configured precision.
// Unparsable input becomes zero at the same precision.
func coerceDecimal(raw string, precision int) string {
	f, ok := tryParseFloat(raw)
	if !ok {
		f = 0
	}
	return formatDecimal(f, precision)
}

func formatDecimal(f float64, precision int) string {
	shift := math.Pow(10, float64(precision))
	return strconv.FormatFloat(math.Round(f*shift)/shift, 'f', precision, 64)
}
