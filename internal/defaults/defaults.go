// Package defaults parses the default value literals of field descriptors.
package defaults

import (
	"math"
	"strconv"
	"strings"

	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

// TypeError reports a literal of the wrong shape for its kind
type TypeError struct {
	Expected string
	Actual   string
}

func (e *TypeError) Error() string {
	return "expected " + e.Expected + ", but found '" + e.Actual + "'"
}

// ExpectedEnum is the shape an enum default must have
const ExpectedEnum = "an enum value identifier"

// Expected describes the literal shape accepted for a kind
func Expected(kind typegraph.Kind) string {
	switch kind {
	case typegraph.KindInt32, typegraph.KindSint32, typegraph.KindSfixed32:
		return "a signed 32-bit integer"
	case typegraph.KindInt64, typegraph.KindSint64, typegraph.KindSfixed64:
		return "a signed 64-bit integer"
	case typegraph.KindUint32, typegraph.KindFixed32:
		return "an unsigned 32-bit integer"
	case typegraph.KindUint64, typegraph.KindFixed64:
		return "an unsigned 64-bit integer"
	case typegraph.KindFloat, typegraph.KindDouble:
		return "a floating point number"
	case typegraph.KindBool:
		return "either 'true' or 'false'"
	case typegraph.KindString:
		return "a string"
	case typegraph.KindBytes:
		return "a C-escaped byte string"
	case typegraph.KindEnum:
		return ExpectedEnum
	}
	return "a scalar value"
}

// Parse parses a default literal for a scalar kind. Enum defaults are
// checked with ParseEnum instead, since they need the target enum.
func Parse(kind typegraph.Kind, text string) (typegraph.Value, error) {
	fail := func() (typegraph.Value, error) {
		return typegraph.Value{}, &TypeError{Expected: Expected(kind), Actual: text}
	}

	switch kind {
	case typegraph.KindBool:
		switch text {
		case "true":
			return typegraph.BoolValue(true), nil
		case "false":
			return typegraph.BoolValue(false), nil
		}
		return fail()

	case typegraph.KindString:
		return typegraph.StringValue(text), nil

	case typegraph.KindBytes:
		b, err := Unescape(text)
		if err != nil {
			return fail()
		}
		return typegraph.BytesValue(b), nil

	case typegraph.KindFloat, typegraph.KindDouble:
		f, ok := ParseFloat(text, kind == typegraph.KindFloat)
		if !ok {
			return fail()
		}
		return typegraph.FloatValue(kind, f), nil

	case typegraph.KindEnum:
		return fail()
	}

	if !kind.IsInteger() {
		return fail()
	}
	neg, mag, ok := ParseInt(text)
	if !ok {
		return fail()
	}
	if kind.IsSigned() {
		n, ok := SignedInRange(neg, mag, kind.Is64Bit())
		if !ok {
			return fail()
		}
		return typegraph.IntValue(kind, n), nil
	}
	if neg && mag != 0 {
		return fail()
	}
	if !kind.Is64Bit() && mag > math.MaxUint32 {
		return fail()
	}
	return typegraph.UintValue(kind, mag), nil
}

// ParseEnum checks that text is a bare identifier
func ParseEnum(text string) (string, error) {
	if !names.ValidIdent(text) {
		return "", &TypeError{Expected: ExpectedEnum, Actual: text}
	}
	return text, nil
}

// ParseInt reads an optionally negative decimal, hexadecimal (0x) or octal
// (leading 0) integer and returns its sign and magnitude
func ParseInt(text string) (neg bool, mag uint64, ok bool) {
	s := text
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	base := 10
	switch {
	case len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X"):
		base = 16
		s = s[2:]
	case len(s) > 1 && s[0] == '0':
		base = 8
		s = s[1:]
	}
	if s == "" || strings.ContainsAny(s, "_+-") {
		return false, 0, false
	}
	mag, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return false, 0, false
	}
	return neg, mag, true
}

// SignedInRange converts a sign and magnitude into a signed integer that fits
// 32 or 64 bits
func SignedInRange(neg bool, mag uint64, is64 bool) (int64, bool) {
	limit := uint64(math.MaxInt32)
	if is64 {
		limit = math.MaxInt64
	}
	if neg {
		if mag > limit+1 {
			return 0, false
		}
		return int64(-mag), true
	}
	if mag > limit {
		return 0, false
	}
	return int64(mag), true
}

// ParseFloat reads a decimal or exponent-notation number, or one of inf,
// -inf and nan. Integer literals in any base are accepted as well.
func ParseFloat(text string, single bool) (float64, bool) {
	switch strings.ToLower(text) {
	case "inf", "+inf", "infinity":
		return math.Inf(1), true
	case "-inf", "-infinity":
		return math.Inf(-1), true
	case "nan", "-nan":
		return math.NaN(), true
	}
	if text == "" {
		return 0, false
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !(c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-') {
			if neg, mag, ok := ParseInt(text); ok {
				f := float64(mag)
				if neg {
					f = -f
				}
				return f, true
			}
			return 0, false
		}
	}
	bits := 64
	if single {
		bits = 32
	}
	f, err := strconv.ParseFloat(text, bits)
	if err != nil {
		return 0, false
	}
	return f, true
}
