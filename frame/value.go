package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DatetimeLayout is the text form of datetime64[ns] values.
const DatetimeLayout = "2006-01-02T15:04:05.000000000"

var datetimeLayouts = []string{
	DatetimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatValue renders v as text. Floats use the shortest representation
// that round-trips, switching to exponent form below 1e-4 and from 1e16 up,
// and always carry a decimal point or exponent ("1.0", "1e-05", "nan").
// Booleans are "True"/"False", times are UTC in [DatetimeLayout] and nil is
// "None".
func FormatValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "None", nil
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return formatFloat(float64(x), 32), nil
	case float64:
		return formatFloat(x, 64), nil
	case bool:
		if x {
			return "True", nil
		}
		return "False", nil
	case time.Time:
		return x.UTC().Format(DatetimeLayout), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return "", fmt.Errorf("%w: cannot format %T as text", ErrTypeCoercion, v)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	e := strconv.FormatFloat(f, 'e', -1, bits)
	exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, bits)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatValues renders every value with [FormatValue].
func FormatValues(vals []any) ([]string, error) {
	out := make([]string, len(vals))
	for i, v := range vals {
		s, err := FormatValue(v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// ParseValue reads text written by [FormatValue] as dt. Object values are
// returned unchanged as strings.
func ParseValue(s string, dt DType) (any, error) {
	switch dt {
	case Object, "":
		return s, nil
	case Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q as int64", ErrTypeCoercion, s)
		}
		return n, nil
	case Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q as float64", ErrTypeCoercion, s)
		}
		return f, nil
	case Bool:
		switch strings.TrimSpace(s) {
		case "True", "true", "1":
			return true, nil
		case "False", "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("%w: %q as bool", ErrTypeCoercion, s)
	case Datetime:
		s = strings.TrimSpace(s)
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, fmt.Errorf("%w: %q as %s", ErrTypeCoercion, s, dt)
	}
	return nil, fmt.Errorf("%w: unknown dtype %q", ErrTypeCoercion, dt)
}

// Cast converts a single value to dt. Strings are parsed with
// [ParseValue]; numbers convert between int64 and float64 only when no
// information is lost.
func Cast(v any, dt DType) (any, error) {
	if s, ok := v.(string); ok {
		return ParseValue(s, dt)
	}
	if dt == Object {
		return FormatValue(v)
	}

	switch dt {
	case Int64:
		switch x := v.(type) {
		case int:
			return int64(x), nil
		case int8:
			return int64(x), nil
		case int16:
			return int64(x), nil
		case int32:
			return int64(x), nil
		case int64:
			return x, nil
		case uint8:
			return int64(x), nil
		case uint16:
			return int64(x), nil
		case uint32:
			return int64(x), nil
		case bool:
			if x {
				return int64(1), nil
			}
			return int64(0), nil
		case float32, float64:
			f := toFloat(x)
			if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
				return nil, fmt.Errorf("%w: %v as int64", ErrTypeCoercion, v)
			}
			return int64(f), nil
		}
	case Float64:
		switch x := v.(type) {
		case float32:
			return float64(x), nil
		case float64:
			return x, nil
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			n, _ := Cast(x, Int64)
			return float64(n.(int64)), nil
		}
	case Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case Datetime:
		if t, ok := v.(time.Time); ok {
			return t.UTC(), nil
		}
	}
	return nil, fmt.Errorf("%w: %T as %s", ErrTypeCoercion, v, dt)
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	}
	return math.NaN()
}

// CastValues casts every value to dt.
func CastValues(vals []any, dt DType) ([]any, error) {
	out := make([]any, len(vals))
	for i, v := range vals {
		c, err := Cast(v, dt)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}
