package frame

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrShapeMismatch is returned when label counts disagree with the
	// data or composite labels have differing widths.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrTypeCoercion is returned when a value cannot be formatted as text
	// or cast to a requested type.
	ErrTypeCoercion = errors.New("type coercion failed")
)

// DType names the declared element type of a series or table.
// The names match numpy's so containers stay readable from Python.
type DType string

const (
	Int64    DType = "int64"
	Float64  DType = "float64"
	Bool     DType = "bool"
	Datetime DType = "datetime64[ns]"
	Object   DType = "object"
)

// DefaultDType is used when reading a series that carries no stored type.
const DefaultDType = Int64

var dtypeAliases = map[string]DType{
	"int64":          Int64,
	"int":            Int64,
	"<i8":            Int64,
	"float64":        Float64,
	"float":          Float64,
	"<f8":            Float64,
	"bool":           Bool,
	"datetime64[ns]": Datetime,
	"<M8[ns]":        Datetime,
	"object":         Object,
	"O":              Object,
	"|O":             Object,
	"str":            Object,
	"string":         Object,
}

// ParseDType accepts the canonical names plus the common numpy aliases
// ("int", "<f8", "O", "str").
func ParseDType(s string) (DType, error) {
	if dt, ok := dtypeAliases[strings.TrimSpace(s)]; ok {
		return dt, nil
	}
	return "", fmt.Errorf("%w: unknown dtype %q", ErrTypeCoercion, s)
}

// Numeric reports whether values of dt are int64 or float64.
func (dt DType) Numeric() bool {
	return dt == Int64 || dt == Float64
}

func (dt DType) String() string { return string(dt) }

// InferDType returns the narrowest dtype holding every value: int64 when
// all values are integers, float64 when they are numbers with at least one
// float, bool or datetime64[ns] when uniformly so, and object otherwise.
// An empty slice infers object.
func InferDType(vals []any) DType {
	if len(vals) == 0 {
		return Object
	}
	var ints, floats, bools, times int
	for _, v := range vals {
		switch v.(type) {
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			ints++
		case float32, float64:
			floats++
		case bool:
			bools++
		case time.Time:
			times++
		}
	}
	n := len(vals)
	switch {
	case ints == n:
		return Int64
	case ints+floats == n:
		return Float64
	case bools == n:
		return Bool
	case times == n:
		return Datetime
	}
	return Object
}
