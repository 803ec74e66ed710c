package hdf5

import (
	"fmt"

	"github.com/robert-malhotra/h5frame/internal/dtype"
	"github.com/robert-malhotra/h5frame/internal/message"
)

// flatten converts the accepted dataset inputs to a flat []string, []int64
// or []float64 in row-major order plus their natural dimensions. Scalars
// have nil dimensions.
func flatten(data any) (any, []uint64, error) {
	switch v := data.(type) {
	case string:
		return []string{v}, nil, nil
	case int:
		return []int64{int64(v)}, nil, nil
	case int64:
		return []int64{v}, nil, nil
	case float64:
		return []float64{v}, nil, nil
	case []string:
		return v, []uint64{uint64(len(v))}, nil
	case []int64:
		return v, []uint64{uint64(len(v))}, nil
	case []float64:
		return v, []uint64{uint64(len(v))}, nil
	case [][]string:
		return flatten2(v)
	case [][]int64:
		return flatten2(v)
	case [][]float64:
		return flatten2(v)
	}
	return nil, nil, fmt.Errorf("%w: dataset data of type %T", ErrUnsupported, data)
}

func flatten2[T string | int64 | float64](rows [][]T) (any, []uint64, error) {
	var cols int
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	out := make([]T, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrShape, i, len(r), cols)
		}
		out = append(out, r...)
	}
	return out, []uint64{uint64(len(rows)), uint64(cols)}, nil
}

func elementCount(flat any) int {
	switch v := flat.(type) {
	case []string:
		return len(v)
	case []int64:
		return len(v)
	case []float64:
		return len(v)
	}
	return 0
}

func dataspaceFor(dims []uint64) *message.Dataspace {
	if dims == nil {
		return message.NewScalarDataspace()
	}
	return message.NewDataspace(dims...)
}

func datatypeFor(flat any) *message.Datatype {
	switch v := flat.(type) {
	case []string:
		return dtype.StringType(v)
	case []float64:
		return dtype.Float64Type()
	}
	return dtype.Int64Type()
}

// encodeAttribute builds an attribute message from a Go value.
func encodeAttribute(name string, value any) (*message.Attribute, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty attribute name", ErrInvalidPath)
	}
	switch value.(type) {
	case string, int, int64, float64, []string, []int64, []float64:
	default:
		return nil, fmt.Errorf("%w: attribute %q of type %T", ErrUnsupported, name, value)
	}

	flat, dims, err := flatten(value)
	if err != nil {
		return nil, err
	}
	dt := datatypeFor(flat)
	raw, err := dtype.Encode(dt, flat)
	if err != nil {
		return nil, classify(err)
	}
	return message.NewAttribute(name, dt, dataspaceFor(dims), raw), nil
}
