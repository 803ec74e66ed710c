package hdf5

import (
	"fmt"

	"github.com/robert-malhotra/h5frame/internal/dtype"
	"github.com/robert-malhotra/h5frame/internal/message"
)

// Attribute represents an HDF5 attribute attached to a dataset or group.
type Attribute struct {
	msg *message.Attribute
}

// Name returns the attribute name.
func (a *Attribute) Name() string {
	return a.msg.Name
}

// Shape returns the dimensions of the attribute value.
func (a *Attribute) Shape() []uint64 {
	if a.msg.Dataspace == nil || a.msg.Dataspace.IsScalar() {
		return nil
	}
	return a.msg.Dataspace.Dimensions
}

// NumElements returns the total number of elements.
func (a *Attribute) NumElements() uint64 {
	if a.msg.Dataspace == nil {
		return 1
	}
	return a.msg.Dataspace.NumElements()
}

// IsScalar returns true if the attribute is a scalar value.
func (a *Attribute) IsScalar() bool {
	return a.msg.Dataspace == nil || a.msg.Dataspace.IsScalar()
}

// Kind returns the class of the stored values.
func (a *Attribute) Kind() Kind {
	return kindOf(a.msg.Datatype)
}

func (a *Attribute) read(dest any) error {
	if a.msg.Datatype == nil {
		return fmt.Errorf("attribute %q has no datatype", a.msg.Name)
	}
	if err := dtype.Convert(a.msg.Datatype, a.msg.Data, a.NumElements(), dest); err != nil {
		return fmt.Errorf("attribute %q: %w", a.msg.Name, classify(err))
	}
	return nil
}

// ReadStrings reads the attribute as string values.
func (a *Attribute) ReadStrings() ([]string, error) {
	var result []string
	err := a.read(&result)
	return result, err
}

// ReadInt64 reads the attribute as int64 values.
func (a *Attribute) ReadInt64() ([]int64, error) {
	var result []int64
	err := a.read(&result)
	return result, err
}

// ReadFloat64 reads the attribute as float64 values.
func (a *Attribute) ReadFloat64() ([]float64, error) {
	var result []float64
	err := a.read(&result)
	return result, err
}

// ReadScalarString reads a scalar string attribute.
func (a *Attribute) ReadScalarString() (string, error) {
	vals, err := a.ReadStrings()
	if err != nil {
		return "", err
	}
	if len(vals) == 0 {
		return "", fmt.Errorf("no values in attribute %q", a.msg.Name)
	}
	return vals[0], nil
}

// ReadScalarInt64 reads a scalar int64 attribute.
func (a *Attribute) ReadScalarInt64() (int64, error) {
	vals, err := a.ReadInt64()
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("no values in attribute %q", a.msg.Name)
	}
	return vals[0], nil
}

// Value reads the attribute with the Go type that matches its datatype:
// string, int64 or float64 for scalars and the slice form otherwise.
func (a *Attribute) Value() (any, error) {
	var (
		v   any
		err error
	)
	switch a.Kind() {
	case KindString:
		v, err = a.ReadStrings()
	case KindInteger:
		v, err = a.ReadInt64()
	case KindFloat:
		v, err = a.ReadFloat64()
	default:
		return nil, fmt.Errorf("%w: attribute %q has no string or numeric type", ErrUnsupported, a.msg.Name)
	}
	if err != nil || !a.IsScalar() {
		return v, err
	}
	switch s := v.(type) {
	case []string:
		return s[0], nil
	case []int64:
		return s[0], nil
	case []float64:
		return s[0], nil
	}
	return v, nil
}
