package hdf5

import (
	"fmt"
	"path"

	"github.com/robert-malhotra/h5frame/internal/dtype"
	"github.com/robert-malhotra/h5frame/internal/layout"
	"github.com/robert-malhotra/h5frame/internal/message"
	"github.com/robert-malhotra/h5frame/internal/object"
)

// Kind is the broad class of values a dataset or attribute holds.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindInteger
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	}
	return "other"
}

func kindOf(dt *message.Datatype) Kind {
	switch {
	case dt == nil:
		return KindOther
	case dt.IsString():
		return KindString
	case dt.IsInteger():
		return KindInteger
	case dt.IsFloat():
		return KindFloat
	}
	return KindOther
}

// Dataset represents an HDF5 dataset.
type Dataset struct {
	file      *File
	path      string
	header    *object.Header
	dataspace *message.Dataspace
	datatype  *message.Datatype
	layout    layout.Layout
}

// newDataset creates a Dataset from an object header.
func newDataset(f *File, path string, header *object.Header) (*Dataset, error) {
	ds := &Dataset{
		file:      f,
		path:      path,
		header:    header,
		dataspace: header.Dataspace(),
		datatype:  header.Datatype(),
	}
	if ds.dataspace == nil {
		return nil, fmt.Errorf("dataset %s missing dataspace message", path)
	}
	if ds.datatype == nil {
		return nil, fmt.Errorf("dataset %s missing datatype message", path)
	}

	var err error
	ds.layout, err = layout.New(header.DataLayout(), ds.dataspace, ds.datatype, f.reader)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, classify(err))
	}
	return ds, nil
}

// Name returns the dataset name (last component of path).
func (d *Dataset) Name() string {
	return path.Base(d.path)
}

// Path returns the full path to this dataset.
func (d *Dataset) Path() string {
	return d.path
}

// Shape returns the dimensions of the dataset, or nil for a scalar.
func (d *Dataset) Shape() []uint64 {
	if d.dataspace.IsScalar() {
		return nil
	}
	return d.dataspace.Dimensions
}

// Rank returns the number of dimensions.
func (d *Dataset) Rank() int {
	return len(d.Shape())
}

// NumElements returns the total number of elements.
func (d *Dataset) NumElements() uint64 {
	return d.dataspace.NumElements()
}

// IsScalar returns true if the dataset is a scalar (single value).
func (d *Dataset) IsScalar() bool {
	return d.dataspace.IsScalar()
}

// Kind returns the class of the stored values.
func (d *Dataset) Kind() Kind {
	return kindOf(d.datatype)
}

// ElementSize returns the size of each element in bytes.
func (d *Dataset) ElementSize() int {
	return int(d.datatype.Size)
}

// Datatype describes the stored element type, e.g. "int64" or "string(12)".
func (d *Dataset) Datatype() string {
	return d.datatype.String()
}

// ReadRaw reads all data from the dataset as raw bytes.
func (d *Dataset) ReadRaw() ([]byte, error) {
	if d.file.closed {
		return nil, ErrClosed
	}
	raw, err := d.layout.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.path, classify(err))
	}
	return raw, nil
}

func (d *Dataset) read(dest any) error {
	raw, err := d.ReadRaw()
	if err != nil {
		return err
	}
	if err := dtype.Convert(d.datatype, raw, d.NumElements(), dest); err != nil {
		return fmt.Errorf("decoding %s: %w", d.path, classify(err))
	}
	return nil
}

// ReadStrings reads a string dataset in row-major order.
func (d *Dataset) ReadStrings() ([]string, error) {
	var result []string
	err := d.read(&result)
	return result, err
}

// ReadInt64 reads the dataset as int64 values.
func (d *Dataset) ReadInt64() ([]int64, error) {
	var result []int64
	err := d.read(&result)
	return result, err
}

// ReadFloat64 reads the dataset as float64 values.
func (d *Dataset) ReadFloat64() ([]float64, error) {
	var result []float64
	err := d.read(&result)
	return result, err
}

// ReadStringRows reads a two-dimensional string dataset row by row.
func (d *Dataset) ReadStringRows() ([][]string, error) {
	shape := d.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: %s has rank %d, want 2", ErrShape, d.path, len(shape))
	}
	flat, err := d.ReadStrings()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, shape[0])
	cols := int(shape[1])
	for i := range rows {
		rows[i] = flat[i*cols : (i+1)*cols]
	}
	return rows, nil
}

// Attrs returns the attribute names for this dataset.
func (d *Dataset) Attrs() []string {
	var names []string
	for _, a := range d.header.Attributes() {
		names = append(names, a.Name)
	}
	return names
}

// Attr returns an attribute by name, or nil if not found.
func (d *Dataset) Attr(name string) *Attribute {
	for _, a := range d.header.Attributes() {
		if a.Name == name {
			return &Attribute{msg: a}
		}
	}
	return nil
}

// HasAttr returns true if the dataset has an attribute with the given name.
func (d *Dataset) HasAttr(name string) bool {
	return d.Attr(name) != nil
}
