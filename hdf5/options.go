package hdf5

// FileOption configures file creation.
type FileOption func(*fileOptions)

type fileOptions struct {
	offsetSize int
	lengthSize int
}

func defaultFileOptions() *fileOptions {
	return &fileOptions{
		offsetSize: 8,
		lengthSize: 8,
	}
}

// WithOffsetSize sets the size in bytes for file offsets (2, 4, or 8).
func WithOffsetSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.offsetSize = size
		}
	}
}

// WithLengthSize sets the size in bytes for lengths (2, 4, or 8).
func WithLengthSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.lengthSize = size
		}
	}
}

// DatasetOption configures dataset creation.
type DatasetOption func(*datasetOptions)

type attrDef struct {
	name  string
	value any
}

type datasetOptions struct {
	compact    bool
	shape      []uint64
	attributes []attrDef
}

// WithCompact stores the data inside the object header instead of a
// separate block. The encoded data must stay below 64 KiB.
func WithCompact() DatasetOption {
	return func(o *datasetOptions) {
		o.compact = true
	}
}

// WithShape sets the dataset dimensions. The data is taken in row-major
// order and must hold exactly as many elements as the shape describes. It
// is needed for empty two-dimensional data, whose column count cannot be
// inferred.
func WithShape(dims ...uint64) DatasetOption {
	return func(o *datasetOptions) {
		o.shape = dims
	}
}

// WithAttribute attaches an attribute to the dataset. The value may be a
// string, []string, int, int64, []int64, float64 or []float64.
func WithAttribute(name string, value any) DatasetOption {
	return func(o *datasetOptions) {
		o.attributes = append(o.attributes, attrDef{name: name, value: value})
	}
}
