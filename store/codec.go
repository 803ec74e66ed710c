package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robert-malhotra/h5frame/frame"
	"github.com/robert-malhotra/h5frame/hdf5"
)

// Attribute names written alongside the datasets.
const (
	attrLabelKind = "label_kind"
	attrWidth     = "width"
	attrEncoding  = "encoding"
	attrDType     = "dtype"
	attrRunID     = "run_id"
	attrEmptyLog  = "placeholder"
)

// keyGroup returns the group of key for writing, creating it as needed.
func keyGroup(h *Handle, key string) (*hdf5.Group, error) {
	g, err := h.file.RequireGroup(PathFor(key, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, key, err)
	}
	return g, nil
}

// openKey returns the existing group of key.
func openKey(h *Handle, key string) (*hdf5.Group, error) {
	g, err := h.file.OpenGroup(PathFor(key, ""))
	switch {
	case errors.Is(err, hdf5.ErrNotFound), errors.Is(err, hdf5.ErrNotGroup):
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	case err != nil:
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, key, err)
	}
	return g, nil
}

func openDataset(g *hdf5.Group, name string) (*hdf5.Dataset, error) {
	ds, err := g.OpenDataset(name)
	switch {
	case errors.Is(err, hdf5.ErrNotFound), errors.Is(err, hdf5.ErrNotDataset):
		return nil, fmt.Errorf("%w: %s/%s", ErrKeyNotFound, g.Path(), name)
	case err != nil:
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrIO, g.Path(), name, err)
	}
	return ds, nil
}

func create(g *hdf5.Group, name string, data any, opts ...hdf5.DatasetOption) error {
	if _, err := g.CreateDataset(name, data, opts...); err != nil {
		return fmt.Errorf("%w: writing %s/%s: %w", ErrIO, g.Path(), name, err)
	}
	return nil
}

// drop removes a dataset written by a different kind of push under the
// same key.
func drop(g *hdf5.Group, name string) error {
	err := g.Unlink(name)
	if err == nil || errors.Is(err, hdf5.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("%w: removing %s/%s: %w", ErrIO, g.Path(), name, err)
}

// writeLabels stores an index as 1-D text for flat labels or as a
// labels x width matrix for composite ones, tagged with its kind.
func writeLabels(g *hdf5.Group, name string, ix frame.Index) error {
	opts := []hdf5.DatasetOption{
		hdf5.WithAttribute(attrLabelKind, ix.Kind().String()),
		hdf5.WithAttribute(attrWidth, ix.Width()),
	}
	if ix.Kind() == frame.KindComposite {
		opts = append(opts, hdf5.WithShape(uint64(ix.Len()), uint64(ix.Width())))
		return create(g, name, ix.Rows(), opts...)
	}
	return create(g, name, ix.Strings(), opts...)
}

// readLabels rebuilds an index. Untagged datasets are composite when
// two-dimensional.
func readLabels(g *hdf5.Group, name string) (frame.Index, error) {
	ds, err := openDataset(g, name)
	if err != nil {
		return frame.Index{}, err
	}

	kind := frame.KindFlat
	if ds.Rank() == 2 {
		kind = frame.KindComposite
	}
	if a := ds.Attr(attrLabelKind); a != nil {
		s, err := a.ReadScalarString()
		if err != nil {
			return frame.Index{}, fmt.Errorf("%s: %w", ds.Path(), err)
		}
		if kind, err = frame.ParseLabelKind(s); err != nil {
			return frame.Index{}, fmt.Errorf("%w: %s: %w", ErrShapeMismatch, ds.Path(), err)
		}
	}

	text, err := readText(ds)
	if err != nil {
		return frame.Index{}, err
	}
	shape := ds.Shape()

	if kind == frame.KindFlat {
		if len(shape) > 1 {
			return frame.Index{}, fmt.Errorf("%w: flat labels %s have shape %v", ErrShapeMismatch, ds.Path(), shape)
		}
		return frame.FlatIndex(text...), nil
	}

	if len(shape) != 2 {
		return frame.Index{}, fmt.Errorf("%w: composite labels %s have shape %v", ErrShapeMismatch, ds.Path(), shape)
	}
	n, w := int(shape[0]), int(shape[1])
	if a := ds.Attr(attrWidth); a != nil {
		if want, err := a.ReadScalarInt64(); err == nil && int(want) != w {
			return frame.Index{}, fmt.Errorf("%w: %s has width %d, tagged %d", ErrShapeMismatch, ds.Path(), w, want)
		}
	}
	levels := make([][]string, w)
	for k := range levels {
		levels[k] = make([]string, n)
		for i := range n {
			levels[k][i] = text[i*w+k]
		}
	}
	return frame.IndexFromLevels(levels)
}

// readText reads any string or numeric dataset as text.
func readText(ds *hdf5.Dataset) ([]string, error) {
	vals, err := readNative(ds)
	if err != nil {
		return nil, err
	}
	return frame.FormatValues(vals)
}

// readNative reads a dataset as strings, int64s or float64s depending on
// its stored type.
func readNative(ds *hdf5.Dataset) ([]any, error) {
	var out []any
	switch ds.Kind() {
	case hdf5.KindString:
		v, err := ds.ReadStrings()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		out = make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
	case hdf5.KindInteger:
		v, err := ds.ReadInt64()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		out = make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
	case hdf5.KindFloat:
		v, err := ds.ReadFloat64()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		out = make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
	default:
		return nil, fmt.Errorf("%w: %s has datatype %s", ErrTypeCoercion, ds.Path(), ds.Datatype())
	}
	return out, nil
}

// decodeValues reads a data dataset and casts it to dt. An empty dt keeps
// the stored values: text stays text and typed data stays numeric.
func decodeValues(ds *hdf5.Dataset, dt frame.DType) ([]any, error) {
	vals, err := readNative(ds)
	if err != nil {
		return nil, err
	}
	if dt == "" {
		return vals, nil
	}
	out, err := frame.CastValues(vals, dt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ds.Path(), err)
	}
	return out, nil
}

// encodeValues prepares values for a data dataset. Typed encoding applies
// only to int64 and float64 data; everything else is stored as text.
func encodeValues(vals []any, dt frame.DType, enc Encoding) (Encoding, any, error) {
	if enc == EncodingTyped && dt.Numeric() {
		cast, err := frame.CastValues(vals, dt)
		if err != nil {
			return "", nil, err
		}
		if dt == frame.Int64 {
			out := make([]int64, len(cast))
			for i, v := range cast {
				out[i] = v.(int64)
			}
			return EncodingTyped, out, nil
		}
		out := make([]float64, len(cast))
		for i, v := range cast {
			out[i] = v.(float64)
		}
		return EncodingTyped, out, nil
	}

	text, err := frame.FormatValues(vals)
	if err != nil {
		return "", nil, err
	}
	for i, v := range text {
		if strings.IndexByte(v, 0) >= 0 {
			return "", nil, fmt.Errorf("%w: value %d %q contains a NUL byte", ErrTypeCoercion, i, v)
		}
	}
	return EncodingText, text, nil
}

// checkLabels rejects labels that fixed-length strings cannot hold.
func checkLabels(name string, ix frame.Index) error {
	for i := range ix.Len() {
		for _, p := range ix.At(i).Parts() {
			if strings.IndexByte(p, 0) >= 0 {
				return fmt.Errorf("%w: %s label %d %q contains a NUL byte", ErrTypeCoercion, name, i, p)
			}
		}
	}
	return nil
}
