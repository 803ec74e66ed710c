package store

import (
	"fmt"

	"github.com/robert-malhotra/h5frame/frame"
	"github.com/robert-malhotra/h5frame/hdf5"
)

// PushTable writes t under key as index, columns and data datasets,
// replacing any table already stored there. Tables without rows or
// columns are rejected with [ErrEmptyTable].
//
// Without [WithHandle] every call opens the container, and closing it
// rewrites the root group with all of its links. Replaced space is never
// reused, so many unbatched pushes into a large container grow the file
// quadratically; push many keys through one handle from [Store.Open].
func (s *Store) PushTable(t *frame.Table, key string, opts ...CallOption) error {
	return s.pushTable(t, key, newCallOptions(opts))
}

func (s *Store) pushTable(t *frame.Table, key string, c callOptions, dataOpts ...hdf5.DatasetOption) error {
	if err := t.Validate(); err != nil {
		return err
	}
	rows, cols := t.Shape()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("%w: %s is %dx%d", ErrEmptyTable, key, rows, cols)
	}

	dt := t.DType()
	cells := make([]any, 0, rows*cols)
	for _, row := range t.Data {
		cells = append(cells, row...)
	}
	enc, data, err := encodeValues(cells, dt, s.encoding(c))
	if err != nil {
		return fmt.Errorf("table %s: %w", key, err)
	}
	if err := checkLabels(SubkeyIndex, t.Index); err != nil {
		return fmt.Errorf("table %s: %w", key, err)
	}
	if err := checkLabels(SubkeyColumns, t.Columns); err != nil {
		return fmt.Errorf("table %s: %w", key, err)
	}
	dataOpts = append([]hdf5.DatasetOption{
		hdf5.WithShape(uint64(rows), uint64(cols)),
		hdf5.WithAttribute(attrEncoding, string(enc)),
		hdf5.WithAttribute(attrDType, string(dt)),
	}, dataOpts...)

	return s.with(c, true, func(h *Handle) error {
		g, err := keyGroup(h, key)
		if err != nil {
			return err
		}
		if err := writeLabels(g, SubkeyIndex, t.Index); err != nil {
			return err
		}
		if err := writeLabels(g, SubkeyColumns, t.Columns); err != nil {
			return err
		}
		if err := create(g, SubkeyData, data, dataOpts...); err != nil {
			return err
		}
		if err := drop(g, SubkeyDType); err != nil {
			return err
		}
		s.opts.logger.Debug("pushed table", "key", key, "rows", rows, "cols", cols, "dtype", dt, "encoding", enc)
		return nil
	})
}

// PullTable reads the table stored under key. Text cells come back as
// strings and typed cells as numbers unless [WithDType] casts every cell.
func (s *Store) PullTable(key string, opts ...CallOption) (*frame.Table, error) {
	c := newCallOptions(opts)
	var out *frame.Table
	err := s.with(c, false, func(h *Handle) error {
		t, err := pullTable(h, key, c.dtype)
		out = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func pullTable(h *Handle, key string, dt frame.DType) (*frame.Table, error) {
	g, err := openKey(h, key)
	if err != nil {
		return nil, err
	}
	index, err := readLabels(g, SubkeyIndex)
	if err != nil {
		return nil, err
	}
	columns, err := readLabels(g, SubkeyColumns)
	if err != nil {
		return nil, err
	}
	ds, err := openDataset(g, SubkeyData)
	if err != nil {
		return nil, err
	}

	rows, cols := index.Len(), columns.Len()
	shape := ds.Shape()
	if len(shape) != 2 || int(shape[0]) != rows || int(shape[1]) != cols {
		return nil, fmt.Errorf("%w: %s data has shape %v for %d rows and %d columns", ErrShapeMismatch, key, shape, rows, cols)
	}
	vals, err := decodeValues(ds, dt)
	if err != nil {
		return nil, err
	}

	data := make([][]any, rows)
	for i := range data {
		data[i] = vals[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return frame.NewTable(index, columns, data)
}
