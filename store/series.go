package store

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/h5frame/frame"
	"github.com/robert-malhotra/h5frame/hdf5"
)

// PushSeries writes s under key as index, data and dtype datasets,
// replacing whatever was stored there. Batch many pushes through one
// [WithHandle] handle as described for [Store.PushTable].
func (s *Store) PushSeries(sr *frame.Series, key string, opts ...CallOption) error {
	c := newCallOptions(opts)
	if err := sr.Validate(); err != nil {
		return err
	}
	dt := sr.DType
	if dt == "" {
		dt = frame.InferDType(sr.Values)
	}
	enc, data, err := encodeValues(sr.Values, dt, s.encoding(c))
	if err != nil {
		return fmt.Errorf("series %s: %w", key, err)
	}
	if err := checkLabels(SubkeyIndex, sr.Index); err != nil {
		return fmt.Errorf("series %s: %w", key, err)
	}

	return s.with(c, true, func(h *Handle) error {
		g, err := keyGroup(h, key)
		if err != nil {
			return err
		}
		if err := writeLabels(g, SubkeyIndex, sr.Index); err != nil {
			return err
		}
		if err := create(g, SubkeyData, data, hdf5.WithAttribute(attrEncoding, string(enc))); err != nil {
			return err
		}
		if err := create(g, SubkeyDType, string(dt)); err != nil {
			return err
		}
		if err := drop(g, SubkeyColumns); err != nil {
			return err
		}
		s.opts.logger.Debug("pushed series", "key", key, "len", sr.Len(), "dtype", dt, "encoding", enc)
		return nil
	})
}

// PullSeries reads the series stored under key. Values are cast to the
// stored dtype unless [WithDType] overrides it; series written without a
// dtype default to int64.
func (s *Store) PullSeries(key string, opts ...CallOption) (*frame.Series, error) {
	c := newCallOptions(opts)
	var out *frame.Series
	err := s.with(c, false, func(h *Handle) error {
		g, err := openKey(h, key)
		if err != nil {
			return err
		}
		index, err := readLabels(g, SubkeyIndex)
		if err != nil {
			return err
		}
		dt, err := s.seriesDType(g, c)
		if err != nil {
			return err
		}
		ds, err := openDataset(g, SubkeyData)
		if err != nil {
			return err
		}
		vals, err := decodeValues(ds, dt)
		if err != nil {
			return err
		}
		out = &frame.Series{Name: key, Index: index, Values: vals, DType: dt}
		return out.Validate()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) seriesDType(g *hdf5.Group, c callOptions) (frame.DType, error) {
	if c.dtype != "" {
		return c.dtype, nil
	}
	ds, err := openDataset(g, SubkeyDType)
	if errors.Is(err, ErrKeyNotFound) {
		s.opts.logger.Debug("series has no stored dtype", "key", g.Path(), "default", frame.DefaultDType)
		return frame.DefaultDType, nil
	}
	if err != nil {
		return "", err
	}
	names, err := ds.ReadStrings()
	if err != nil || len(names) != 1 {
		return "", fmt.Errorf("%w: unreadable dtype in %s, pass an explicit dtype", ErrTypeCoercion, g.Path())
	}
	return frame.ParseDType(names[0])
}
