package frame

import "fmt"

// Series is a named sequence of values paired 1:1 with index labels.
type Series struct {
	Name   string
	Index  Index
	Values []any
	DType  DType
}

// NewSeries validates and returns a series. An empty dt is inferred from
// the values.
func NewSeries(name string, index Index, values []any, dt DType) (*Series, error) {
	if dt == "" {
		dt = InferDType(values)
	}
	s := &Series{Name: name, Index: index, Values: values, DType: dt}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Series) Len() int { return len(s.Values) }

// Validate checks that every value has a label.
func (s *Series) Validate() error {
	if s.Index.Len() != len(s.Values) {
		return fmt.Errorf("%w: series %q has %d labels and %d values", ErrShapeMismatch, s.Name, s.Index.Len(), len(s.Values))
	}
	return nil
}

// Strings formats every value as text.
func (s *Series) Strings() ([]string, error) {
	return FormatValues(s.Values)
}

// Cast returns a copy of the series with every value converted to dt.
func (s *Series) Cast(dt DType) (*Series, error) {
	vals, err := CastValues(s.Values, dt)
	if err != nil {
		return nil, fmt.Errorf("series %q: %w", s.Name, err)
	}
	return &Series{Name: s.Name, Index: s.Index, Values: vals, DType: dt}, nil
}
