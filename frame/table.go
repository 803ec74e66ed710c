package frame

import "fmt"

// Table is a row-major matrix of cells addressed by row labels (Index)
// and column labels (Columns).
type Table struct {
	Index   Index
	Columns Index
	Data    [][]any
}

// NewTable validates and returns a table.
func NewTable(index, columns Index, data [][]any) (*Table, error) {
	t := &Table{Index: index, Columns: columns, Data: data}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Shape returns the number of rows and columns.
func (t *Table) Shape() (rows, cols int) {
	return t.Index.Len(), t.Columns.Len()
}

// Validate checks that the data has one row per row label and one cell
// per column label in every row.
func (t *Table) Validate() error {
	if len(t.Data) != t.Index.Len() {
		return fmt.Errorf("%w: %d row labels for %d data rows", ErrShapeMismatch, t.Index.Len(), len(t.Data))
	}
	for i, row := range t.Data {
		if len(row) != t.Columns.Len() {
			return fmt.Errorf("%w: row %d has %d cells for %d columns", ErrShapeMismatch, i, len(row), t.Columns.Len())
		}
	}
	return nil
}

// At returns the cell at row i, column j.
func (t *Table) At(i, j int) any { return t.Data[i][j] }

// Column returns the cells of column j.
func (t *Table) Column(j int) []any {
	out := make([]any, len(t.Data))
	for i, row := range t.Data {
		out[i] = row[j]
	}
	return out
}

// Row returns row i as a series named after its label.
func (t *Table) Row(i int) *Series {
	return &Series{
		Name:   t.Index.At(i).String(),
		Index:  t.Columns,
		Values: t.Data[i],
		DType:  InferDType(t.Data[i]),
	}
}

// DType infers the type shared by every cell.
func (t *Table) DType() DType {
	var all []any
	for _, row := range t.Data {
		all = append(all, row...)
	}
	return InferDType(all)
}

// Strings formats every cell as text.
func (t *Table) Strings() ([][]string, error) {
	out := make([][]string, len(t.Data))
	for i, row := range t.Data {
		s, err := FormatValues(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// Cast returns a copy of the table with every cell converted to dt.
func (t *Table) Cast(dt DType) (*Table, error) {
	data := make([][]any, len(t.Data))
	for i, row := range t.Data {
		c, err := CastValues(row, dt)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		data[i] = c
	}
	return &Table{Index: t.Index, Columns: t.Columns, Data: data}, nil
}

// Concat stacks tables that share the same columns. Each row label of
// tables[k] becomes the composite label (keys[k], parts...), so every
// input must have row labels of the same width.
func Concat(keys []string, tables []*Table) (*Table, error) {
	if len(keys) != len(tables) {
		return nil, fmt.Errorf("%w: %d keys for %d tables", ErrShapeMismatch, len(keys), len(tables))
	}
	if len(tables) == 0 {
		return &Table{}, nil
	}

	cols := tables[0].Columns
	var (
		labels []Label
		data   [][]any
	)
	for k, t := range tables {
		if !t.Columns.Equal(cols) {
			return nil, fmt.Errorf("%w: columns of %q differ from %q", ErrShapeMismatch, keys[k], keys[0])
		}
		for i := 0; i < t.Index.Len(); i++ {
			parts := append([]string{keys[k]}, t.Index.At(i).Parts()...)
			labels = append(labels, Composite(parts...))
		}
		data = append(data, t.Data...)
	}

	index, err := NewIndex(labels...)
	if err != nil {
		return nil, err
	}
	return NewTable(index, cols, data)
}
