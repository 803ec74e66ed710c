package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/robert-malhotra/h5frame/frame"
)

// CSVExtractor reads a unit's features from a CSV file whose header row
// names the columns and whose first column holds the row labels. Cells
// that parse as integers or floats become numbers; others stay text.
type CSVExtractor struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// Extract implements Extractor.
func (e CSVExtractor) Extract(ctx context.Context, u Unit) (*frame.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(u.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	if e.Comma != 0 {
		cr.Comma = e.Comma
	}
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", u.Path, err)
	}
	if len(recs) < 2 || len(recs[0]) < 2 {
		return nil, fmt.Errorf("%s: no feature rows", u.Path)
	}

	labels := make([]string, 0, len(recs)-1)
	data := make([][]any, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		labels = append(labels, rec[0])
		row := make([]any, len(rec)-1)
		for j, cell := range rec[1:] {
			row[j] = parseCell(cell)
		}
		data = append(data, row)
	}
	return frame.NewTable(frame.FlatIndex(labels...), frame.FlatIndex(recs[0][1:]...), data)
}

func parseCell(s string) any {
	if v, err := frame.ParseValue(s, frame.Int64); err == nil {
		return v
	}
	if v, err := frame.ParseValue(s, frame.Float64); err == nil {
		return v
	}
	return s
}
