package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileList is a MetadataStore read from a tab-separated file of
// case, sub-unit and relative path columns. Blank lines and lines starting
// with '#' are ignored.
type FileList struct {
	Path string
}

// Query implements MetadataStore.
func (l FileList) Query(ctx context.Context) (map[string]map[string]string, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file list: %w", err)
	}
	defer f.Close()
	return ParseFileList(f)
}

// ParseFileList reads file list records from r.
func ParseFileList(r io.Reader) (map[string]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = 3

	out := make(map[string]map[string]string)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse file list: %w", err)
		}
		c, sub, rel := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), strings.TrimSpace(rec[2])
		if c == "" || sub == "" || rel == "" {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("file list line %d: empty field", line)
		}
		if out[c] == nil {
			out[c] = make(map[string]string)
		}
		if prev, dup := out[c][sub]; dup {
			return nil, fmt.Errorf("file list: %s/%s listed twice (%s, %s)", c, sub, prev, rel)
		}
		out[c][sub] = rel
	}
	return out, nil
}
