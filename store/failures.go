package store

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/robert-malhotra/h5frame/frame"
	"github.com/robert-malhotra/h5frame/hdf5"
)

// FailureKey is the logical key reserved for the failure log.
const FailureKey = "failed_case_tube_idx"

// FailureColumns are the column labels of the failure log.
var FailureColumns = []string{"case_number", "case_tube_idx", "error_message"}

// placeholder fills the single row written when nothing failed.
const placeholder = "NaN"

// Failure records one unit that could not be processed.
type Failure struct {
	Case    string
	SubUnit string
	Message string
}

// FailureLog accumulates failures during a run. It is safe for concurrent
// use.
type FailureLog struct {
	mu      sync.Mutex
	records []Failure
}

// Add records a failure for the given case and sub-unit.
func (l *FailureLog) Add(caseID, subUnit string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, Failure{Case: caseID, SubUnit: subUnit, Message: msg})
}

func (l *FailureLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Records returns a copy of the recorded failures.
func (l *FailureLog) Records() []Failure {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Failure, len(l.records))
	copy(out, l.records)
	return out
}

// FailureTable builds the failure log table. With no records it holds a
// single row of "NaN" placeholders so the stored table is never empty.
func FailureTable(records []Failure) *frame.Table {
	if len(records) == 0 {
		return &frame.Table{
			Index:   frame.FlatIndex("0"),
			Columns: frame.FlatIndex(FailureColumns...),
			Data:    [][]any{{placeholder, placeholder, placeholder}},
		}
	}
	labels := make([]string, len(records))
	data := make([][]any, len(records))
	for i, r := range records {
		labels[i] = strconv.Itoa(i)
		data[i] = []any{r.Case, r.SubUnit, r.Message}
	}
	return &frame.Table{
		Index:   frame.FlatIndex(labels...),
		Columns: frame.FlatIndex(FailureColumns...),
		Data:    data,
	}
}

// RecordFailures writes the failure log under [FailureKey], replacing any
// earlier log. [WithRunID] stores the run id as a run_id attribute.
func (s *Store) RecordFailures(records []Failure, opts ...CallOption) error {
	c := newCallOptions(opts)
	c.encoding = EncodingText

	var extra []hdf5.DatasetOption
	if c.runID != "" {
		extra = append(extra, hdf5.WithAttribute(attrRunID, c.runID))
	}
	if len(records) == 0 {
		extra = append(extra, hdf5.WithAttribute(attrEmptyLog, 1))
	}
	if err := s.pushTable(FailureTable(records), FailureKey, c, extra...); err != nil {
		return fmt.Errorf("recording failures: %w", err)
	}
	if len(records) == 0 {
		s.opts.logger.Info("nothing failed")
	} else {
		s.opts.logger.Info("recorded failures", "count", len(records), "cases", distinctCases(records))
	}
	return nil
}

func distinctCases(records []Failure) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !seen[r.Case] {
			seen[r.Case] = true
			out = append(out, r.Case)
		}
	}
	return out
}

// FailureReport is a failure log read back from a container.
type FailureReport struct {
	RunID   string
	Records []Failure
}

// PullFailures reads the failure log. A log written with no records is
// marked by a placeholder attribute on data and yields no records.
func (s *Store) PullFailures(opts ...CallOption) (*FailureReport, error) {
	c := newCallOptions(opts)
	report := &FailureReport{}
	err := s.with(c, false, func(h *Handle) error {
		t, err := pullTable(h, FailureKey, frame.Object)
		if err != nil {
			return err
		}
		cols := make([]int, len(FailureColumns))
		for k, name := range FailureColumns {
			if cols[k] = t.Columns.Lookup(frame.Flat(name)); cols[k] < 0 {
				return fmt.Errorf("%w: failure log has no %q column", ErrShapeMismatch, name)
			}
		}
		data := PathFor(FailureKey, SubkeyData)
		if a, err := h.file.GetAttr(hdf5.JoinAttrPath(data, attrRunID)); err == nil {
			report.RunID, _ = a.ReadScalarString()
		}
		if _, err := h.file.GetAttr(hdf5.JoinAttrPath(data, attrEmptyLog)); err == nil {
			return nil
		}

		for i := range t.Data {
			report.Records = append(report.Records, Failure{
				Case:    t.At(i, cols[0]).(string),
				SubUnit: t.At(i, cols[1]).(string),
				Message: t.At(i, cols[2]).(string),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
