package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/h5frame/frame"
	"github.com/robert-malhotra/h5frame/store"
)

type staticMetadata map[string]map[string]string

func (m staticMetadata) Query(context.Context) (map[string]map[string]string, error) {
	return m, nil
}

type failingMetadata struct{}

func (failingMetadata) Query(context.Context) (map[string]map[string]string, error) {
	return nil, errors.New("db unavailable")
}

// fakeExtractor returns a one-row table per unit, or an error for units
// listed in fail.
type fakeExtractor struct {
	fail  map[string]bool
	seen  []Unit
	after func()
}

func (e *fakeExtractor) Extract(_ context.Context, u Unit) (*frame.Table, error) {
	e.seen = append(e.seen, u)
	if e.after != nil {
		defer e.after()
	}
	if e.fail[u.SubUnit] {
		return nil, errors.New("bad fcs file")
	}
	return frame.NewTable(frame.FlatIndex(u.SubUnit), frame.FlatIndex("events"), [][]any{{int64(len(u.Path))}})
}

func newRunner(t *testing.T, md MetadataStore, ex Extractor) (*Runner, *store.Store) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "features.h5"))
	require.NoError(t, err)
	r, err := New(Config{Store: s, Metadata: md, Extractor: ex, DataDir: "/data"})
	require.NoError(t, err)
	return r, s
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
	s, err := store.New(filepath.Join(t.TempDir(), "x.h5"))
	require.NoError(t, err)
	_, err = New(Config{Store: s, Metadata: staticMetadata{}})
	assert.ErrorContains(t, err, "extractor")
}

func TestUnitsSortedAndJoined(t *testing.T) {
	r, _ := newRunner(t, staticMetadata{
		"C2": {"12": "c2/t12.fcs"},
		"C1": {"11": "c1/t11.fcs", "10": "c1/t10.fcs"},
	}, &fakeExtractor{})

	units, err := r.Units(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Unit{
		{Case: "C1", SubUnit: "10", Path: "/data/c1/t10.fcs"},
		{Case: "C1", SubUnit: "11", Path: "/data/c1/t11.fcs"},
		{Case: "C2", SubUnit: "12", Path: "/data/c2/t12.fcs"},
	}, units)
}

func TestRunRecordsFailuresAndContinues(t *testing.T) {
	ex := &fakeExtractor{fail: map[string]bool{"11": true}}
	r, s := newRunner(t, staticMetadata{
		"C1": {"10": "a.fcs", "11": "b.fcs"},
		"C2": {"12": "c.fcs"},
	}, ex)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Units)
	assert.Equal(t, 2, res.Pushed)
	assert.Len(t, ex.seen, 3, "a failing unit must not stop the run")
	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, store.Failure{Case: "C1", SubUnit: "11", Message: "bad fcs file"}, res.Failures[0])

	keys, err := s.Keys("*")
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "12"}, keys)

	report, err := s.PullFailures()
	require.NoError(t, err)
	assert.Equal(t, res.RunID, report.RunID)
	assert.Equal(t, res.Failures, report.Records)
}

func TestRunWithoutFailuresWritesPlaceholder(t *testing.T) {
	r, s := newRunner(t, staticMetadata{"C1": {"10": "a.fcs"}}, &fakeExtractor{})
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Failures)

	h, err := s.OpenReadOnly()
	require.NoError(t, err)
	defer h.Close()
	assert.True(t, h.File().Exists(store.PathFor(store.FailureKey, store.SubkeyData)))

	report, err := s.PullFailures(store.WithHandle(h))
	require.NoError(t, err)
	assert.Empty(t, report.Records)
	assert.Equal(t, res.RunID, report.RunID)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ex := &fakeExtractor{after: cancel}
	r, s := newRunner(t, staticMetadata{"C1": {"10": "a", "11": "b", "12": "c"}}, ex)

	res, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Pushed)
	assert.Len(t, ex.seen, 1)

	report, err := s.PullFailures()
	require.NoError(t, err, "failures are written even when cancelled")
	assert.Equal(t, res.RunID, report.RunID)
}

func TestRunMetadataError(t *testing.T) {
	r, _ := newRunner(t, failingMetadata{}, &fakeExtractor{})
	_, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "db unavailable")
}

func TestParseFileList(t *testing.T) {
	in := strings.Join([]string{
		"# case\ttube\tpath",
		"C1\t10\tc1/a.fcs",
		"C1\t11\tc1/b.fcs",
		"",
		"C2\t12\tc2/c.fcs",
	}, "\n")
	got, err := ParseFileList(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]string{
		"C1": {"10": "c1/a.fcs", "11": "c1/b.fcs"},
		"C2": {"12": "c2/c.fcs"},
	}, got)
}

func TestParseFileListErrors(t *testing.T) {
	tests := map[string]string{
		"wrong field count": "C1\t10\n",
		"duplicate unit":    "C1\t10\ta\nC1\t10\tb\n",
		"empty field":       "C1\t\ta\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFileList(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestFileListQuery(t *testing.T) {
	p := filepath.Join(t.TempDir(), "files.tsv")
	require.NoError(t, os.WriteFile(p, []byte("C1\t10\ta.fcs\n"), 0o644))
	got, err := FileList{Path: p}.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a.fcs", got["C1"]["10"])

	_, err = FileList{Path: filepath.Join(t.TempDir(), "missing.tsv")}.Query(context.Background())
	assert.ErrorContains(t, err, "failed to open file list")
}

func TestCSVExtractor(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "features.csv")
	csv := "marker,mean,count,note\nCD3,1.5,10,ok\nCD4,2,20,low\n"
	require.NoError(t, os.WriteFile(p, []byte(csv), 0o644))

	tbl, err := CSVExtractor{}.Extract(context.Background(), Unit{Case: "C1", SubUnit: "10", Path: p})
	require.NoError(t, err)
	assert.Equal(t, []string{"CD3", "CD4"}, tbl.Index.Strings())
	assert.Equal(t, []string{"mean", "count", "note"}, tbl.Columns.Strings())
	assert.Equal(t, [][]any{{1.5, int64(10), "ok"}, {int64(2), int64(20), "low"}}, tbl.Data)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("marker,mean\n"), 0o644))
	_, err = CSVExtractor{}.Extract(context.Background(), Unit{Path: empty})
	assert.ErrorContains(t, err, "no feature rows")

	_, err = CSVExtractor{}.Extract(context.Background(), Unit{Path: filepath.Join(dir, "nope.csv")})
	assert.Error(t, err)
}
