package store

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/h5frame/frame"
)

func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "features.h5"), opts...)
	require.NoError(t, err)
	return s
}

func sampleTable(t *testing.T) *frame.Table {
	t.Helper()
	ix, err := frame.CompositeIndex([]string{"CASE1", "T1"}, []string{"CASE1", "T2"})
	require.NoError(t, err)
	tbl, err := frame.NewTable(ix, frame.FlatIndex("meanFL1", "meanFL2"), [][]any{{1.0, 2.0}, {3.0, 4.0}})
	require.NoError(t, err)
	return tbl
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "/case_tube_idx/feature_block/index", PathFor("case_tube_idx/feature_block", SubkeyIndex))
	assert.Equal(t, "/1234/data", PathFor("1234", SubkeyData))
	assert.Equal(t, "/abs/dtype", PathFor("/abs", SubkeyDType))
	assert.Equal(t, "/k", PathFor("k", ""))
}

func TestOpenCreatesAndAppends(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.h5")

	h, err := Open(p, false)
	require.NoError(t, err)
	assert.True(t, h.Writable())
	assert.Equal(t, p, h.Path())
	require.NoError(t, h.Close())
	require.NoError(t, h.Close(), "second close is a no-op")
	assert.True(t, h.Closed())
	assert.False(t, h.Writable())

	h, err = Open(p, false)
	require.NoError(t, err)
	require.NoError(t, h.Close())
}

func TestClobberRemovesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	p := filepath.Join(t.TempDir(), "c.h5")

	s, err := New(p)
	require.NoError(t, err)
	require.NoError(t, s.PushTable(sampleTable(t), "old"))

	h, err := Open(p, true, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, h.Close())
	assert.Contains(t, buf.String(), "clobbering container")
	assert.Contains(t, buf.String(), p)

	_, err = s.PullTable("old")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.PushTable(sampleTable(t), "old"))
	s2, err := New(p, WithClobber(true))
	require.NoError(t, err)
	_, err = s2.PullTable("old")
	assert.ErrorIs(t, err, ErrIO, "clobbered container no longer exists")
}

func TestOpenFailures(t *testing.T) {
	_, err := OpenReadOnly(filepath.Join(t.TempDir(), "missing.h5"))
	assert.ErrorIs(t, err, ErrIO)

	dir := t.TempDir()
	_, err = Open(filepath.Join(dir, "no", "such", "dir", "c.h5"), false)
	assert.ErrorIs(t, err, ErrIO)

	notContainer := filepath.Join(dir, "text.h5")
	require.NoError(t, os.WriteFile(notContainer, []byte("hello"), 0o644))
	_, err = Open(notContainer, false)
	assert.ErrorIs(t, err, ErrIO)
}

func TestExternalHandleReuse(t *testing.T) {
	s := newStore(t)
	h, err := s.Open()
	require.NoError(t, err)

	require.NoError(t, s.PushTable(sampleTable(t), "a", WithHandle(h)))
	require.NoError(t, s.PushTable(sampleTable(t), "b", WithHandle(h)))
	require.True(t, h.Writable(), "codec must not close a supplied handle")

	sr, err := frame.NewSeries("s", frame.FlatIndex("x"), []any{int64(1)}, frame.Int64)
	require.NoError(t, err)
	require.NoError(t, s.PushSeries(sr, "c", WithHandle(h)))

	got, err := s.PullTable("a", WithHandle(h))
	require.NoError(t, err)
	assert.Equal(t, 2, got.Index.Len())
	require.NoError(t, h.Close())

	ro, err := s.OpenReadOnly()
	require.NoError(t, err)
	defer ro.Close()
	for _, key := range []string{"a", "b"} {
		_, err := s.PullTable(key, WithHandle(ro))
		assert.NoError(t, err, key)
	}
	assert.False(t, ro.Closed())

	err = s.PushTable(sampleTable(t), "d", WithHandle(ro))
	assert.ErrorIs(t, err, ErrIO, "push through read-only handle")
	err = s.PushTable(sampleTable(t), "d", WithHandle(h))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestParseEncoding(t *testing.T) {
	e, err := ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, EncodingText, e)
	e, err = ParseEncoding("typed")
	require.NoError(t, err)
	assert.Equal(t, EncodingTyped, e)
	_, err = ParseEncoding("binary")
	assert.Error(t, err)
}

func TestBatchedPushesRetireNothing(t *testing.T) {
	s := newStore(t)
	h, err := s.Open()
	require.NoError(t, err)
	for i := range 20 {
		require.NoError(t, s.PushTable(sampleTable(t), fmt.Sprintf("key%02d", i), WithHandle(h)))
	}
	assert.Zero(t, h.File().AllocStats().RetiredBytes, "groups are rewritten once, on close")
	require.NoError(t, h.Close())

	keys, err := s.Keys("*")
	require.NoError(t, err)
	assert.Len(t, keys, 20)
}
