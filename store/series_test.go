package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/h5frame/frame"
	"github.com/robert-malhotra/h5frame/hdf5"
)

func TestSeriesRoundTripUsesStoredDType(t *testing.T) {
	s := newStore(t)
	sr, err := frame.NewSeries("fl", frame.FlatIndex("a", "b", "c"), []any{1.5, 2.0, 1e-05}, "")
	require.NoError(t, err)
	require.NoError(t, s.PushSeries(sr, "case/tube"))

	got, err := s.PullSeries("case/tube")
	require.NoError(t, err)
	assert.Equal(t, frame.Float64, got.DType)
	assert.Equal(t, []any{1.5, 2.0, 1e-05}, got.Values)
	assert.Equal(t, []string{"a", "b", "c"}, got.Index.Strings())

	f, err := hdf5.Open(s.Path())
	require.NoError(t, err)
	defer f.Close()
	ds, err := f.OpenDataset(PathFor("case/tube", SubkeyData))
	require.NoError(t, err)
	text, err := ds.ReadStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"1.5", "2.0", "1e-05"}, text)
	dt, err := f.OpenDataset(PathFor("case/tube", SubkeyDType))
	require.NoError(t, err)
	assert.True(t, dt.IsScalar())
}

func TestSeriesDTypeOverride(t *testing.T) {
	s := newStore(t)
	sr, err := frame.NewSeries("n", frame.FlatIndex("a", "b"), []any{1, 2}, "")
	require.NoError(t, err)
	require.NoError(t, s.PushSeries(sr, "k"))

	got, err := s.PullSeries("k", WithDType(frame.Float64))
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0}, got.Values)

	got, err = s.PullSeries("k", WithDType(frame.Object))
	require.NoError(t, err)
	assert.Equal(t, []any{"1", "2"}, got.Values)

	_, err = s.PullSeries("k", WithDType(frame.Datetime))
	assert.ErrorIs(t, err, ErrTypeCoercion)
}

func TestSeriesDatetimeAndBool(t *testing.T) {
	s := newStore(t)
	ts := time.Date(2015, 1, 9, 15, 22, 34, 0, time.UTC)
	sr, err := frame.NewSeries("d", frame.FlatIndex("x"), []any{ts}, "")
	require.NoError(t, err)
	require.NoError(t, s.PushSeries(sr, "dates"))
	got, err := s.PullSeries("dates")
	require.NoError(t, err)
	assert.Equal(t, frame.Datetime, got.DType)
	assert.Equal(t, ts, got.Values[0])

	sr, err = frame.NewSeries("b", frame.FlatIndex("x", "y"), []any{true, false}, "")
	require.NoError(t, err)
	require.NoError(t, s.PushSeries(sr, "flags"))
	got, err = s.PullSeries("flags")
	require.NoError(t, err)
	assert.Equal(t, []any{true, false}, got.Values)
}

func TestSeriesWithoutStoredDTypeDefaultsToInt64(t *testing.T) {
	s := newStore(t)
	f, err := hdf5.Create(s.Path())
	require.NoError(t, err)
	g, err := f.RequireGroup("legacy")
	require.NoError(t, err)
	_, err = g.CreateDataset(SubkeyIndex, []string{"0", "1"})
	require.NoError(t, err)
	_, err = g.CreateDataset(SubkeyData, []string{"10", "20"})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err := s.PullSeries("legacy")
	require.NoError(t, err)
	assert.Equal(t, frame.Int64, got.DType)
	assert.Equal(t, []any{int64(10), int64(20)}, got.Values)
}

func TestSeriesShapeMismatch(t *testing.T) {
	s := newStore(t)
	sr := &frame.Series{Name: "bad", Index: frame.FlatIndex("a"), Values: []any{1, 2}}
	err := s.PushSeries(sr, "bad")
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = s.PullSeries("bad")
	assert.ErrorIs(t, err, ErrIO, "nothing was written, not even the container")
}

func TestSeriesTypedEncoding(t *testing.T) {
	s := newStore(t, WithEncoding(EncodingTyped))
	sr, err := frame.NewSeries("n", frame.FlatIndex("a", "b"), []any{int64(7), int64(8)}, frame.Int64)
	require.NoError(t, err)
	require.NoError(t, s.PushSeries(sr, "typed"))

	f, err := hdf5.Open(s.Path())
	require.NoError(t, err)
	ds, err := f.OpenDataset(PathFor("typed", SubkeyData))
	require.NoError(t, err)
	assert.Equal(t, hdf5.KindInteger, ds.Kind())
	enc, err := ds.Attr("encoding").ReadScalarString()
	require.NoError(t, err)
	assert.Equal(t, "typed", enc)
	require.NoError(t, f.Close())

	got, err := s.PullSeries("typed")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(7), int64(8)}, got.Values)
}

func TestPullMissingSeries(t *testing.T) {
	s := newStore(t)
	sr, _ := frame.NewSeries("n", frame.FlatIndex("a"), []any{1}, "")
	require.NoError(t, s.PushSeries(sr, "present"))

	_, err := s.PullSeries("absent")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = s.PullSeries("present/index")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestStringsRoundTripExactly(t *testing.T) {
	s := newStore(t)
	sr, err := frame.NewSeries("s", frame.FlatIndex("", "ünï", "trail  "), []any{"", "日本", " sp "}, frame.Object)
	require.NoError(t, err)
	require.NoError(t, s.PushSeries(sr, "text"))

	got, err := s.PullSeries("text")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "ünï", "trail  "}, got.Index.Strings())
	assert.Equal(t, []any{"", "日本", " sp "}, got.Values)
}

func TestNULBytesRejectedOnPush(t *testing.T) {
	s := newStore(t)

	sr, err := frame.NewSeries("s", frame.FlatIndex("a", "x\x00y"), []any{"1", "2"}, frame.Object)
	require.NoError(t, err)
	assert.ErrorIs(t, s.PushSeries(sr, "bad-index"), ErrTypeCoercion)

	sr, err = frame.NewSeries("s", frame.FlatIndex("a"), []any{"b\x00"}, frame.Object)
	require.NoError(t, err)
	assert.ErrorIs(t, s.PushSeries(sr, "bad-values"), ErrTypeCoercion)

	tbl, err := frame.NewTable(frame.FlatIndex("r"), frame.FlatIndex("c\x00"), [][]any{{1}})
	require.NoError(t, err)
	assert.ErrorIs(t, s.PushTable(tbl, "bad-columns"), ErrTypeCoercion)

	ix, err := frame.CompositeIndex([]string{"CASE1", "T\x001"})
	require.NoError(t, err)
	tbl, err = frame.NewTable(ix, frame.FlatIndex("c"), [][]any{{1}})
	require.NoError(t, err)
	assert.ErrorIs(t, s.PushTable(tbl, "bad-composite"), ErrTypeCoercion)

	_, err = s.PullSeries("bad-index")
	assert.Error(t, err, "nothing is written for a rejected push")
}

func TestSeriesReplacesTable(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.PushTable(sampleTable(t), "k"))

	sr, err := frame.NewSeries("k", frame.FlatIndex("a"), []any{int64(7)}, "")
	require.NoError(t, err)
	require.NoError(t, s.PushSeries(sr, "k"))

	f, err := hdf5.Open(s.Path())
	require.NoError(t, err)
	assert.False(t, f.Exists(PathFor("k", SubkeyColumns)), "stale columns must be removed")
	require.NoError(t, f.Close())

	got, err := s.PullSeries("k")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(7)}, got.Values)

	require.NoError(t, s.PushTable(sampleTable(t), "k"))
	f, err = hdf5.Open(s.Path())
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, f.Exists(PathFor("k", SubkeyDType)), "stale dtype must be removed")
}
