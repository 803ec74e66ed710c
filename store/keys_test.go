package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/h5frame/frame"
)

func TestKeys(t *testing.T) {
	s := newStore(t)
	h, err := s.Open()
	require.NoError(t, err)
	for _, key := range []string{"1001", "1002", "batch/2001", "batch/deep/2002"} {
		require.NoError(t, s.PushTable(sampleTable(t), key, WithHandle(h)))
	}
	require.NoError(t, s.RecordFailures(nil, WithHandle(h)))
	require.NoError(t, h.Close())

	all, err := s.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"1001", "1002", "batch/2001", "batch/deep/2002"}, all)

	top, err := s.Keys("*")
	require.NoError(t, err)
	assert.Equal(t, []string{"1001", "1002"}, top)

	deep, err := s.Keys("batch/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"batch/2001", "batch/deep/2002"}, deep)
}

func TestMerge(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.PushTable(sampleTable(t), "a"))
	single, err := frame.NewTable(frame.FlatIndex("r"), frame.FlatIndex("meanFL1", "meanFL2"), [][]any{{5.0, 6.0}})
	require.NoError(t, err)
	require.NoError(t, s.PushTable(single, "b"))

	_, err = s.Merge([]string{"a", "b"})
	assert.ErrorIs(t, err, frame.ErrShapeMismatch, "row label widths differ")

	require.NoError(t, s.PushTable(sampleTable(t), "c"))
	merged, err := s.Merge([]string{"a", "c"}, WithDType(frame.Float64))
	require.NoError(t, err)
	rows, cols := merged.Shape()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []string{"a", "CASE1", "T1"}, merged.Index.At(0).Parts())
	assert.Equal(t, []string{"c", "CASE1", "T2"}, merged.Index.At(3).Parts())
	assert.Equal(t, 4.0, merged.At(3, 1))

	_, err = s.Merge(nil)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = s.Merge([]string{"a", "missing"})
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
