package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabels(t *testing.T) {
	f := Flat("meanFL1")
	assert.Equal(t, KindFlat, f.Kind())
	assert.Equal(t, 1, f.Width())
	assert.Equal(t, "meanFL1", f.String())

	c := Composite("CASE1", "T1")
	assert.Equal(t, KindComposite, c.Kind())
	assert.Equal(t, []string{"CASE1", "T1"}, c.Parts())
	assert.True(t, c.Equal(Composite("CASE1", "T1")))
	assert.False(t, c.Equal(Composite("CASE1", "T2")))
	assert.False(t, Flat("x").Equal(Composite("x")))

	k, err := ParseLabelKind(c.Kind().String())
	require.NoError(t, err)
	assert.Equal(t, KindComposite, k)
	_, err = ParseLabelKind("nested")
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	ix, err := CompositeIndex([]string{"CASE1", "T1"}, []string{"CASE1", "T2"})
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, KindComposite, ix.Kind())
	assert.Equal(t, 2, ix.Width())
	assert.Equal(t, [][]string{{"CASE1", "CASE1"}, {"T1", "T2"}}, ix.Levels())
	assert.Equal(t, 1, ix.Lookup(Composite("CASE1", "T2")))
	assert.Equal(t, -1, ix.Lookup(Flat("T2")))

	back, err := IndexFromLevels(ix.Levels())
	require.NoError(t, err)
	assert.True(t, back.Equal(ix))

	_, err = CompositeIndex([]string{"a", "b"}, []string{"c"})
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = NewIndex(Flat("a"), Composite("b", "c"))
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = IndexFromLevels([][]string{{"a", "b"}, {"c"}})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	flat := FlatIndex("x", "y")
	assert.Equal(t, [][]string{{"x", "y"}}, flat.Levels())
	assert.Equal(t, []string{"x", "y"}, flat.Strings())
	assert.True(t, Index{}.Equal(FlatIndex()))
}

func TestSeries(t *testing.T) {
	s, err := NewSeries("counts", FlatIndex("a", "b"), []any{1, 2}, "")
	require.NoError(t, err)
	assert.Equal(t, Int64, s.DType)

	text, err := s.Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, text)

	f, err := s.Cast(Float64)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0}, f.Values)

	_, err = NewSeries("bad", FlatIndex("a"), []any{1, 2}, Int64)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestTable(t *testing.T) {
	ix, _ := CompositeIndex([]string{"CASE1", "T1"}, []string{"CASE1", "T2"})
	tbl, err := NewTable(ix, FlatIndex("meanFL1", "meanFL2"), [][]any{{1.0, 2.0}, {3.0, 4.0}})
	require.NoError(t, err)

	rows, cols := tbl.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, Float64, tbl.DType())
	assert.Equal(t, []any{2.0, 4.0}, tbl.Column(1))
	assert.Equal(t, 3.0, tbl.At(1, 0))
	assert.Equal(t, "(CASE1, T2)", tbl.Row(1).Name)

	text, err := tbl.Strings()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1.0", "2.0"}, {"3.0", "4.0"}}, text)

	_, err = NewTable(ix, FlatIndex("only"), [][]any{{1.0, 2.0}, {3.0, 4.0}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = NewTable(FlatIndex("r"), FlatIndex("c"), nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestConcat(t *testing.T) {
	cols := FlatIndex("m1", "m2")
	a, _ := NewTable(FlatIndex("r1"), cols, [][]any{{"1", "2"}})
	b, _ := NewTable(FlatIndex("r1", "r2"), cols, [][]any{{"3", "4"}, {"5", "6"}})

	out, err := Concat([]string{"k1", "k2"}, []*Table{a, b})
	require.NoError(t, err)
	rows, _ := out.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, [][]string{{"k1", "k2", "k2"}, {"r1", "r1", "r2"}}, out.Index.Levels())

	c, _ := NewTable(FlatIndex("r1"), FlatIndex("other", "m2"), [][]any{{"1", "2"}})
	_, err = Concat([]string{"k1", "k3"}, []*Table{a, c})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
