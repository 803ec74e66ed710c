package frame

import (
	"fmt"
	"strings"
)

// LabelKind distinguishes flat labels from composite ones.
type LabelKind uint8

const (
	KindFlat LabelKind = iota
	KindComposite
)

func (k LabelKind) String() string {
	if k == KindComposite {
		return "composite"
	}
	return "flat"
}

// ParseLabelKind is the inverse of LabelKind.String.
func ParseLabelKind(s string) (LabelKind, error) {
	switch s {
	case "flat":
		return KindFlat, nil
	case "composite":
		return KindComposite, nil
	}
	return 0, fmt.Errorf("unknown label kind %q", s)
}

// Label identifies one row or column.
type Label struct {
	parts     []string
	composite bool
}

// Flat returns a single-string label.
func Flat(s string) Label {
	return Label{parts: []string{s}}
}

// Composite returns a multi-level label with one part per level.
func Composite(parts ...string) Label {
	p := make([]string, len(parts))
	copy(p, parts)
	return Label{parts: p, composite: true}
}

func (l Label) Kind() LabelKind {
	if l.composite {
		return KindComposite
	}
	return KindFlat
}

// Parts returns the label's components; a flat label has exactly one.
func (l Label) Parts() []string {
	if len(l.parts) == 0 {
		return []string{""}
	}
	return l.parts
}

// Width is the number of parts.
func (l Label) Width() int {
	return len(l.Parts())
}

// String returns the flat text, or "(a, b)" for a composite label.
func (l Label) String() string {
	if !l.composite {
		return l.Parts()[0]
	}
	return "(" + strings.Join(l.parts, ", ") + ")"
}

func (l Label) Equal(o Label) bool {
	if l.composite != o.composite || l.Width() != o.Width() {
		return false
	}
	a, b := l.Parts(), o.Parts()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Index is an ordered sequence of labels of one kind and width.
// The zero value is an empty flat index.
type Index struct {
	labels []Label
	kind   LabelKind
	width  int
}

// NewIndex builds an index from labels, which must all share a kind and,
// when composite, a width.
func NewIndex(labels ...Label) (Index, error) {
	if len(labels) == 0 {
		return Index{}, nil
	}
	ix := Index{labels: make([]Label, len(labels)), kind: labels[0].Kind(), width: labels[0].Width()}
	for i, l := range labels {
		if l.Kind() != ix.kind {
			return Index{}, fmt.Errorf("%w: label %d is %s, index is %s", ErrShapeMismatch, i, l.Kind(), ix.kind)
		}
		if l.Width() != ix.width {
			return Index{}, fmt.Errorf("%w: label %d has width %d, want %d", ErrShapeMismatch, i, l.Width(), ix.width)
		}
		ix.labels[i] = l
	}
	return ix, nil
}

// FlatIndex returns an index of flat labels.
func FlatIndex(names ...string) Index {
	ix := Index{labels: make([]Label, len(names)), width: 1}
	for i, n := range names {
		ix.labels[i] = Flat(n)
	}
	return ix
}

// CompositeIndex returns an index with one composite label per tuple.
func CompositeIndex(tuples ...[]string) (Index, error) {
	labels := make([]Label, len(tuples))
	for i, t := range tuples {
		labels[i] = Composite(t...)
	}
	return NewIndex(labels...)
}

// IndexFromLevels rebuilds a composite index from per-level arrays:
// level k holds part k of every label. All levels must have equal length.
func IndexFromLevels(levels [][]string) (Index, error) {
	if len(levels) == 0 {
		return Index{}, fmt.Errorf("%w: no levels", ErrShapeMismatch)
	}
	n := len(levels[0])
	for k, lv := range levels {
		if len(lv) != n {
			return Index{}, fmt.Errorf("%w: level %d has %d labels, want %d", ErrShapeMismatch, k, len(lv), n)
		}
	}
	ix := Index{labels: make([]Label, n), kind: KindComposite, width: len(levels)}
	for i := range ix.labels {
		parts := make([]string, len(levels))
		for k := range levels {
			parts[k] = levels[k][i]
		}
		ix.labels[i] = Label{parts: parts, composite: true}
	}
	return ix, nil
}

func (ix Index) Len() int { return len(ix.labels) }

func (ix Index) Kind() LabelKind { return ix.kind }

// Width is the number of parts per label, 1 for a flat index.
func (ix Index) Width() int {
	if ix.width == 0 {
		return 1
	}
	return ix.width
}

func (ix Index) At(i int) Label { return ix.labels[i] }

// Labels returns a copy of the labels.
func (ix Index) Labels() []Label {
	out := make([]Label, len(ix.labels))
	copy(out, ix.labels)
	return out
}

// Strings returns the text of every label.
func (ix Index) Strings() []string {
	out := make([]string, len(ix.labels))
	for i, l := range ix.labels {
		out[i] = l.String()
	}
	return out
}

// Rows returns the parts of every label, one row per label.
func (ix Index) Rows() [][]string {
	out := make([][]string, len(ix.labels))
	for i, l := range ix.labels {
		out[i] = l.Parts()
	}
	return out
}

// Levels returns the per-level arrays of the index; a flat index has a
// single level.
func (ix Index) Levels() [][]string {
	w := ix.Width()
	out := make([][]string, w)
	for k := range out {
		out[k] = make([]string, len(ix.labels))
		for i, l := range ix.labels {
			out[k][i] = l.Parts()[k]
		}
	}
	return out
}

// Lookup returns the position of the first label equal to l, or -1.
func (ix Index) Lookup(l Label) int {
	for i, x := range ix.labels {
		if x.Equal(l) {
			return i
		}
	}
	return -1
}

func (ix Index) Equal(o Index) bool {
	if ix.Len() != o.Len() || ix.Kind() != o.Kind() || ix.Width() != o.Width() {
		return false
	}
	for i := range ix.labels {
		if !ix.labels[i].Equal(o.labels[i]) {
			return false
		}
	}
	return true
}
