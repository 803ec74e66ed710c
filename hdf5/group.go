package hdf5

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/robert-malhotra/h5frame/internal/dtype"
	"github.com/robert-malhotra/h5frame/internal/message"
	"github.com/robert-malhotra/h5frame/internal/object"
)

// Group represents an HDF5 group.
type Group struct {
	file  *File
	path  string
	links []*message.Link
	attrs []*message.Attribute

	// Write support fields
	addr   uint64 // Object header address; undefined until first flush
	size   uint64 // On-disk header size, retired when the group is rewritten
	legacy bool   // Symbol-table group, never rewritten
	dirty  bool
}

// Name returns the group name (last component of path).
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return path.Base(g.path)
}

// Path returns the full path to this group.
func (g *Group) Path() string {
	return g.path
}

// OpenGroup opens a subgroup by relative path.
func (g *Group) OpenGroup(rel string) (*Group, error) {
	if g.file.closed {
		return nil, ErrClosed
	}
	return g.file.openGroupPath(path.Join(g.path, rel))
}

// OpenDataset opens a dataset by relative path.
func (g *Group) OpenDataset(rel string) (*Dataset, error) {
	if g.file.closed {
		return nil, ErrClosed
	}
	full := path.Join(g.path, rel)
	parentPath, name := splitParent(full)
	parent := g
	if parentPath != g.path {
		var err error
		if parent, err = g.file.openGroupPath(parentPath); err != nil {
			return nil, err
		}
	}

	l := parent.link(name)
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, full)
	}
	if g.file.reader.IsUndefinedOffset(l.ObjectAddress) {
		return nil, fmt.Errorf("%w: %s", ErrNotDataset, full)
	}
	hdr, err := object.Read(g.file.reader, l.ObjectAddress)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", full, err)
	}
	if !hdr.IsDataset() {
		return nil, fmt.Errorf("%w: %s", ErrNotDataset, full)
	}
	return newDataset(g.file, full, hdr)
}

// Members returns the sorted names of all members (groups and datasets).
func (g *Group) Members() ([]string, error) {
	if g.file.closed {
		return nil, ErrClosed
	}
	return sortedNames(g.links), nil
}

// NumObjects returns the number of objects in this group.
func (g *Group) NumObjects() int {
	return len(g.links)
}

// CreateGroup creates an empty subgroup. The group is written on the next
// flush.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if err := g.checkWritable(); err != nil {
		return nil, err
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	if g.link(name) != nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, path.Join(g.path, name))
	}

	child := &Group{
		file:  g.file,
		path:  path.Join(g.path, name),
		addr:  g.file.writer.UndefinedOffset(),
		dirty: true,
	}
	g.setLink(name, child.addr)
	g.file.groups[child.path] = child
	return child, nil
}

// RequireGroup returns the named subgroup, creating it when missing.
func (g *Group) RequireGroup(name string) (*Group, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if g.link(name) != nil {
		return g.OpenGroup(name)
	}
	return g.CreateGroup(name)
}

// SetAttr sets an attribute on the group, replacing any attribute with the
// same name. See [WithAttribute] for accepted values.
func (g *Group) SetAttr(name string, value any) error {
	if err := g.checkWritable(); err != nil {
		return err
	}
	a, err := encodeAttribute(name, value)
	if err != nil {
		return err
	}
	for i, old := range g.attrs {
		if old.Name == name {
			g.attrs[i] = a
			g.dirty = true
			return nil
		}
	}
	g.attrs = append(g.attrs, a)
	g.dirty = true
	return nil
}

// CreateDataset writes a dataset and links it into the group. data may be
// a string, int, int64 or float64 scalar, a []string, []int64 or []float64,
// or a rectangular [][]string, [][]int64 or [][]float64. An existing
// dataset with the same name is replaced.
func (g *Group) CreateDataset(name string, data any, opts ...DatasetOption) (*Dataset, error) {
	if err := g.checkWritable(); err != nil {
		return nil, err
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	o := &datasetOptions{}
	for _, opt := range opts {
		opt(o)
	}

	full := path.Join(g.path, name)
	var old *object.Header
	if l := g.link(name); l != nil {
		if _, cached := g.file.groups[full]; cached || g.file.reader.IsUndefinedOffset(l.ObjectAddress) {
			return nil, fmt.Errorf("%w: %s is a group", ErrExists, full)
		}
		hdr, err := object.Read(g.file.reader, l.ObjectAddress)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", full, err)
		}
		if !hdr.IsDataset() {
			return nil, fmt.Errorf("%w: %s is a group", ErrExists, full)
		}
		old = hdr
	}

	flat, dims, err := flatten(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", full, err)
	}
	if o.shape != nil {
		dims = o.shape
	}
	ds := dataspaceFor(dims)
	if n := elementCount(flat); ds.NumElements() != uint64(n) {
		return nil, fmt.Errorf("%w: %s has %d elements, shape %v needs %d", ErrShape, full, n, dims, ds.NumElements())
	}

	dt := datatypeFor(flat)
	raw, err := dtype.Encode(dt, flat)
	if err != nil {
		return nil, classify(err)
	}

	attrs := make([]*message.Attribute, 0, len(o.attributes))
	for _, def := range o.attributes {
		a, err := encodeAttribute(def.name, def.value)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}

	w := g.file.writer
	var lay *message.DataLayout
	switch {
	case o.compact:
		lay = message.NewCompactLayout(raw)
	case len(raw) == 0:
		lay = message.NewContiguousLayout(w.UndefinedOffset(), 0)
	default:
		addr := g.file.allocator.Alloc(uint64(len(raw)), "data "+full)
		if err := w.At(int64(addr)).WriteBytes(raw); err != nil {
			return nil, fmt.Errorf("writing %s: %w", full, err)
		}
		lay = message.NewContiguousLayout(addr, uint64(len(raw)))
	}

	buf, err := object.Encode(w.Config(), object.NewDatasetHeader(ds, dt, lay, attrs...), 0)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", full, err)
	}
	addr := g.file.allocator.Alloc(uint64(len(buf)), "dataset "+full)
	if err := w.At(int64(addr)).WriteBytes(buf); err != nil {
		return nil, fmt.Errorf("writing %s: %w", full, err)
	}

	if old != nil {
		g.file.retireDataset(old)
	}
	g.setLink(name, addr)

	hdr, err := object.Read(g.file.reader, addr)
	if err != nil {
		return nil, fmt.Errorf("reading back %s: %w", full, err)
	}
	return newDataset(g.file, full, hdr)
}

// Unlink removes the member name. The space of a removed dataset, or of
// removed groups already on disk, is retired.
func (g *Group) Unlink(name string) error {
	if err := g.checkWritable(); err != nil {
		return err
	}
	if err := validName(name); err != nil {
		return err
	}
	full := path.Join(g.path, name)
	i := slices.IndexFunc(g.links, func(l *message.Link) bool { return l.Name == name })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, full)
	}

	f := g.file
	if _, cached := f.groups[full]; !cached && !f.reader.IsUndefinedOffset(g.links[i].ObjectAddress) {
		hdr, err := object.Read(f.reader, g.links[i].ObjectAddress)
		if err != nil {
			return fmt.Errorf("reading %s: %w", full, err)
		}
		if hdr.IsDataset() {
			f.retireDataset(hdr)
		} else {
			f.allocator.Retire(hdr.Address, hdr.Size)
		}
	}
	for p, sub := range f.groups {
		if p != full && !strings.HasPrefix(p, full+"/") {
			continue
		}
		if !f.reader.IsUndefinedOffset(sub.addr) {
			f.allocator.Retire(sub.addr, sub.size)
		}
		delete(f.groups, p)
	}

	g.links = slices.Delete(g.links, i, i+1)
	g.dirty = true
	return nil
}

// Attrs returns the attribute names for this group.
func (g *Group) Attrs() []string {
	names := make([]string, len(g.attrs))
	for i, a := range g.attrs {
		names[i] = a.Name
	}
	return names
}

// Attr returns an attribute by name, or nil if not found.
func (g *Group) Attr(name string) *Attribute {
	for _, a := range g.attrs {
		if a.Name == name {
			return &Attribute{msg: a}
		}
	}
	return nil
}

// HasAttr returns true if the group has an attribute with the given name.
func (g *Group) HasAttr(name string) bool {
	return g.Attr(name) != nil
}

func (g *Group) checkWritable() error {
	if g.file.closed {
		return ErrClosed
	}
	if !g.file.writable {
		return ErrReadOnly
	}
	if g.legacy {
		return fmt.Errorf("%w: symbol-table group %s is read-only", ErrUnsupported, g.path)
	}
	return nil
}

func (g *Group) link(name string) *message.Link {
	for _, l := range g.links {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// setLink points name at addr, adding the link when it is new, and marks
// the group for rewriting.
func (g *Group) setLink(name string, addr uint64) {
	g.dirty = true
	if l := g.link(name); l != nil {
		l.ObjectAddress = addr
		return
	}
	g.links = append(g.links, message.NewHardLink(name, addr))
}

// retireDataset accounts the header and contiguous data of a dataset that
// is no longer linked.
func (f *File) retireDataset(hdr *object.Header) {
	f.allocator.Retire(hdr.Address, hdr.Size)
	if l := hdr.DataLayout(); l != nil && l.IsContiguous() && !f.reader.IsUndefinedOffset(l.Address) {
		f.allocator.Retire(l.Address, l.Size)
	}
}
