package hdf5

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/robert-malhotra/h5frame/internal/alloc"
	"github.com/robert-malhotra/h5frame/internal/binary"
	"github.com/robert-malhotra/h5frame/internal/btree"
	"github.com/robert-malhotra/h5frame/internal/heap"
	"github.com/robert-malhotra/h5frame/internal/message"
	"github.com/robert-malhotra/h5frame/internal/object"
	"github.com/robert-malhotra/h5frame/internal/superblock"
)

// File represents an open HDF5 file.
type File struct {
	path       string
	file       *os.File
	reader     *binary.Reader
	superblock *superblock.Superblock
	closed     bool

	// Groups opened so far, keyed by cleaned path. Writes go through these
	// so that pending links are visible before the next flush.
	groups map[string]*Group

	// Write support fields
	writable  bool
	writer    *binary.Writer
	allocator *alloc.Allocator
}

// Create creates a new HDF5 file, truncating any existing file at path.
func Create(path string, opts ...FileOption) (*File, error) {
	o := defaultFileOptions()
	for _, opt := range opts {
		opt(o)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	sb := superblock.NewSuperblock()
	sb.OffsetSize = uint8(o.offsetSize)
	sb.LengthSize = uint8(o.lengthSize)
	cfg := sb.ReaderConfig()

	hdf := &File{
		path:       path,
		file:       f,
		reader:     binary.NewReader(f, cfg),
		writer:     binary.NewWriter(f, cfg),
		superblock: sb,
		allocator:  alloc.New(uint64(sb.Size())),
		writable:   true,
		groups:     make(map[string]*Group),
	}
	hdf.groups["/"] = &Group{
		file:  hdf,
		path:  "/",
		addr:  hdf.writer.UndefinedOffset(),
		dirty: true,
	}

	if err := hdf.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return hdf, nil
}

// Open opens an HDF5 file for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	hdf, err := newFile(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return hdf, nil
}

// OpenReadWrite opens an existing file for appending. New objects are
// written past the current end of file; groups that change are rewritten
// on flush. Files with a version 0 or 1 superblock cannot be opened this
// way.
func OpenReadWrite(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	hdf, err := newFile(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if hdf.superblock.Legacy() {
		f.Close()
		return nil, fmt.Errorf("%w: superblock version %d is read-only", ErrUnsupported, hdf.superblock.Version)
	}

	eof := hdf.superblock.EOFAddress
	if st, err := f.Stat(); err == nil && uint64(st.Size()) > eof {
		eof = uint64(st.Size())
	}
	hdf.writable = true
	hdf.writer = binary.NewWriter(f, hdf.superblock.ReaderConfig())
	hdf.allocator = alloc.New(eof)
	return hdf, nil
}

func newFile(path string, f *os.File) (*File, error) {
	sb, err := superblock.Read(f)
	if err != nil {
		if errors.Is(err, superblock.ErrNotHDF5) {
			return nil, fmt.Errorf("%w: %s", ErrNotHDF5, path)
		}
		return nil, fmt.Errorf("reading superblock: %w", err)
	}

	hdf := &File{
		path:       path,
		file:       f,
		reader:     binary.NewReader(f, sb.ReaderConfig()),
		superblock: sb,
		groups:     make(map[string]*Group),
	}
	if _, err := hdf.openGroupPath("/"); err != nil {
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	return hdf, nil
}

// Close flushes a writable file and closes it. Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	var flushErr error
	if f.writable {
		flushErr = f.Flush()
	}
	f.closed = true
	f.groups = nil
	if err := f.file.Close(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}

// Flush writes every modified group and the superblock, then syncs the
// file. Groups are written deepest first so each parent records the final
// address of its children.
func (f *File) Flush() error {
	if f.closed {
		return ErrClosed
	}
	if !f.writable {
		return ErrReadOnly
	}

	for {
		g := f.deepestDirty()
		if g == nil {
			break
		}
		if err := f.writeGroup(g); err != nil {
			return fmt.Errorf("writing group %s: %w", g.path, err)
		}
	}

	if err := f.allocator.Validate(); err != nil {
		return fmt.Errorf("space allocation: %w", err)
	}
	f.superblock.EOFAddress = f.allocator.EOFAddr()
	if _, err := f.superblock.Write(f.writer.At(0)); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}
	return f.file.Sync()
}

func (f *File) deepestDirty() *Group {
	var best *Group
	for _, g := range f.groups {
		if !g.dirty {
			continue
		}
		if best == nil || depth(g.path) > depth(best.path) ||
			(depth(g.path) == depth(best.path) && g.path < best.path) {
			best = g
		}
	}
	return best
}

func (f *File) writeGroup(g *Group) error {
	for _, l := range g.links {
		if f.reader.IsUndefinedOffset(l.ObjectAddress) {
			return fmt.Errorf("link %q has no target", l.Name)
		}
	}

	buf, err := object.Encode(f.writer.Config(), object.NewGroupHeader(g.links, g.attrs...), object.MinGroupChunkSize)
	if err != nil {
		return err
	}
	addr := f.allocator.Alloc(uint64(len(buf)), "group "+g.path)
	if err := f.writer.At(int64(addr)).WriteBytes(buf); err != nil {
		return err
	}
	if g.size > 0 {
		f.allocator.Retire(g.addr, g.size)
	}
	g.addr, g.size, g.dirty = addr, uint64(len(buf)), false

	if g.path == "/" {
		f.superblock.RootGroupAddress = addr
		return nil
	}
	parentPath, name := splitParent(g.path)
	parent, ok := f.groups[parentPath]
	if !ok {
		return fmt.Errorf("parent %s not loaded", parentPath)
	}
	parent.setLink(name, addr)
	return nil
}

// Root returns the root group of the file.
func (f *File) Root() *Group {
	if f.closed {
		return nil
	}
	return f.groups["/"]
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Version returns the superblock version.
func (f *File) Version() int {
	return int(f.superblock.Version)
}

// IsWritable reports whether the file accepts writes.
func (f *File) IsWritable() bool {
	return f.writable && !f.closed
}

// AllocStats reports file space usage of a writable file.
func (f *File) AllocStats() alloc.Stats {
	if f.allocator == nil {
		return alloc.Stats{}
	}
	return f.allocator.Stats()
}

// OpenGroup opens a group by absolute path.
func (f *File) OpenGroup(p string) (*Group, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.openGroupPath(CleanPath(p))
}

// OpenDataset opens a dataset by absolute path.
func (f *File) OpenDataset(p string) (*Dataset, error) {
	if f.closed {
		return nil, ErrClosed
	}
	p = CleanPath(p)
	if p == "/" {
		return nil, ErrNotDataset
	}
	parentPath, name := splitParent(p)
	parent, err := f.openGroupPath(parentPath)
	if err != nil {
		return nil, err
	}
	return parent.OpenDataset(name)
}

// Exists reports whether an object exists at p.
func (f *File) Exists(p string) bool {
	if f.closed {
		return false
	}
	p = CleanPath(p)
	if p == "/" {
		return true
	}
	parentPath, name := splitParent(p)
	parent, err := f.openGroupPath(parentPath)
	if err != nil {
		return false
	}
	return parent.link(name) != nil
}

// RequireGroup returns the group at p, creating it and any missing parents.
func (f *File) RequireGroup(p string) (*Group, error) {
	if f.closed {
		return nil, ErrClosed
	}
	g := f.groups["/"]
	for _, name := range strings.Split(strings.TrimPrefix(CleanPath(p), "/"), "/") {
		if name == "" {
			continue
		}
		next, err := g.RequireGroup(name)
		if err != nil {
			return nil, err
		}
		g = next
	}
	return g, nil
}

// GetAttr returns the attribute at an "/object@name" path.
func (f *File) GetAttr(attrPath string) (*Attribute, error) {
	if f.closed {
		return nil, ErrClosed
	}
	objPath, name, err := ParseAttrPath(attrPath)
	if err != nil {
		return nil, err
	}

	var attr *Attribute
	if g, err := f.openGroupPath(objPath); err == nil {
		attr = g.Attr(name)
	} else if errors.Is(err, ErrNotGroup) {
		ds, err := f.OpenDataset(objPath)
		if err != nil {
			return nil, err
		}
		attr = ds.Attr(name)
	} else {
		return nil, err
	}
	if attr == nil {
		return nil, fmt.Errorf("%w: attribute %s", ErrNotFound, attrPath)
	}
	return attr, nil
}

// ReadAttr reads the value of the attribute at an "/object@name" path.
func (f *File) ReadAttr(attrPath string) (any, error) {
	attr, err := f.GetAttr(attrPath)
	if err != nil {
		return nil, err
	}
	return attr.Value()
}

// openGroupPath returns the cached group at p, loading it and its
// ancestors from disk as needed.
func (f *File) openGroupPath(p string) (*Group, error) {
	if g, ok := f.groups[p]; ok {
		return g, nil
	}

	if p == "/" {
		g, err := f.loadGroup("/", f.superblock.RootGroupAddress)
		if err != nil {
			return nil, err
		}
		f.groups[p] = g
		return g, nil
	}

	parentPath, name := splitParent(p)
	parent, err := f.openGroupPath(parentPath)
	if err != nil {
		return nil, err
	}
	l := parent.link(name)
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	g, err := f.loadGroup(p, l.ObjectAddress)
	if err != nil {
		return nil, err
	}
	f.groups[p] = g
	return g, nil
}

func (f *File) loadGroup(p string, addr uint64) (*Group, error) {
	hdr, err := object.Read(f.reader, addr)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	if hdr.IsDataset() {
		return nil, fmt.Errorf("%w: %s", ErrNotGroup, p)
	}

	g := &Group{
		file:  f,
		path:  p,
		addr:  addr,
		attrs: hdr.Attributes(),
	}
	if hdr.Version == 2 {
		g.size = hdr.Size
	}

	if li := hdr.LinkInfo(); li != nil && !f.reader.IsUndefinedOffset(li.FractalHeapAddress) {
		return nil, fmt.Errorf("%w: dense link storage in %s", ErrUnsupported, p)
	}

	st := hdr.SymbolTable()
	if st == nil && p == "/" && f.superblock.Legacy() && f.superblock.RootGroupBTreeAddress != 0 {
		st = &message.SymbolTable{
			BTreeAddress:     f.superblock.RootGroupBTreeAddress,
			LocalHeapAddress: f.superblock.RootGroupLocalHeapAddress,
		}
	}
	if st != nil {
		g.legacy = true
		names, err := heap.ReadLocal(f.reader, st.LocalHeapAddress)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		entries, err := btree.ReadGroupEntries(f.reader, st.BTreeAddress, names)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		for _, e := range entries {
			if !e.Soft {
				g.links = append(g.links, message.NewHardLink(e.Name, e.Address))
			}
		}
		return g, nil
	}

	for _, l := range hdr.Links() {
		if l.IsHard() {
			g.links = append(g.links, l)
		}
	}
	return g, nil
}

// splitParent splits a cleaned, non-root path into its parent and base name.
func splitParent(p string) (string, string) {
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/", p[1:]
	}
	return p[:i], p[i+1:]
}

func sortedNames(links []*message.Link) []string {
	names := make([]string, len(links))
	for i, l := range links {
		names[i] = l.Name
	}
	sort.Strings(names)
	return names
}
