package hdf5

import (
	"errors"
	"path"
)

// WalkFunc is called for each object during traversal.
// path is the full path to the object.
// obj is either *Group or *Dataset.
// err is any error encountered opening the object.
// Return nil to continue walking, [ErrSkipGroup] to skip a group's
// children, or any other error to stop.
type WalkFunc func(path string, obj any, err error) error

// ErrSkipGroup may be returned by a WalkFunc visiting a group to skip its
// members.
var ErrSkipGroup = errors.New("skip this group")

// Walk traverses all objects (groups and datasets) in the hierarchy
// starting from g, in sorted member order. The callback is called for each
// group and dataset, including the starting group.
//
//	hdf5.Walk(f.Root(), func(p string, obj any, err error) error {
//	    if ds, ok := obj.(*hdf5.Dataset); ok {
//	        fmt.Println(p, ds.Shape())
//	    }
//	    return err
//	})
func Walk(g *Group, fn WalkFunc) error {
	err := walkGroup(g, fn)
	if errors.Is(err, ErrSkipGroup) {
		return nil
	}
	return err
}

func walkGroup(g *Group, fn WalkFunc) error {
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}

	members, err := g.Members()
	if err != nil {
		return err
	}

	for _, name := range members {
		childPath := path.Join(g.Path(), name)

		childGroup, err := g.OpenGroup(name)
		if err == nil {
			if err := walkGroup(childGroup, fn); err != nil && !errors.Is(err, ErrSkipGroup) {
				return err
			}
			continue
		}
		if !errors.Is(err, ErrNotGroup) {
			if err := fn(childPath, nil, err); err != nil {
				return err
			}
			continue
		}

		dataset, err := g.OpenDataset(name)
		if err := fn(childPath, dataset, err); err != nil && !errors.Is(err, ErrSkipGroup) {
			return err
		}
	}
	return nil
}

// AttrInfo describes one attribute visited by [File.WalkAttrs].
type AttrInfo struct {
	Path       string // "/group/dataset@attr"
	ObjectPath string
	Name       string
	Value      any   // nil when Err is set
	Err        error // error reading the value
}

// WalkAttrs calls fn for every attribute on every group and dataset.
func (f *File) WalkAttrs(fn func(info AttrInfo) error) error {
	if f.closed {
		return ErrClosed
	}
	return Walk(f.Root(), func(p string, obj any, err error) error {
		if err != nil {
			return nil
		}
		var (
			names []string
			get   func(string) *Attribute
		)
		switch o := obj.(type) {
		case *Group:
			names, get = o.Attrs(), o.Attr
		case *Dataset:
			names, get = o.Attrs(), o.Attr
		}
		for _, name := range names {
			info := AttrInfo{Path: JoinAttrPath(p, name), ObjectPath: p, Name: name}
			info.Value, info.Err = get(name).Value()
			if err := fn(info); err != nil {
				return err
			}
		}
		return nil
	})
}
