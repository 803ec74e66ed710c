package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/robert-malhotra/h5frame/frame"
	"github.com/robert-malhotra/h5frame/hdf5"
)

// Keys lists the logical keys holding index and data datasets whose key
// matches pattern. In the pattern '*' does not cross '/' and '**' does.
// An empty pattern matches every key. The failure log is not listed.
func (s *Store) Keys(pattern string, opts ...CallOption) ([]string, error) {
	var g glob.Glob
	if pattern != "" {
		var err error
		if g, err = glob.Compile(pattern, '/'); err != nil {
			return nil, fmt.Errorf("bad key pattern %q: %w", pattern, err)
		}
	}

	var keys []string
	err := s.with(newCallOptions(opts), false, func(h *Handle) error {
		return hdf5.Walk(h.file.Root(), func(p string, obj any, err error) error {
			if err != nil {
				s.opts.logger.Warn("skipping unreadable object", "path", p, "err", err)
				return nil
			}
			grp, ok := obj.(*hdf5.Group)
			if !ok {
				return nil
			}
			members, err := grp.Members()
			if err != nil {
				return err
			}
			if !slices.Contains(members, SubkeyIndex) || !slices.Contains(members, SubkeyData) {
				return nil
			}
			key := strings.TrimPrefix(p, "/")
			if key != FailureKey && (g == nil || g.Match(key)) {
				keys = append(keys, key)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Merge pulls the tables under keys and stacks them into one table whose
// row labels are (key, original label parts...). All tables must share
// their columns. [WithDType] is applied to every table.
func (s *Store) Merge(keys []string, opts ...CallOption) (*frame.Table, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: nothing to merge", ErrKeyNotFound)
	}
	c := newCallOptions(opts)
	tables := make([]*frame.Table, len(keys))
	err := s.with(c, false, func(h *Handle) error {
		for i, key := range keys {
			t, err := pullTable(h, key, c.dtype)
			if err != nil {
				return err
			}
			tables[i] = t
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out, err := frame.Concat(keys, tables)
	if err != nil {
		return nil, err
	}
	s.opts.logger.Debug("merged tables", "keys", len(keys), "rows", out.Index.Len())
	return out, nil
}
