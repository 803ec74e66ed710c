package store

import (
	"errors"
	"log/slog"
)

// Store reads and writes labeled data in the container at one path.
type Store struct {
	path string
	opts options
}

// New returns a store for the container at path. With [WithClobber] an
// existing file is removed immediately; the container itself is created by
// the first push.
func New(path string, opts ...Option) (*Store, error) {
	o := newOptions(opts)
	if o.clobber {
		if err := clobberFile(path, o.logger); err != nil {
			return nil, err
		}
	}
	return &Store{path: path, opts: o}, nil
}

// Path returns the container path.
func (s *Store) Path() string { return s.path }

// Logger returns the store's logger.
func (s *Store) Logger() *slog.Logger { return s.opts.logger }

// Open opens a caller-owned append handle for batching several calls.
func (s *Store) Open() (*Handle, error) {
	return Open(s.path, false, WithLogger(s.opts.logger))
}

// OpenReadOnly opens a caller-owned read handle.
func (s *Store) OpenReadOnly() (*Handle, error) {
	return OpenReadOnly(s.path, WithLogger(s.opts.logger))
}

// with runs fn on the call's handle, or on a handle opened and closed
// around fn when the call supplied none.
func (s *Store) with(c callOptions, write bool, fn func(h *Handle) error) (err error) {
	if c.handle != nil {
		if err := c.handle.check(write); err != nil {
			return err
		}
		return fn(c.handle)
	}

	var h *Handle
	if write {
		h, err = s.Open()
	} else {
		h, err = s.OpenReadOnly()
	}
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, h.Close())
	}()
	return fn(h)
}

func (s *Store) encoding(c callOptions) Encoding {
	if c.encoding != "" {
		return c.encoding
	}
	return s.opts.encoding
}
