package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/robert-malhotra/h5frame/hdf5"
)

// Handle is an open container.
type Handle struct {
	file     *hdf5.File
	path     string
	writable bool
	log      *slog.Logger
}

// Open opens the container at path for appending, creating it when it does
// not exist. With clobber set an existing file is removed first.
func Open(path string, clobber bool, opts ...Option) (*Handle, error) {
	o := newOptions(opts)
	if clobber {
		if err := clobberFile(path, o.logger); err != nil {
			return nil, err
		}
	}

	var (
		f   *hdf5.File
		err error
	)
	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		f, err = hdf5.Create(path)
	} else {
		f, err = hdf5.OpenReadWrite(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrIO, path, err)
	}
	o.logger.Debug("opened container", "path", path, "mode", "append")
	return &Handle{file: f, path: path, writable: true, log: o.logger}, nil
}

// OpenReadOnly opens an existing container for reading.
func OpenReadOnly(path string, opts ...Option) (*Handle, error) {
	o := newOptions(opts)
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrIO, path, err)
	}
	o.logger.Debug("opened container", "path", path, "mode", "read")
	return &Handle{file: f, path: path, log: o.logger}, nil
}

func clobberFile(path string, log *slog.Logger) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	log.Info("clobbering container", "path", path)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: removing %s: %w", ErrIO, path, err)
	}
	return nil
}

// Close flushes and closes the container. Closing twice is a no-op.
func (h *Handle) Close() error {
	if h == nil || h.file == nil {
		return nil
	}
	f := h.file
	h.file = nil
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrIO, h.path, err)
	}
	h.log.Debug("closed container", "path", h.path)
	return nil
}

// Path returns the container's file path.
func (h *Handle) Path() string { return h.path }

// Writable reports whether the handle is open for appending.
func (h *Handle) Writable() bool { return h.file != nil && h.writable }

// Closed reports whether Close has been called.
func (h *Handle) Closed() bool { return h.file == nil }

// Flush writes pending group changes without closing the handle.
func (h *Handle) Flush() error {
	if h.file == nil {
		return ErrClosed
	}
	if !h.writable {
		return nil
	}
	if err := h.file.Flush(); err != nil {
		return fmt.Errorf("%w: flushing %s: %w", ErrIO, h.path, err)
	}
	return nil
}

// File exposes the underlying container.
func (h *Handle) File() *hdf5.File { return h.file }

func (h *Handle) check(write bool) error {
	if h.file == nil {
		return ErrClosed
	}
	if write && !h.writable {
		return fmt.Errorf("%w: %s is open read-only", ErrIO, h.path)
	}
	return nil
}
