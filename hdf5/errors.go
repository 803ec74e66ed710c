// Package hdf5 reads and writes HDF5 containers in pure Go.
//
// Files are written with a version 3 superblock, version 2 object headers
// and compact link storage, which h5py and the HDF5 library read directly.
// Existing files written by other tools are readable as long as their data
// uses compact or contiguous storage; files with a version 0 or 1
// superblock are read-only.
//
// A File is not safe for concurrent use.
package hdf5

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/h5frame/internal/dtype"
	"github.com/robert-malhotra/h5frame/internal/layout"
	"github.com/robert-malhotra/h5frame/internal/object"
)

var (
	ErrNotHDF5          = errors.New("not an HDF5 file")
	ErrNotFound         = errors.New("object not found")
	ErrNotDataset       = errors.New("object is not a dataset")
	ErrNotGroup         = errors.New("object is not a group")
	ErrExists           = errors.New("object already exists")
	ErrUnsupported      = errors.New("unsupported feature")
	ErrInvalidPath      = errors.New("invalid path")
	ErrClosed           = errors.New("file is closed")
	ErrReadOnly         = errors.New("file is not writable")
	ErrShape            = errors.New("data does not match shape")
	ErrChecksumMismatch = object.ErrChecksumMismatch
)

// classify maps errors from the internal decoders onto this package's
// sentinels.
func classify(err error) error {
	if errors.Is(err, layout.ErrUnsupported) || errors.Is(err, dtype.ErrUnsupported) {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return err
}
