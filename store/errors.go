package store

import (
	"errors"

	"github.com/robert-malhotra/h5frame/frame"
)

var (
	// ErrIO is returned when the container cannot be created, opened,
	// removed or written.
	ErrIO = errors.New("container i/o error")

	ErrKeyNotFound = errors.New("key not found")
	ErrEmptyTable  = errors.New("table has no rows or no columns")
	ErrClosed      = errors.New("handle is closed")

	ErrShapeMismatch = frame.ErrShapeMismatch
	ErrTypeCoercion  = frame.ErrTypeCoercion
)
