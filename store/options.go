package store

import (
	"fmt"
	"log/slog"

	"github.com/robert-malhotra/h5frame/frame"
)

// Encoding selects how data values are stored.
type Encoding string

const (
	// EncodingText stores every value as its text form.
	EncodingText Encoding = "text"
	// EncodingTyped stores int64 and float64 data as native numbers.
	// Other data falls back to text.
	EncodingTyped Encoding = "typed"
)

// ParseEncoding accepts "text" and "typed"; empty means text.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "", EncodingText:
		return EncodingText, nil
	case EncodingTyped:
		return EncodingTyped, nil
	}
	return "", fmt.Errorf("unknown encoding %q", s)
}

// Option configures a Store or a Handle.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	clobber  bool
	encoding Encoding
}

func newOptions(opts []Option) options {
	o := options{
		logger:   slog.New(slog.DiscardHandler),
		encoding: EncodingText,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for lifecycle and codec events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClobber removes an existing container when the store is created.
func WithClobber(clobber bool) Option {
	return func(o *options) { o.clobber = clobber }
}

// WithEncoding sets the default data encoding for pushes.
func WithEncoding(e Encoding) Option {
	return func(o *options) { o.encoding = e }
}

// CallOption configures a single push or pull.
type CallOption func(*callOptions)

type callOptions struct {
	handle   *Handle
	dtype    frame.DType
	encoding Encoding
	runID    string
}

func newCallOptions(opts []CallOption) callOptions {
	var c callOptions
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithHandle runs the call on an open handle owned by the caller.
func WithHandle(h *Handle) CallOption {
	return func(c *callOptions) { c.handle = h }
}

// WithDType casts pulled values to dt, overriding any stored type.
func WithDType(dt frame.DType) CallOption {
	return func(c *callOptions) { c.dtype = dt }
}

// AsEncoding overrides the store's encoding for one push.
func AsEncoding(e Encoding) CallOption {
	return func(c *callOptions) { c.encoding = e }
}

// WithRunID tags a failure log with the id of the run that produced it.
func WithRunID(id string) CallOption {
	return func(c *callOptions) { c.runID = id }
}
