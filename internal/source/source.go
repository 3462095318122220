// Package source implements asset sources: stores that locate the bytes of a
// named asset and hand them to a codec.
package source

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/conduit-lang/assets/internal/capability"
)

// ErrNotFound is returned by ReadAsset both when the name does not exist and
// when no reader supports the requested type. Callers cannot tell the two
// apart.
var ErrNotFound = errors.New("source: asset not found")

// Source reads and writes named assets.
type Source interface {
	// ReadAsset decodes the asset stored under name as tag.
	ReadAsset(name string, tag capability.Tag) (any, error)

	// WriteAsset encodes v as tag and stores it under name, creating the
	// backing blob if needed.
	WriteAsset(v any, name string, tag capability.Tag) error
}

// Lister is implemented by sources that can enumerate their asset names.
type Lister interface {
	// List returns the names matching a doublestar glob, or every name when
	// pattern is empty.
	List(pattern string) ([]string, error)
}

// Option configures a source.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used for recovered read failures.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func filterNames(names []string, pattern string) ([]string, error) {
	if pattern == "" {
		return names, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if doublestar.MatchUnvalidated(pattern, name) {
			out = append(out, name)
		}
	}
	return out, nil
}
