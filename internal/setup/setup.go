// Package setup assembles codecs, a source and a cache from configuration.
package setup

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/conduit-lang/assets/internal/archive"
	"github.com/conduit-lang/assets/internal/assets"
	"github.com/conduit-lang/assets/internal/cli/config"
	"github.com/conduit-lang/assets/internal/codec"
	"github.com/conduit-lang/assets/internal/source"
)

// Lister is a source that can enumerate its names.
type Lister interface {
	source.Source
	source.Lister
}

// Stack is a ready-to-use asset stack. Close releases it.
type Stack struct {
	Readers *codec.Readers
	Writers *codec.Writers
	Source  Lister
	Cache   *assets.Cache

	backend   io.Closer
	closeOnce sync.Once
	closeErr  error
}

// Build wires a stack from cfg.
func Build(cfg *config.Config, logger *zap.Logger) (*Stack, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	readers := codec.DefaultReaders()
	writers := codec.DefaultWriters()
	opts := []source.Option{source.WithLogger(logger.Named("source"))}

	stack := &Stack{Readers: readers, Writers: writers}

	switch cfg.Source.Kind {
	case "file":
		stack.Source = source.NewDirectory(cfg.Source.Root, readers, writers, opts...)
	case "archive":
		a, closer, err := OpenArchive(cfg)
		if err != nil {
			return nil, err
		}
		src, err := source.NewArchive(a, readers, writers, opts...)
		if err != nil {
			if closer != nil {
				closer.Close()
			}
			return nil, err
		}
		stack.Source = src
		stack.backend = closer
	default:
		return nil, fmt.Errorf("setup: unknown source kind %q", cfg.Source.Kind)
	}

	stack.Cache = assets.New(stack.Source, assets.WithLogger(logger.Named("cache")))
	logger.Debug("asset stack ready",
		zap.String("source", cfg.Source.Kind),
		zap.String("readers", readers.Capability().Name()),
		zap.Int("types", len(readers.Capability().Types())))
	return stack, nil
}

// OpenArchive opens the configured archive backend. The returned closer is
// nil for backends that hold no resources.
func OpenArchive(cfg *config.Config) (archive.Archive, io.Closer, error) {
	switch cfg.Archive.Backend {
	case "memory":
		return archive.NewMemory(), nil, nil
	case "sqlite", "postgres":
		sc := archive.DefaultSQLConfig()
		sc.Driver = "sqlite3"
		if cfg.Archive.Backend == "postgres" {
			sc.Driver = "pgx"
			if cfg.Archive.Driver == "pq" {
				sc.Driver = "postgres"
			}
		}
		sc.DSN = cfg.Archive.DSN
		if cfg.Archive.Table != "" {
			sc.Table = cfg.Archive.Table
		}
		if cfg.Archive.Timeout > 0 {
			sc.Timeout = cfg.Archive.Timeout
		}
		a, err := archive.OpenSQL(sc)
		if err != nil {
			return nil, nil, err
		}
		return a, a, nil
	case "redis":
		rc := archive.DefaultRedisConfig()
		rc.Addr = cfg.Redis.Addr
		rc.Password = cfg.Redis.Password
		rc.DB = cfg.Redis.DB
		if cfg.Redis.Key != "" {
			rc.Key = cfg.Redis.Key
		}
		if cfg.Archive.Timeout > 0 {
			rc.Timeout = cfg.Archive.Timeout
		}
		a, err := archive.NewRedis(rc)
		if err != nil {
			return nil, nil, err
		}
		return a, a, nil
	default:
		return nil, nil, fmt.Errorf("setup: unknown archive backend %q", cfg.Archive.Backend)
	}
}

// Close disposes the cache and closes the archive backend. Later calls
// return the first call's result.
func (s *Stack) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.Cache.Dispose()
		if s.backend != nil {
			s.closeErr = errors.Join(s.closeErr, s.backend.Close())
		}
	})
	return s.closeErr
}
