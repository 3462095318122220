// Package assets caches decoded assets by name and type on top of a
// source.Source.
//
// A cache maps each name (compared case-insensitively) to the ordered list of
// instances loaded under it, so a raw stream and a parsed document can be
// cached side by side for the same asset. Get returns the first instance
// whose type satisfies the request and reads through the source on a miss.
//
// Cached values implementing io.Closer are tracked separately and closed when
// they are unloaded. A cache is released with Dispose:
//
//	cache := assets.New(src)
//	defer cache.Dispose()
//
//	doc, err := assets.Get[*etree.Document](cache, "config")
package assets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/conduit-lang/assets/internal/capability"
	"github.com/conduit-lang/assets/internal/codec"
	"github.com/conduit-lang/assets/internal/source"
)

// Cache is a concurrency-safe name and type keyed store of decoded assets.
type Cache struct {
	source source.Source
	table  *capability.Table
	logger *zap.Logger

	mu      sync.RWMutex
	buckets map[string]*bucket

	disposables *disposables
	flight      singleflight.Group
	disposed    atomic.Bool

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for cache events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTable sets the supertype table used to match requested types against
// cached instances. It defaults to codec.Supertypes.
func WithTable(table *capability.Table) Option {
	return func(c *Cache) {
		c.table = table
	}
}

// New creates an empty cache reading through src.
func New(src source.Source, opts ...Option) *Cache {
	c := &Cache{
		source:      src,
		table:       codec.Supertypes(),
		logger:      zap.NewNop(),
		buckets:     make(map[string]*bucket),
		disposables: newDisposables(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the source the cache reads through.
func (c *Cache) Source() source.Source {
	return c.source
}

// Get returns the first instance cached under name whose type satisfies tag.
// On a miss the asset is read from the source and cached. Concurrent misses
// for the same name and tag share a single read. Only source.ErrNotFound is
// reported as ErrAssetNotFound; decode and I/O failures are returned wrapped.
func (c *Cache) Get(name string, tag capability.Tag) (any, error) {
	if err := c.check(name); err != nil {
		return nil, err
	}

	if v, ok := c.lookup(name, tag); ok {
		c.hits.Add(1)
		c.logger.Debug("asset cache hit", zap.String("name", name), zap.Stringer("type", tag))
		return v, nil
	}

	v, err, _ := c.flight.Do(flightKey(name, tag), func() (any, error) {
		if v, ok := c.lookup(name, tag); ok {
			c.hits.Add(1)
			return v, nil
		}

		c.misses.Add(1)
		c.logger.Debug("asset cache miss", zap.String("name", name), zap.Stringer("type", tag))

		v, err := c.source.ReadAsset(name, tag)
		if errors.Is(err, source.ErrNotFound) {
			return nil, ErrAssetNotFound{Name: name, Cause: err}
		}
		if err != nil {
			return nil, fmt.Errorf("assets: read %s: %w", name, err)
		}
		if err := c.Load(name, v); err != nil {
			discard(v)
			return nil, err
		}
		return v, nil
	})
	return v, err
}

// Load inserts v under name without checking for an existing instance of the
// same type. Values implementing io.Closer are closed once, when their last
// entry is unloaded.
func (c *Cache) Load(name string, v any) error {
	if err := c.check(name); err != nil {
		return err
	}
	if v == nil {
		return ErrNilAsset
	}

	key := strings.ToLower(name)
	e := entry{tag: capability.TagOfValue(v), value: v}

	c.mu.RLock()
	if c.disposed.Load() {
		c.mu.RUnlock()
		return ErrDisposed
	}
	if b, ok := c.buckets[key]; ok {
		e.disp = c.disposables.track(v)
		b.add(e)
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed.Load() {
		return ErrDisposed
	}
	b, ok := c.buckets[key]
	if !ok {
		b = &bucket{name: name}
		c.buckets[key] = b
	}
	e.disp = c.disposables.track(v)
	b.add(e)
	return nil
}

// Unload removes the first instance under name whose type satisfies tag and
// closes it if it is disposable. It does nothing when no instance matches.
func (c *Cache) Unload(name string, tag capability.Tag) error {
	if err := c.check(name); err != nil {
		return err
	}

	key := strings.ToLower(name)

	c.mu.Lock()
	b, ok := c.buckets[key]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	e, removed := b.remove(c.table, tag)
	if b.len() == 0 {
		delete(c.buckets, key)
	}
	c.mu.Unlock()

	if !removed {
		return nil
	}
	c.logger.Debug("asset unloaded", zap.String("name", name), zap.Stringer("type", e.tag))

	if err := c.disposables.release(e.disp); err != nil {
		return fmt.Errorf("assets: close %s: %w", name, err)
	}
	return nil
}

// UnloadAll closes every disposable instance once and empties the cache.
// Close failures are joined into the returned error.
func (c *Cache) UnloadAll() error {
	if c.disposed.Load() {
		return ErrDisposed
	}
	return c.unloadAll()
}

func (c *Cache) unloadAll() error {
	c.mu.Lock()
	snapshot := c.disposables.drain()
	c.buckets = make(map[string]*bucket)
	c.mu.Unlock()

	c.logger.Debug("asset cache cleared", zap.Int("disposables", len(snapshot)))
	return closeAll(snapshot)
}

// Dispose unloads everything and marks the cache unusable. Only the first
// call has any effect.
func (c *Cache) Dispose() error {
	if !c.disposed.CompareAndSwap(false, true) {
		return nil
	}
	return c.unloadAll()
}

// Disposed reports whether Dispose has been called.
func (c *Cache) Disposed() bool {
	return c.disposed.Load()
}

// Write encodes v as tag through the source under name. Instances already
// cached under name are left untouched.
func (c *Cache) Write(v any, name string, tag capability.Tag) error {
	if err := c.check(name); err != nil {
		return err
	}
	return c.source.WriteAsset(v, name, tag)
}

// EntryInfo describes one cached instance.
type EntryInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Disposable bool   `json:"disposable"`
}

// Entries lists the cached instances sorted by name, in insertion order
// within a name.
func (c *Cache) Entries() []EntryInfo {
	c.mu.RLock()
	buckets := make([]*bucket, 0, len(c.buckets))
	for _, b := range c.buckets {
		buckets = append(buckets, b)
	}
	c.mu.RUnlock()

	sort.Slice(buckets, func(i, j int) bool {
		return strings.ToLower(buckets[i].name) < strings.ToLower(buckets[j].name)
	})

	var out []EntryInfo
	for _, b := range buckets {
		for _, e := range b.snapshot() {
			out = append(out, EntryInfo{Name: b.name, Type: e.tag.String(), Disposable: e.disp != nil})
		}
	}
	return out
}

// Stats holds cache counters.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Names       int    `json:"names"`
	Entries     int    `json:"entries"`
	Disposables int    `json:"disposables"`
	Disposed    bool   `json:"disposed"`
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	names := len(c.buckets)
	entries := 0
	for _, b := range c.buckets {
		entries += b.len()
	}
	c.mu.RUnlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Names:       names,
		Entries:     entries,
		Disposables: c.disposables.len(),
		Disposed:    c.disposed.Load(),
	}
}

func (c *Cache) check(name string) error {
	if c.disposed.Load() {
		return ErrDisposed
	}
	if name == "" {
		return ErrEmptyName
	}
	return nil
}

func (c *Cache) lookup(name string, tag capability.Tag) (any, bool) {
	c.mu.RLock()
	b, ok := c.buckets[strings.ToLower(name)]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	e, ok := b.find(c.table, tag)
	return e.value, ok
}

func flightKey(name string, tag capability.Tag) string {
	return strings.ToLower(name) + "\x00" + tag.Key()
}

// discard closes a value that was read but could not be cached.
func discard(v any) {
	if closer, ok := v.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
