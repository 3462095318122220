package assets

import (
	"errors"
	"io"
	"reflect"
	"sort"
	"sync"
)

// disposable is one cached io.Closer instance. Loading the same instance
// again adds a reference instead of a second registration.
type disposable struct {
	key    any
	seq    uint64
	closer io.Closer
	refs   int
}

// disposables tracks every cached instance that needs Close, independently
// of the name buckets. An instance is closed by whoever drops its last
// reference or drains the set, so each one is closed exactly once.
type disposables struct {
	mu   sync.Mutex
	seq  uint64
	live map[any]*disposable
}

func newDisposables() *disposables {
	return &disposables{live: make(map[any]*disposable)}
}

// track registers v if it is an io.Closer, or adds a reference when the
// instance is already live.
func (d *disposables) track(v any) *disposable {
	closer, ok := v.(io.Closer)
	if !ok {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := identity(closer)
	if disp, ok := d.live[key]; ok {
		disp.refs++
		return disp
	}
	d.seq++
	disp := &disposable{key: key, seq: d.seq, closer: closer, refs: 1}
	d.live[key] = disp
	return disp
}

// release drops one reference to disp and closes it when none remain. It
// does nothing when disp was already drained.
func (d *disposables) release(disp *disposable) error {
	if disp == nil {
		return nil
	}

	d.mu.Lock()
	if d.live[disp.key] != disp {
		d.mu.Unlock()
		return nil
	}
	disp.refs--
	if disp.refs > 0 {
		d.mu.Unlock()
		return nil
	}
	delete(d.live, disp.key)
	d.mu.Unlock()

	return disp.closer.Close()
}

// drain empties the set and returns its former contents in registration
// order.
func (d *disposables) drain() []*disposable {
	d.mu.Lock()
	snapshot := make([]*disposable, 0, len(d.live))
	for _, disp := range d.live {
		snapshot = append(snapshot, disp)
	}
	d.live = make(map[any]*disposable)
	d.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].seq < snapshot[j].seq })
	return snapshot
}

func (d *disposables) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// identity is the map key for an instance. Comparable closers (pointers in
// practice) key by themselves; values that cannot be compared are keyed by
// a fresh token and so are never shared.
func identity(closer io.Closer) any {
	if reflect.TypeOf(closer).Comparable() {
		return closer
	}
	return &closer
}

// closeAll closes every disposable in order and joins the failures.
func closeAll(snapshot []*disposable) error {
	var errs []error
	for _, disp := range snapshot {
		if err := disp.closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
