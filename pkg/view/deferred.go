package view

import (
	"context"
	"sync"
)

// Deferred loads a view on first use and caches it.
//
// Concurrent callers share one in-flight load. The load runs detached from
// the caller's context, so a caller that gives up (for instance a
// navigation superseded by a newer one) does not abort a fetch other
// callers are waiting on. A failed load is not cached; the next Get starts
// a new attempt.
//
// Deferred is safe for concurrent use.
type Deferred struct {
	load Loader

	mu       sync.Mutex
	view     View
	inflight *attempt
	loads    int
}

type attempt struct {
	done chan struct{}
	view View
	err  error
}

// NewDeferred wraps a loader.
func NewDeferred(load Loader) *Deferred {
	return &Deferred{load: load}
}

// Get returns the loaded view, loading it if needed.
func (d *Deferred) Get(ctx context.Context) (View, error) {
	d.mu.Lock()
	if d.view != nil {
		v := d.view
		d.mu.Unlock()
		return v, nil
	}
	a := d.inflight
	if a == nil {
		a = &attempt{done: make(chan struct{})}
		d.inflight = a
		d.loads++
		go d.run(context.WithoutCancel(ctx), a)
	}
	d.mu.Unlock()

	select {
	case <-a.done:
		return a.view, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *Deferred) run(ctx context.Context, a *attempt) {
	v, err := d.load(ctx)
	if err == nil && v == nil {
		err = ErrNilView
	}

	d.mu.Lock()
	if err == nil {
		d.view = v
	}
	d.inflight = nil
	d.mu.Unlock()

	a.view, a.err = v, err
	close(a.done)
}

// Loaded reports whether the view has been fetched successfully.
func (d *Deferred) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view != nil
}

// Loads returns how many fetch attempts have been started.
func (d *Deferred) Loads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loads
}
