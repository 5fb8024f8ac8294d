package query

import (
	"context"
	"sync"
)

// Future is the outcome of one dispatched query. It resolves exactly once.
type Future struct {
	mu        sync.Mutex
	resolved  bool
	err       error
	callbacks []func(error)
	done      chan struct{}
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func resolvedFuture(err error) *Future {
	f := newFuture()
	f.complete(err)
	return f
}

// complete resolves the future and runs the registered callbacks. Calls
// after the first are ignored.
func (f *Future) complete(err error) {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return
	}
	f.resolved = true
	f.err = err
	cbs := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()
	for _, cb := range cbs {
		cb(err)
	}
}

// Done is closed when the future resolves.
func (f *Future) Done() <-chan struct{} { return f.done }

// Err returns the failure cause once resolved; nil before or on success.
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Wait blocks until the future resolves or ctx ends.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnComplete registers fn to run with the outcome. If the future already
// resolved, fn runs immediately on the calling goroutine; otherwise it runs
// on the goroutine that resolves it.
func (f *Future) OnComplete(fn func(err error)) {
	f.mu.Lock()
	if !f.resolved {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	err := f.err
	f.mu.Unlock()
	fn(err)
}
