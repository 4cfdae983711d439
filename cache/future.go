package cache

import "context"

// Future is the one-shot outcome of a dataset load. It resolves exactly
// once, with either a dataset or an error, and is shared by every caller
// that joined the same fetch.
type Future[D any] struct {
	done  chan struct{}
	value D
	err   error
	held  bool // Each caller of Load holds a reference to the entry
}

func newFuture[D any]() *Future[D] {
	return &Future[D]{done: make(chan struct{})}
}

func resolvedFuture[D any](v D) *Future[D] {
	f := newFuture[D]()
	f.held = true
	f.resolve(v, nil)
	return f
}

// resolve must be called exactly once
func (f *Future[D]) resolve(v D, err error) {
	f.value, f.err = v, err
	close(f.done)
}

// Done is closed once the future has resolved
func (f *Future[D]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves or ctx is done. A resolved future
// returns its outcome even when ctx is already done. Abandoning a wait does
// not cancel the underlying fetch.
func (f *Future[D]) Wait(ctx context.Context) (D, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero D
		return zero, ctx.Err()
	}
}
