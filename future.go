package debounce

import (
	"context"
	"sync"
)

// Future is the result of an attempt. It settles exactly once, with either a
// value or an error, and every attempt folded into the same attempt group
// holds the same Future.
type Future[R any] struct {
	mux     sync.Mutex
	done    chan struct{}
	settled bool
	value   R
	err     error
	subs    []func(R, error)
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// Done returns a channel that is closed once the Future has settled.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future settles or ctx is done, whichever happens
// first.
func (f *Future[R]) Await(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R

		return zero, ctx.Err()
	}
}

// Settled reports whether the Future has settled.
func (f *Future[R]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result blocks until the Future settles and returns its outcome.
func (f *Future[R]) Result() (R, error) {
	<-f.done

	return f.value, f.err
}

// settle stores the outcome and notifies subscribers. It returns false if the
// Future had already settled, in which case nothing changes.
func (f *Future[R]) settle(v R, err error) bool {
	f.mux.Lock()
	if f.settled {
		f.mux.Unlock()

		return false
	}

	f.settled = true
	f.value = v
	f.err = err
	subs := f.subs
	f.subs = nil
	close(f.done)
	f.mux.Unlock()

	for _, fn := range subs {
		fn(v, err)
	}

	return true
}

// onSettle calls fn with the outcome once the Future settles, right away if
// it already has.
func (f *Future[R]) onSettle(fn func(R, error)) {
	f.mux.Lock()
	if !f.settled {
		f.subs = append(f.subs, fn)
		f.mux.Unlock()

		return
	}
	f.mux.Unlock()

	fn(f.value, f.err)
}

// follow settles f with the outcome of src, unless f settles some other way
// first.
func (f *Future[R]) follow(src *Future[R]) {
	if src == f {
		return
	}

	src.onSettle(func(v R, err error) {
		f.settle(v, err)
	})
}

// Promise is the producing side of a Future. An underlying function returns
// Async(p.Future()) and settles the promise later.
type Promise[R any] struct {
	f *Future[R]
}

// NewPromise returns an unsettled Promise.
func NewPromise[R any]() *Promise[R] {
	return &Promise[R]{f: newFuture[R]()}
}

// Future returns the Future settled by p.
func (p *Promise[R]) Future() *Future[R] {
	return p.f
}

// Resolve settles the Future with v. It returns false if it was already
// settled.
func (p *Promise[R]) Resolve(v R) bool {
	return p.f.settle(v, nil)
}

// Reject settles the Future with err. It returns false if it was already
// settled.
func (p *Promise[R]) Reject(err error) bool {
	var zero R

	return p.f.settle(zero, err)
}
