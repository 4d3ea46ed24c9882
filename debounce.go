// Package debounce provides a generalized debounce and throttle wrapper.
//
// Wrap turns a function into a wrapper whose attempts are coalesced into a
// smaller number of actual calls. Attempts are grouped by a fingerprint of
// their receiver and arguments; within a group, calls happen on the leading
// edge, the trailing edge, and when a group outlives its max wait, as
// configured. Every attempt returns a Future that settles with the outcome
// of the call that resolved its group.
//
// Debouncing is useful when calls may be triggered rapidly, such as in
// response to user input or change notifications, but the underlying
// operation is expensive and only needs to run once per burst. Throttling is
// a debounce with leading calls and a max wait.
package debounce

import (
	"time"
)

// New returns a debounced function that delays invoking f until after wait
// time has elapsed since the last time the debounced function was invoked.
// Options can enable leading calls and a max wait, like for Wrap.
//
// The debounced function is safe for concurrent use in goroutines. It does
// not wait for f to complete, unless f is invoked as a leading call.
func New(wait time.Duration, f func(), opts ...Option) (debounced func(), err error) {
	w, err := wrapCallback(wait, f, opts...)
	if err != nil {
		return nil, err
	}

	return func() {
		w.Attempt(nil)
	}, nil
}

func wrapCallback(wait time.Duration, f func(), opts ...Option) (*Wrapped[struct{}], error) {
	if f == nil {
		return nil, &ConfigError{Option: "func", Reason: "must not be nil"}
	}

	return Wrap(
		func(Invocation) Outcome[struct{}] {
			f()

			return Value(struct{}{})
		},
		append([]Option{Wait(wait)}, opts...)...,
	)
}
