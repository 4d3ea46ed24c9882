package debounce

import (
	"time"
)

// NewMutable returns a debounced function like New, but it allows callback
// function f to be changed, as a new callback function is passed to each
// invocation of the debounced function.
//
// Only the very last f passed to the debounced function is called when the
// delay expires and the trailing call is made. Previous f values are
// discarded. With a max wait, the dividing call uses the f that opened the
// group being split.
//
// The debounced function is safe for concurrent use in goroutines.
func NewMutable(wait time.Duration, opts ...Option) (debounced func(f func()), err error) {
	w, err := wrapMutable(wait, opts...)
	if err != nil {
		return nil, err
	}

	return func(f func()) {
		w.Attempt(nil, f)
	}, nil
}

func wrapMutable(wait time.Duration, opts ...Option) (*Wrapped[struct{}], error) {
	opts = append([]Option{Wait(wait)}, opts...)
	// Every f must land in the same attempt group.
	opts = append(opts, DifferentArgs(false), DifferentThis(false))

	return Wrap(func(inv Invocation) Outcome[struct{}] {
		if len(inv.Args) > 0 {
			if f, _ := inv.Args[0].(func()); f != nil {
				f()
			}
		}

		return Value(struct{}{})
	}, opts...)
}
