package debounce

import (
	"fmt"
	"runtime/debug"
)

// Invocation is a single attempt's receiver and arguments.
type Invocation struct {
	Receiver any
	Args     []any
}

// Func is an underlying function that can be wrapped.
type Func[R any] func(inv Invocation) Outcome[R]

// Outcome is what an underlying function returns: an immediate value, an
// immediate error, or a Future that settles later.
type Outcome[R any] struct {
	value R
	err   error
	async *Future[R]
}

// Value returns an Outcome that resolves to v.
func Value[R any](v R) Outcome[R] {
	return Outcome[R]{value: v}
}

// Fail returns an Outcome that rejects with err.
func Fail[R any](err error) Outcome[R] {
	return Outcome[R]{err: err}
}

// Async returns an Outcome that settles the same way f does.
func Async[R any](f *Future[R]) Outcome[R] {
	return Outcome[R]{async: f}
}

// IsAsync reports whether the outcome settles later.
func (o Outcome[R]) IsAsync() bool {
	return o.async != nil
}

// Sync adapts a plain Go function into a Func with an immediate outcome.
func Sync[R any](fn func(inv Invocation) (R, error)) Func[R] {
	return func(inv Invocation) Outcome[R] {
		v, err := fn(inv)
		if err != nil {
			return Fail[R](err)
		}

		return Value(v)
	}
}

// Spawn adapts a plain Go function into a Func that runs fn on its own
// goroutine and returns an asynchronous outcome, so slow work doesn't hold up
// the attempt or timer that triggered the call.
func Spawn[R any](fn func(inv Invocation) (R, error)) Func[R] {
	return func(inv Invocation) Outcome[R] {
		p := NewPromise[R]()

		go func() {
			defer func() {
				if r := recover(); r != nil {
					p.Reject(&PanicError{Value: r, Stack: debug.Stack()})
				}
			}()

			v, err := fn(inv)
			if err != nil {
				p.Reject(err)

				return
			}
			p.Resolve(v)
		}()

		return Async(p.Future())
	}
}

// call is one invocation of the underlying function.
type call[R any] struct {
	key    Fingerprint
	kind   CallKind
	inv    Invocation
	result *Future[R]
}

// CallKind tells which edge of an attempt group triggered a call.
type CallKind int

const (
	// CallLeading is made when a group is created.
	CallLeading CallKind = iota + 1
	// CallTrailing is made when a group's wait timer fires.
	CallTrailing
	// CallDividing is made when a group is split by its max wait timer.
	CallDividing
)

func (k CallKind) String() string {
	switch k {
	case CallLeading:
		return "leading"
	case CallTrailing:
		return "trailing"
	case CallDividing:
		return "dividing"
	default:
		return fmt.Sprintf("CallKind(%d)", int(k))
	}
}

// bridge invokes fn and routes its outcome into c.result. A panic is
// recovered into a *PanicError, an asynchronous outcome is followed until it
// settles.
func bridge[R any](fn Func[R], c *call[R]) (panicked *PanicError) {
	var out Outcome[R]

	func() {
		defer func() {
			if r := recover(); r != nil {
				panicked = &PanicError{Value: r, Stack: debug.Stack()}
			}
		}()

		out = fn(c.inv)
	}()

	switch {
	case panicked != nil:
		var zero R
		c.result.settle(zero, panicked)
	case out.async != nil:
		c.result.follow(out.async)
	case out.err != nil:
		var zero R
		c.result.settle(zero, out.err)
	default:
		c.result.settle(out.value, nil)
	}

	return panicked
}
