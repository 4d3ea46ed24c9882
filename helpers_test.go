package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

// recorder is an underlying function that records its calls and resolves each
// call with its 1-based call number.
type recorder struct {
	mux   sync.Mutex
	calls []Invocation
}

func (r *recorder) fn(inv Invocation) Outcome[int] {
	r.mux.Lock()
	defer r.mux.Unlock()

	r.calls = append(r.calls, inv)

	return Value(len(r.calls))
}

func (r *recorder) count() int {
	r.mux.Lock()
	defer r.mux.Unlock()

	return len(r.calls)
}

func (r *recorder) invocations() []Invocation {
	r.mux.Lock()
	defer r.mux.Unlock()

	return append([]Invocation(nil), r.calls...)
}

type testCase struct {
	name    string
	options []Option
	// attempts are offsets from the start at which an attempt is made, with
	// no receiver and no arguments.
	attempts []time.Duration
	// wantCalls maps an offset to the number of calls expected once every
	// timer due at that offset has fired and the attempts at that offset
	// have been made.
	wantCalls map[time.Duration]int
}

// runTestCases plays each case against a fake clock, one millisecond at a
// time so that timers due at different offsets always fire in order.
func runTestCases(t *testing.T, tests []testCase) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clock := clockz.NewFakeClock()
			rec := &recorder{}

			w, err := Wrap(
				rec.fn,
				append([]Option{WithClock(clock)}, tt.options...)...,
			)
			require.NoError(t, err)

			var end time.Duration
			attemptsAt := map[time.Duration]int{}
			for _, at := range tt.attempts {
				attemptsAt[at]++
				end = max(end, at)
			}
			for at := range tt.wantCalls {
				end = max(end, at)
			}

			for now := time.Duration(0); now <= end; now += time.Millisecond {
				if now > 0 {
					clock.Advance(time.Millisecond)
					w.drain()
				}

				for range attemptsAt[now] {
					w.Attempt(nil)
				}

				if want, ok := tt.wantCalls[now]; ok {
					assert.Equal(t, want, rec.count(), "calls at %s", now)
				}
			}
		})
	}
}

// ms is shorthand for table offsets.
func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// drainer is a wrapped function whose fired timer callbacks can be waited
// for.
type drainer interface {
	drain()
}

// step advances clock by d, one millisecond at a time, waiting for the timer
// callbacks of w that fired along the way.
func step(clock *clockz.FakeClock, w drainer, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += time.Millisecond {
		clock.Advance(time.Millisecond)
		w.drain()
	}
}
