package debounce

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

func TestBridge(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name      string
		fn        Func[string]
		want      string
		wantErr   error
		wantPanic bool
	}{
		{
			name: "value",
			fn: func(Invocation) Outcome[string] {
				return Value("ok")
			},
			want: "ok",
		},
		{
			name: "error",
			fn: func(Invocation) Outcome[string] {
				return Fail[string](boom)
			},
			wantErr: boom,
		},
		{
			name: "async value",
			fn: func(Invocation) Outcome[string] {
				p := NewPromise[string]()
				go p.Resolve("later")

				return Async(p.Future())
			},
			want: "later",
		},
		{
			name: "async error",
			fn: func(Invocation) Outcome[string] {
				p := NewPromise[string]()
				go p.Reject(boom)

				return Async(p.Future())
			},
			wantErr: boom,
		},
		{
			name: "sync adapter",
			fn: Sync(func(inv Invocation) (string, error) {
				return inv.Args[0].(string), nil
			}),
			want: "arg",
		},
		{
			name: "spawn adapter",
			fn: Spawn(func(inv Invocation) (string, error) {
				return "", boom
			}),
			wantErr: boom,
		},
		{
			name: "panic",
			fn: func(Invocation) Outcome[string] {
				panic(boom)
			},
			wantErr:   boom,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &call[string]{
				kind:   CallLeading,
				inv:    Invocation{Args: []any{"arg"}},
				result: newFuture[string](),
			}
			p := bridge(tt.fn, c)
			assert.Equal(t, tt.wantPanic, p != nil)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			got, err := c.result.Await(ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				if tt.wantPanic {
					var pe *PanicError
					require.ErrorAs(t, err, &pe)
					assert.NotEmpty(t, pe.Stack)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutcome_IsAsync(t *testing.T) {
	t.Parallel()

	assert.False(t, Value(1).IsAsync())
	assert.False(t, Fail[int](errors.New("x")).IsAsync())
	assert.True(t, Async(NewPromise[int]().Future()).IsAsync())
}

func TestSpawn_panic(t *testing.T) {
	t.Parallel()

	fn := Spawn(func(Invocation) (int, error) {
		panic("nope")
	})

	_, err := fn(Invocation{}).async.Await(context.Background())

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "nope", pe.Value)
}

func TestCallKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "leading", CallLeading.String())
	assert.Equal(t, "trailing", CallTrailing.String())
	assert.Equal(t, "dividing", CallDividing.String())
	assert.Equal(t, "CallKind(9)", CallKind(9).String())
}

func TestWrap_resultFanOut(t *testing.T) {
	t.Parallel()

	t.Run("value", func(t *testing.T) {
		t.Parallel()

		clock := clockz.NewFakeClock()
		rec := &recorder{}
		w, err := Wrap(rec.fn, WithClock(clock), Wait(ms(100)))
		require.NoError(t, err)

		a := w.Attempt(nil)
		b := w.Attempt(nil)
		assert.Same(t, a, b)
		assert.False(t, a.Settled())

		step(clock, w, ms(100))

		va, errA := a.Result()
		vb, errB := b.Result()
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.Equal(t, 1, va)
		assert.Equal(t, va, vb)
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		clock := clockz.NewFakeClock()
		w, err := Wrap(
			func(Invocation) Outcome[int] { return Fail[int](boom) },
			WithClock(clock), Wait(ms(100)),
		)
		require.NoError(t, err)

		a := w.Attempt(nil)
		b := w.Attempt(nil)
		step(clock, w, ms(100))

		_, errA := a.Result()
		_, errB := b.Result()
		assert.ErrorIs(t, errA, boom)
		assert.Equal(t, errA, errB)
	})

	t.Run("errors stay in their group", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		clock := clockz.NewFakeClock()
		w, err := Wrap(
			Sync(func(inv Invocation) (int, error) {
				if inv.Args[0] == "bad" {
					return 0, boom
				}

				return 1, nil
			}),
			WithClock(clock), Wait(ms(100)),
		)
		require.NoError(t, err)

		bad := w.Attempt(nil, "bad")
		good := w.Attempt(nil, "good")
		step(clock, w, ms(100))

		_, errBad := bad.Result()
		v, errGood := good.Result()
		assert.ErrorIs(t, errBad, boom)
		require.NoError(t, errGood)
		assert.Equal(t, 1, v)
	})
}

func TestWrap_asyncResult(t *testing.T) {
	t.Parallel()

	clock := clockz.NewFakeClock()
	release := make(chan struct{})

	w, err := Wrap(
		Spawn(func(Invocation) (string, error) {
			<-release

			return "done", nil
		}),
		WithClock(clock), Wait(ms(100)),
	)
	require.NoError(t, err)

	f := w.Attempt(nil)
	step(clock, w, ms(100))
	assert.Equal(t, 0, w.Pending(), "the group closes without waiting for the result")
	assert.False(t, f.Settled())

	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, err := f.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestWrap_panicIsDelivered(t *testing.T) {
	t.Parallel()

	clock := clockz.NewFakeClock()
	w, err := Wrap(
		func(Invocation) Outcome[int] { panic("kaboom") },
		WithClock(clock), Leading(true), Trailing(false), Wait(ms(100)),
	)
	require.NoError(t, err)

	f := w.Attempt(nil)
	require.True(t, f.Settled())

	_, err = f.Result()
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)

	// The wrapper keeps working after a panic.
	step(clock, w, ms(100))
	assert.Equal(t, 0, w.Pending())
	assert.True(t, w.Attempt(nil).Settled())
}
