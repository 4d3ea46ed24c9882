package debounce

import (
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/zoobzio/clockz"
)

// Wrapped is a debounced and throttled wrapper around an underlying function.
// It combines the validated configuration with the per-instance state: the
// table of open attempt groups and the identity cache used to fingerprint
// attempts. No state is shared between two Wrapped values.
//
// All methods are safe for concurrent use.
type Wrapped[R any] struct {
	// Configuration
	fn    Func[R]
	conf  Config
	clock clockz.Clock
	log   logr.Logger
	obs   Observer
	ident *identityResolver

	// State
	mux    sync.Mutex
	groups map[Fingerprint]*group[R]
	fired  sync.WaitGroup
}

// group is an open attempt group. Its fields are guarded by Wrapped.mux.
type group[R any] struct {
	key      Fingerprint
	seed     Invocation
	last     Invocation
	attempts int

	waitTimer    clockz.Timer
	waitToken    uint64
	waitDeadline time.Time
	maxWaitTimer clockz.Timer
	maxDeadline  time.Time

	// result is shared by every attempt of the group, called holds the
	// outcome of the leading or dividing call that opened it, if any.
	result *Future[R]
	called *Future[R]
}

// Wrap returns a wrapper around fn configured by opts. It fails with a
// *ConfigError if the options are invalid.
//
// Each attempt is fingerprinted from its receiver and arguments. Attempts with
// the same fingerprint that arrive less than the wait duration apart form an
// attempt group. The underlying function is called at the start of a group
// if leading calls are enabled, and once the wait duration has passed since
// the last attempt if trailing calls are enabled. If a max wait is configured,
// a group that lives that long is split, and the new group starts with an
// immediate dividing call.
//
// Every attempt returns the Future of its group, which settles with the
// outcome of the call that resolves the group: the trailing call if one is
// made, otherwise the leading or dividing call. Without trailing calls the
// Future settles as soon as that call completes.
func Wrap[R any](fn Func[R], opts ...Option) (*Wrapped[R], error) {
	if fn == nil {
		return nil, &ConfigError{Option: "func", Reason: "must not be nil"}
	}

	s := newSettings(opts)

	conf, err := s.options.Validate()
	if err != nil {
		return nil, err
	}

	return &Wrapped[R]{
		fn:     fn,
		conf:   conf,
		clock:  s.clock,
		log:    s.logger,
		obs:    s.observer,
		ident:  newIdentityResolver(conf),
		groups: map[Fingerprint]*group[R]{},
	}, nil
}

// Config returns the validated configuration.
func (w *Wrapped[R]) Config() Config {
	return w.conf
}

// Func returns Attempt as a plain function value.
func (w *Wrapped[R]) Func() func(receiver any, args ...any) *Future[R] {
	return w.Attempt
}

// Attempt records an attempt to call the underlying function with the given
// receiver and arguments, and returns the Future of the attempt group it was
// folded into. It never blocks on the underlying function, except for a
// leading call which is made before Attempt returns.
func (w *Wrapped[R]) Attempt(receiver any, args ...any) *Future[R] {
	inv := Invocation{Receiver: receiver, Args: args}
	key := w.ident.fingerprint(inv)

	w.mux.Lock()

	if g, ok := w.groups[key]; ok {
		g.attempts++
		g.last = inv
		w.armWait(g)
		w.obs.OnAttempt(key, g.attempts)
		w.mux.Unlock()

		return g.result
	}

	g := w.open(key, inv)
	w.obs.OnAttempt(key, 1)

	var c *call[R]
	if w.conf.Leading {
		c = w.begin(g, CallLeading, inv)
		if !w.conf.Trailing {
			g.result.follow(c.result)
		}
	}
	w.mux.Unlock()

	w.run(c)

	return g.result
}

// Pending returns the number of open attempt groups.
func (w *Wrapped[R]) Pending() int {
	w.mux.Lock()
	defer w.mux.Unlock()

	return len(w.groups)
}

// open creates a group seeded by inv and arms its timers. It should only be
// called while the mutex is already locked.
func (w *Wrapped[R]) open(key Fingerprint, inv Invocation) *group[R] {
	g := &group[R]{
		key:      key,
		seed:     inv,
		last:     inv,
		attempts: 1,
		result:   newFuture[R](),
	}
	w.groups[key] = g

	w.armWait(g)
	w.armMaxWait(g)

	w.log.V(1).Info("attempt group opened", "fingerprint", key.String())

	return g
}

// close stops both timers of g and forgets it. It should only be called while
// the mutex is already locked.
func (w *Wrapped[R]) close(g *group[R], reason CloseReason) {
	stopTimer(g.waitTimer)
	stopTimer(g.maxWaitTimer)
	delete(w.groups, g.key)

	w.obs.OnGroupClose(g.key, reason, g.attempts)
	w.log.V(1).Info("attempt group closed",
		"fingerprint", g.key.String(),
		"reason", reason.String(),
		"attempts", g.attempts,
	)
}

// begin prepares a call on behalf of g. The call is made by run, after the
// mutex has been released.
func (w *Wrapped[R]) begin(g *group[R], kind CallKind, inv Invocation) *call[R] {
	c := &call[R]{key: g.key, kind: kind, inv: inv, result: newFuture[R]()}
	g.called = c.result
	w.obs.OnCall(g.key, kind)

	return c
}

// resolve is called when the wait timer of g fires.
func (w *Wrapped[R]) resolve(g *group[R], token uint64) {
	w.mux.Lock()

	if w.groups[g.key] != g || g.waitToken != token {
		// Stale timer: the group was closed or its wait timer re-armed.
		w.mux.Unlock()

		return
	}

	var c *call[R]
	if w.conf.HasMaxWait() && !w.clock.Now().Before(g.maxDeadline) && !g.waitFirst() {
		c = w.divide(g)
	} else {
		c = w.finish(g)
	}
	w.mux.Unlock()

	w.run(c)
}

// split is called when the max wait timer of g fires.
func (w *Wrapped[R]) split(g *group[R]) {
	w.mux.Lock()

	if w.groups[g.key] != g {
		w.mux.Unlock()

		return
	}

	var c *call[R]
	if !w.clock.Now().Before(g.waitDeadline) && g.waitFirst() {
		c = w.finish(g)
	} else {
		c = w.divide(g)
	}
	w.mux.Unlock()

	w.run(c)
}

// waitFirst reports whether the wait timer of g is due before its max wait
// timer. Timers due at the same instant go in the order they were armed, so
// on a tie the wait timer only goes first if it hasn't been re-armed since g
// opened.
func (g *group[R]) waitFirst() bool {
	if g.maxWaitTimer == nil {
		return true
	}

	if g.waitDeadline.Equal(g.maxDeadline) {
		return g.waitToken == 1
	}

	return g.waitDeadline.Before(g.maxDeadline)
}

// finish closes g once its wait has elapsed, making a trailing call unless it
// is disabled, or g saw a single attempt which already got a leading call. It
// should only be called while the mutex is already locked.
func (w *Wrapped[R]) finish(g *group[R]) *call[R] {
	var c *call[R]

	switch {
	case w.conf.Trailing && !w.suppressTrailing(g):
		c = w.begin(g, CallTrailing, g.last)
		g.result.follow(c.result)
	case g.called != nil:
		g.result.follow(g.called)
	default:
		var zero R
		g.result.settle(zero, ErrNoCall)
	}

	w.close(g, CloseWait)

	return c
}

// divide closes g once its max wait has elapsed. No trailing call is made for
// g. Instead a new group is opened in its place, seeded by the attempt that
// opened g, and the underlying function is called right away. g settles with
// its own leading or dividing call if it made one, otherwise with the new
// dividing call. It should only be called while the mutex is already locked.
func (w *Wrapped[R]) divide(g *group[R]) *call[R] {
	w.close(g, CloseMaxWait)

	next := w.open(g.key, g.seed)
	c := w.begin(next, CallDividing, g.seed)
	if g.called != nil {
		g.result.follow(g.called)
	} else {
		g.result.follow(c.result)
	}
	if !w.conf.Trailing {
		next.result.follow(c.result)
	}

	return c
}

func (w *Wrapped[R]) suppressTrailing(g *group[R]) bool {
	return g.attempts == 1 &&
		w.conf.Leading &&
		!w.conf.ForceDoubleCallEvenIfAttemptedOnlyOnes
}

// run makes the call, if any. It must be called without holding the mutex.
func (w *Wrapped[R]) run(c *call[R]) {
	if c == nil {
		return
	}

	w.log.V(1).Info("calling underlying function",
		"fingerprint", c.key.String(),
		"kind", c.kind.String(),
	)

	if p := bridge(w.fn, c); p != nil {
		w.log.Error(p, "underlying function panicked",
			"fingerprint", c.key.String(),
			"kind", c.kind.String(),
		)
	}
}
