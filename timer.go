package debounce

import (
	"github.com/zoobzio/clockz"
)

// armWait (re)starts the wait timer of g. Every arm gets a new token, so a
// timer that fires after being replaced is recognized as stale even if Stop
// came too late to prevent it from running. It should only be called while
// the mutex is already locked.
func (w *Wrapped[R]) armWait(g *group[R]) {
	stopTimer(g.waitTimer)

	g.waitToken++
	token := g.waitToken
	g.waitDeadline = w.clock.Now().Add(w.conf.Wait)

	g.waitTimer = w.clock.AfterFunc(w.conf.Wait, w.detach(func() {
		w.resolve(g, token)
	}))
}

// armMaxWait starts the max wait timer of a new group. It is never re-armed,
// the deadline counts from the group's creation. It should only be called
// while the mutex is already locked.
func (w *Wrapped[R]) armMaxWait(g *group[R]) {
	if !w.conf.HasMaxWait() {
		return
	}

	g.maxDeadline = w.clock.Now().Add(w.conf.MaxWait)
	g.maxWaitTimer = w.clock.AfterFunc(w.conf.MaxWait, w.detach(func() {
		w.split(g)
	}))
}

// detach returns a timer callback that runs fn on its own goroutine. Clocks
// may fire callbacks while holding their own lock, and fn stops and arms
// timers on that same clock.
func (w *Wrapped[R]) detach(fn func()) func() {
	return func() {
		w.fired.Add(1)

		go func() {
			defer w.fired.Done()
			fn()
		}()
	}
}

// drain blocks until every timer callback that has fired so far has
// returned.
func (w *Wrapped[R]) drain() {
	w.fired.Wait()
}

// stopTimer stops t if it was ever started.
func stopTimer(t clockz.Timer) {
	if t != nil {
		t.Stop()
	}
}
