package debounce

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/zoobzio/clockz"
)

// Option configures a wrapped function. Options are applied in order, so a
// later option overrides an earlier one setting the same key.
type Option func(*settings)

type settings struct {
	options  Options
	clock    clockz.Clock
	logger   logr.Logger
	observer Observer
}

func newSettings(opts []Option) *settings {
	s := &settings{
		options:  Options{},
		clock:    clockz.RealClock,
		logger:   logr.Discard(),
		observer: NoopObserver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

func set(key string, v any) Option {
	return func(s *settings) {
		s.options[key] = v
	}
}

// Leading controls whether the underlying function is called at the start of
// an attempt group.
//
// When only leading is enabled, the first attempt of a burst calls the
// function immediately and every further attempt within the wait duration is
// folded into that call.
func Leading(enabled bool) Option {
	return set(KeyLeading, enabled)
}

// Trailing controls whether the underlying function is called once the wait
// duration has passed since the last attempt of a group. Enabled by default.
//
// If both leading and trailing are enabled, a burst of attempts calls the
// function immediately, followed by another call after the wait duration has
// passed since the last attempt. If only a single attempt is made, only one
// call occurs, unless ForceDoubleCall is enabled.
func Trailing(enabled bool) Option {
	return set(KeyTrailing, enabled)
}

// Wait sets the quiet period that separates attempt groups. Defaults to one
// second.
func Wait(wait time.Duration) Option {
	return set(KeyWait, wait)
}

// MaxWait sets the maximum lifetime of an attempt group. When it elapses the
// group is split: its timers are discarded and a new group is started with an
// immediate dividing call.
//
// Without a max wait, the function might never be called if attempts keep
// arriving within the wait duration and only trailing calls are enabled.
//
// For example, if the wait duration is 100ms and the max wait duration is
// 500ms, the function will be called every 500ms, even if attempts are made
// non-stop every 10ms.
func MaxWait(maxWait time.Duration) Option {
	return set(KeyMaxWait, maxWait)
}

// DifferentArgs controls whether the arguments take part in attempt identity.
// When disabled, attempts with different arguments share one group. Enabled by
// default.
func DifferentArgs(enabled bool) Option {
	return set(KeyDifferentArgs, enabled)
}

// DifferentThis controls whether the receiver takes part in attempt identity.
// Enabled by default.
func DifferentThis(enabled bool) Option {
	return set(KeyDifferentThis, enabled)
}

// TreatSimilarContextAsTheSame compares receivers by value instead of by
// reference, so two distinct pointers to equal structs share a group.
func TreatSimilarContextAsTheSame(enabled bool) Option {
	return set(KeyTreatSimilarContextAsTheSame, enabled)
}

// TreatSimilarArgsAsTheSame compares the arguments by value instead of by
// reference.
func TreatSimilarArgsAsTheSame(enabled bool) Option {
	return set(KeyTreatSimilarArgsAsTheSame, enabled)
}

// ForceDoubleCall makes a group with a single attempt produce both a leading
// and a trailing call when both edges are enabled.
func ForceDoubleCall(enabled bool) Option {
	return set(KeyForceDoubleCall, enabled)
}

// WithOptions merges a raw options bag, as returned by LoadOptions.
func WithOptions(o Options) Option {
	return func(s *settings) {
		for k, v := range o {
			s.options[k] = v
		}
	}
}

// WithClock sets the clock used for the wait and max wait timers.
func WithClock(clock clockz.Clock) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger. Group lifecycle and calls are logged at V(1).
func WithLogger(logger logr.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithObserver registers an Observer for attempt, call and group events.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}
