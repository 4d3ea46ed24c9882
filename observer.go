package debounce

// CloseReason tells why an attempt group closed.
type CloseReason int

const (
	// CloseWait means the wait timer fired after the group's last attempt.
	CloseWait CloseReason = iota + 1
	// CloseMaxWait means the group was split by its max wait timer.
	CloseMaxWait
)

func (r CloseReason) String() string {
	switch r {
	case CloseWait:
		return "wait"
	case CloseMaxWait:
		return "max_wait"
	default:
		return "unknown"
	}
}

// Observer receives attempt group events. Callbacks run while the wrapped
// function's state is locked, so they must be quick and must not attempt the
// wrapped function again.
type Observer interface {
	// OnAttempt is called for every attempt. attempts is the group's attempt
	// count including this one, so 1 means the attempt opened a new group.
	OnAttempt(key Fingerprint, attempts int)
	// OnCall is called right before the underlying function is called.
	OnCall(key Fingerprint, kind CallKind)
	// OnGroupClose is called when a group closes.
	OnGroupClose(key Fingerprint, reason CloseReason, attempts int)
}

// NoopObserver implements Observer with no-op methods. Embed it to implement
// only some of the callbacks.
type NoopObserver struct{}

// OnAttempt does nothing.
func (NoopObserver) OnAttempt(Fingerprint, int) {}

// OnCall does nothing.
func (NoopObserver) OnCall(Fingerprint, CallKind) {}

// OnGroupClose does nothing.
func (NoopObserver) OnGroupClose(Fingerprint, CloseReason, int) {}

// MultiObserver fans out events to multiple observers.
type MultiObserver []Observer

func (m MultiObserver) OnAttempt(key Fingerprint, attempts int) {
	for _, o := range m {
		if o != nil {
			o.OnAttempt(key, attempts)
		}
	}
}

func (m MultiObserver) OnCall(key Fingerprint, kind CallKind) {
	for _, o := range m {
		if o != nil {
			o.OnCall(key, kind)
		}
	}
}

func (m MultiObserver) OnGroupClose(key Fingerprint, reason CloseReason, attempts int) {
	for _, o := range m {
		if o != nil {
			o.OnGroupClose(key, reason, attempts)
		}
	}
}
