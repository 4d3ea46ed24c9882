// Package debounceprom exports attempt group events of a debounce.Wrapped as
// Prometheus metrics.
package debounceprom

import (
	"github.com/prometheus/client_golang/prometheus"

	debounce "github.com/Oriery/advanced-throttle-debounce"
)

// Observer implements debounce.Observer on top of Prometheus collectors. One
// Observer can be shared by several wrapped functions if they are given
// distinct names.
type Observer struct {
	name string

	attempts   *prometheus.CounterVec
	calls      *prometheus.CounterVec
	closed     *prometheus.CounterVec
	open       *prometheus.GaugeVec
	groupSizes *prometheus.HistogramVec
}

var _ debounce.Observer = (*Observer)(nil)

// New registers the debounce collectors with reg and returns an Observer
// labelling its samples with name.
func New(reg prometheus.Registerer, name string) (*Observer, error) {
	o := &Observer{
		name: name,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "debounce",
			Name:      "attempts_total",
			Help:      "Attempts made on wrapped functions.",
		}, []string{"name"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "debounce",
			Name:      "calls_total",
			Help:      "Calls of underlying functions by kind.",
		}, []string{"name", "kind"}),
		closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "debounce",
			Name:      "groups_closed_total",
			Help:      "Attempt groups closed by reason.",
		}, []string{"name", "reason"}),
		open: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "debounce",
			Name:      "groups_open",
			Help:      "Attempt groups currently open.",
		}, []string{"name"}),
		groupSizes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "debounce",
			Name:      "group_attempts",
			Help:      "Attempts folded into each closed attempt group.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"name"}),
	}

	for _, c := range []prometheus.Collector{
		o.attempts, o.calls, o.closed, o.open, o.groupSizes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Named returns an Observer sharing o's collectors but labelling its samples
// with name.
func (o *Observer) Named(name string) *Observer {
	cp := *o
	cp.name = name

	return &cp
}

func (o *Observer) OnAttempt(_ debounce.Fingerprint, attempts int) {
	o.attempts.WithLabelValues(o.name).Inc()
	if attempts == 1 {
		o.open.WithLabelValues(o.name).Inc()
	}
}

func (o *Observer) OnCall(_ debounce.Fingerprint, kind debounce.CallKind) {
	o.calls.WithLabelValues(o.name, kind.String()).Inc()
	if kind == debounce.CallDividing {
		// The dividing call opens a group without an attempt.
		o.open.WithLabelValues(o.name).Inc()
	}
}

func (o *Observer) OnGroupClose(
	_ debounce.Fingerprint,
	reason debounce.CloseReason,
	attempts int,
) {
	o.closed.WithLabelValues(o.name, reason.String()).Inc()
	o.open.WithLabelValues(o.name).Dec()
	o.groupSizes.WithLabelValues(o.name).Observe(float64(attempts))
}
