// Package metrics exports dispatch and resolution-cache activity as
// Prometheus collectors.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zjrosen/conddispatch/internal/rescache"
)

const namespace = "conddispatch"

// PromSink records dispatch outcomes, latency and cache activity.
type PromSink struct {
	dispatches    *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	evicted       *prometheus.CounterVec
}

var _ rescache.StatsRecorder = (*PromSink)(nil)

// NewPromSink registers the collectors on reg, or on the default registerer
// when reg is nil. Collectors that are already registered are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	s := &PromSink{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Dispatch calls by group and outcome.",
		}, []string{"group", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent resolving and invoking a candidate.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"group"}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Resolutions answered from the cache.",
		}, []string{"group"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Resolutions that evaluated predicates.",
		}, []string{"group"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Group invalidations triggered by registry changes.",
		}, []string{"group"}),
		evicted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "evicted_entries_total",
			Help:      "Cache entries dropped by invalidation.",
		}, []string{"group"}),
	}

	var err error
	if s.dispatches, err = register(reg, s.dispatches); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.hits, err = register(reg, s.hits); err != nil {
		return nil, err
	}
	if s.misses, err = register(reg, s.misses); err != nil {
		return nil, err
	}
	if s.invalidations, err = register(reg, s.invalidations); err != nil {
		return nil, err
	}
	if s.evicted, err = register(reg, s.evicted); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// CacheHit implements rescache.StatsRecorder.
func (s *PromSink) CacheHit(group string) {
	s.hits.WithLabelValues(group).Inc()
}

// CacheMiss implements rescache.StatsRecorder.
func (s *PromSink) CacheMiss(group string) {
	s.misses.WithLabelValues(group).Inc()
}

// CacheInvalidated implements rescache.StatsRecorder.
func (s *PromSink) CacheInvalidated(group string, evicted int) {
	s.invalidations.WithLabelValues(group).Inc()
	s.evicted.WithLabelValues(group).Add(float64(evicted))
}
