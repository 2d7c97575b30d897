package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Lifecycle records shipment lifecycle activity. A nil *Lifecycle is a valid
// no-op recorder.
type Lifecycle struct {
	transitions *prometheus.CounterVec
	attempts    *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	viewCache   *prometheus.CounterVec
}

// NewLifecycle registers the lifecycle metrics on the provided registerer.
func NewLifecycle(reg prometheus.Registerer) *Lifecycle {
	if reg == nil {
		return &Lifecycle{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipment_transitions_total",
		Help: "Shipment status transitions by source, destination and result.",
	}, []string{"from", "to", "result"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_attempts_total",
		Help: "Recorded delivery attempts by outcome.",
	}, []string{"outcome"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_conflicts_total",
		Help: "Optimistic concurrency conflicts by operation.",
	}, []string{"operation"})
	viewCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipment_view_cache_total",
		Help: "Shipment view cache lookups by result (hit, miss, error).",
	}, []string{"result"})
	reg.MustRegister(transitions, attempts, conflicts, viewCache)
	return &Lifecycle{
		transitions: transitions,
		attempts:    attempts,
		conflicts:   conflicts,
		viewCache:   viewCache,
	}
}

// ObserveTransition counts a transition outcome ("ok" or an error code).
func (l *Lifecycle) ObserveTransition(from, to, result string) {
	if l == nil || l.transitions == nil {
		return
	}
	l.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to), normalizeLabel(result)).Inc()
}

// IncAttempt counts a recorded delivery attempt.
func (l *Lifecycle) IncAttempt(outcome string) {
	if l == nil || l.attempts == nil {
		return
	}
	l.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncConflict counts an optimistic concurrency conflict.
func (l *Lifecycle) IncConflict(operation string) {
	if l == nil || l.conflicts == nil {
		return
	}
	l.conflicts.WithLabelValues(normalizeLabel(operation)).Inc()
}

// ObserveViewCache counts a view cache lookup.
func (l *Lifecycle) ObserveViewCache(result string) {
	if l == nil || l.viewCache == nil {
		return
	}
	l.viewCache.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
