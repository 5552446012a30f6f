// Package metrics holds the Prometheus collectors of the service. They are
// registered on the default registry and exposed by promhttp on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	treeMoves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vantage",
		Subsystem: "tree",
		Name:      "moves_total",
		Help:      "Drag ends broken down by result (moved, noop, rejected).",
	}, []string{"result"})

	treeMoveRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vantage",
		Subsystem: "tree",
		Name:      "move_rejections_total",
		Help:      "Rejected moves broken down by rejection reason.",
	}, []string{"reason"})

	treePersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vantage",
		Subsystem: "tree",
		Name:      "persist_failures_total",
		Help:      "Reorder payloads that failed to persist after an optimistic commit.",
	})

	treeCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vantage",
		Subsystem: "tree",
		Name:      "cache_requests_total",
		Help:      "Snapshot cache lookups broken down by result (hit, miss, error).",
	}, []string{"result"})

	authzDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vantage",
		Subsystem: "authz",
		Name:      "decisions_total",
		Help:      "Authorization decisions broken down by action and result.",
	}, []string{"action", "result"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vantage",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests broken down by method, route and status code.",
	}, []string{"method", "route", "code"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vantage",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for HTTP requests.",
		Buckets: []float64{
			0.001, 0.005, 0.01, 0.025,
			0.05, 0.1, 0.25, 0.5,
			1, 2.5, 5,
		},
	}, []string{"method", "route"})
)

// Move results
const (
	MoveMoved    = "moved"
	MoveNoop     = "noop"
	MoveRejected = "rejected"
)

// RecordMove counts a drag end. reason is only used for rejections.
func RecordMove(result, reason string) {
	treeMoves.With(prometheus.Labels{"result": result}).Inc()
	if result == MoveRejected {
		treeMoveRejections.With(prometheus.Labels{"reason": reason}).Inc()
	}
}

func RecordPersistFailure() {
	treePersistFailures.Inc()
}

// RecordCacheLookup counts a snapshot cache lookup
func RecordCacheLookup(hit bool, err error) {
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case hit:
		result = "hit"
	}
	treeCache.With(prometheus.Labels{"result": result}).Inc()
}

func RecordAuthzDecision(action string, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	authzDecisions.With(prometheus.Labels{
		"action": action,
		"result": result,
	}).Inc()
}

// RecordHTTPRequest counts a served request. route is the mux pattern, not the
// raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, code int, latency time.Duration) {
	httpRequests.With(prometheus.Labels{
		"method": method,
		"route":  route,
		"code":   strconv.Itoa(code),
	}).Inc()
	httpLatency.With(prometheus.Labels{
		"method": method,
		"route":  route,
	}).Observe(latency.Seconds())
}
