// Package metrics exposes Prometheus collectors for contract calls and the
// HTTP query surface.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	mints = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nft_layer",
			Subsystem: "issuance",
			Name:      "mints_total",
			Help:      "Mint calls by kind (owner, public) and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	rejectedCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nft_layer",
			Subsystem: "issuance",
			Name:      "rejected_calls_total",
			Help:      "Contract calls rejected, by operation and reason.",
		},
		[]string{"op", "reason"},
	)

	queries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nft_layer",
			Subsystem: "issuance",
			Name:      "queries_total",
			Help:      "Read-only contract queries by operation.",
		},
		[]string{"op"},
	)

	upgrades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nft_layer",
			Subsystem: "issuance",
			Name:      "upgrades_total",
			Help:      "Committed logic upgrades by target version.",
		},
		[]string{"version"},
	)

	commitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nft_layer",
			Subsystem: "issuance",
			Name:      "commit_duration_seconds",
			Help:      "Time spent persisting committed state.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op"},
	)

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nft_layer",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nft_layer",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nft_layer",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		mints,
		rejectedCalls,
		queries,
		upgrades,
		commitDuration,
		httpInFlight,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordMint counts a mint attempt. kind is "owner" or "public".
func RecordMint(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	mints.WithLabelValues(kind, outcome).Inc()
}

// RecordRejected counts a rejected contract call.
func RecordRejected(op, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	rejectedCalls.WithLabelValues(op, reason).Inc()
}

// RecordQuery counts a read-only query.
func RecordQuery(op string) {
	queries.WithLabelValues(op).Inc()
}

// RecordUpgrade counts a committed upgrade.
func RecordUpgrade(version string) {
	upgrades.WithLabelValues(version).Inc()
}

// RecordCommit observes the time spent persisting a committed call.
func RecordCommit(op string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Microsecond
	}
	commitDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// InstrumentHandler wraps next with HTTP request metrics.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// canonicalPath collapses addresses and token ids so label cardinality stays
// bounded: /contracts/<addr>/tokens/7/uri -> /contracts/:address/tokens/:id/uri.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "contracts" {
		return "/" + parts[0]
	}
	out := []string{"contracts"}
	for i := 1; i < len(parts); i++ {
		switch {
		case i == 1:
			out = append(out, ":address")
		case parts[i-1] == "tokens":
			out = append(out, ":id")
		case parts[i-1] == "balances":
			out = append(out, ":account")
		default:
			out = append(out, parts[i])
		}
	}
	return "/" + strings.Join(out, "/")
}
