// Package metrics records client-side call outcomes for Prometheus.
package metrics

import (
	"strings"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the gateway's metric vectors. A nil *Collector is valid and
// records nothing.
type Collector struct {
	calls     *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New builds a collector and registers it with reg when reg is non-nil
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "therapist_api_calls_total",
				Help: "Gateway calls by endpoint and final outcome.",
			},
			[]string{"method", "endpoint", "outcome"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "therapist_token_refreshes_total",
				Help: "Access token refresh attempts by result.",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "therapist_api_call_duration_seconds",
				Help:    "Gateway call latency including refresh retries.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
	if reg != nil {
		reg.MustRegister(c.calls, c.refreshes, c.duration)
	}
	return c
}

// ObserveCall records one finished gateway call
func (c *Collector) ObserveCall(method, endpoint, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	path := CanonicalEndpoint(endpoint)
	c.calls.WithLabelValues(method, path, outcome).Inc()
	c.duration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveRefresh records one refresh attempt
func (c *Collector) ObserveRefresh(result string) {
	if c == nil {
		return
	}
	c.refreshes.WithLabelValues(result).Inc()
}

// Calls exposes the call counter for tests
func (c *Collector) Calls() *prometheus.CounterVec { return c.calls }

// Refreshes exposes the refresh counter for tests
func (c *Collector) Refreshes() *prometheus.CounterVec { return c.refreshes }

// CanonicalEndpoint strips the query string and replaces identifier segments
// with ":id" to keep label cardinality bounded.
func CanonicalEndpoint(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	endpoint = strings.Trim(endpoint, "/")
	if endpoint == "" {
		return "/"
	}

	parts := strings.Split(endpoint, "/")
	for i, part := range parts {
		if isIdentifier(part) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// isIdentifier matches numeric ids, Mongo object ids and UUIDs
func isIdentifier(segment string) bool {
	if segment == "" {
		return false
	}
	hasDigit := false
	for _, r := range segment {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case r == '-' || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F'):
		default:
			return false
		}
	}
	return hasDigit
}
