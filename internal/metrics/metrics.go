// Package metrics exposes Prometheus metrics for auth calls and link redirects.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records application metrics into a Prometheus registry
type Collector struct {
	authCalls   *prometheus.CounterVec
	authLatency *prometheus.HistogramVec
	redirects   *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redirly_auth_calls_total",
			Help: "Auth provider calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		authLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "redirly_auth_call_duration_seconds",
			Help:    "Auth provider call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redirly_redirects_total",
			Help: "Link redirects by result",
		}, []string{"result"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redirly_link_cache_lookups_total",
			Help: "Link cache lookups by result",
		}, []string{"result"}),
	}

	reg.MustRegister(c.authCalls, c.authLatency, c.redirects, c.cacheHits)
	return c
}

// ObserveAuth records one auth facade call
func (c *Collector) ObserveAuth(operation, outcome string, elapsed time.Duration) {
	c.authCalls.WithLabelValues(operation, outcome).Inc()
	c.authLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveRedirect records a redirect attempt. result is one of
// "android", "ios", "default", "not_found", "inactive".
func (c *Collector) ObserveRedirect(result string) {
	c.redirects.WithLabelValues(result).Inc()
}

// ObserveCacheLookup records a link cache hit or miss
func (c *Collector) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheHits.WithLabelValues(result).Inc()
}

// Handler returns the HTTP handler serving metrics from gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
