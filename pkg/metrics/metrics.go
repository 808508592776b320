// Package metrics provides the Prometheus registry and scrape handler for the
// proxy. All metrics are defined in their respective packages (cache,
// errorlog, client, proxy, server) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gatherer is the registry read by Handler. All metrics are registered on the
// default registry via promauto in their respective packages.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the /metrics exposition handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - countries_cache_hits_total{store} (Counter): Cache hits by store (memory, bounded)
//   - countries_cache_misses_total{store} (Counter): Cache misses, including expired entries
//   - countries_cache_expired_total{store} (Counter): Entries dropped on read after their TTL
//   - countries_cache_sets_total{store} (Counter): Entries written
//   - countries_cache_entries{store} (Gauge): Entries currently held
//
// Error Log Metrics (pkg/errorlog):
//   - countries_errors_logged_total (Counter): Failures recorded
//   - countries_errors_retained (Gauge): Events retained after the last prune
//   - countries_error_log_requests (Gauge): Persisted request counter
//   - countries_error_log_persist_failures_total (Counter): Failed snapshot writes
//
// Upstream Metrics (pkg/client):
//   - countries_upstream_requests_total{status} (Counter): Upstream requests by HTTP status
//   - countries_upstream_request_duration_seconds (Histogram): Upstream request duration
//   - countries_upstream_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Proxy Metrics (pkg/proxy):
//   - countries_proxy_requests_total{route, outcome} (Counter): Proxied requests by outcome (hit, miss, error)
//   - countries_proxy_response_bytes{route} (Histogram): Successful response body size
//
// HTTP Metrics (pkg/server):
//   - countries_http_requests_total{route, method, status} (Counter): All inbound requests
//   - countries_http_request_duration_seconds{route} (Histogram): Inbound request latency
//   - countries_http_panics_total (Counter): Panics caught by the recovery middleware
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(countries_proxy_requests_total{outcome="hit"}[5m])) /
//   sum(rate(countries_proxy_requests_total{outcome=~"hit|miss"}[5m]))
//
//   # Upstream Error Rate
//   sum by (class) (rate(countries_upstream_errors_total[5m]))
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(countries_upstream_request_duration_seconds_bucket[5m]))
//
//   # Snapshot write failures
//   increase(countries_error_log_persist_failures_total[1h]) > 0
