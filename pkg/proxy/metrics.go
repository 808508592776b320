package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes.
const (
	outcomeHit   = "hit"
	outcomeMiss  = "miss"
	outcomeError = "error"
)

// Prometheus metrics for proxied requests.
var (
	proxyRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "countries_proxy_requests_total",
		Help: "Total proxied requests by route and outcome (hit, miss, error)",
	}, []string{"route", "outcome"})

	proxyResponseBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "countries_proxy_response_bytes",
		Help:    "Size of successful proxied response bodies",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{"route"})
)
