package errorlog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the error log.
var (
	errorsLoggedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "countries_errors_logged_total",
		Help: "Total number of failures recorded in the error log",
	})

	errorsRetained = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "countries_errors_retained",
		Help: "Number of error events retained after the last prune",
	})

	requestsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "countries_error_log_requests",
		Help: "Persisted total request counter",
	})

	persistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "countries_error_log_persist_failures_total",
		Help: "Total number of failed error log snapshot writes",
	})
)
