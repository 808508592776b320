// Package server implements the HTTP transport layer for the countries proxy.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sternrassler/countries-proxy/pkg/cache"
	"github.com/Sternrassler/countries-proxy/pkg/errorlog"
	"github.com/Sternrassler/countries-proxy/pkg/health"
	"github.com/Sternrassler/countries-proxy/pkg/logging"
	"github.com/Sternrassler/countries-proxy/pkg/metrics"
	"github.com/Sternrassler/countries-proxy/pkg/proxy"
)

// Routes are the proxied GET routes. Each inbound path maps onto the
// upstream path of the same shape.
var Routes = []string{
	"/independent",
	"/all",
	"/name/{name}",
	"/alpha/{code}",
	"/currency/{currency}",
	"/lang/{language}",
	"/capital/{capital}",
	"/region/{region}",
}

// Response bodies outside the proxied routes.
const (
	MessageNotFound      = "Not found"
	MessageInternalError = "Something went wrong!"
)

// ErrorLog is the error log as seen by the server: the proxy's view plus
// read access for health reports.
type ErrorLog interface {
	proxy.ErrorLog
	Snapshot() errorlog.State
}

// Deps holds all dependencies for the HTTP server.
type Deps struct {
	Cache    cache.Store
	ErrorLog ErrorLog
	Upstream proxy.Upstream
	CacheTTL time.Duration
	Started  time.Time      // zero = now
	Logger   *zerolog.Logger // nil = server component logger
	Tracer   trace.Tracer    // nil = global tracer
}

type server struct {
	deps   Deps
	logger zerolog.Logger
}

// New creates an http.Handler with all routes and middleware wired.
func New(deps Deps) http.Handler {
	if deps.Started.IsZero() {
		deps.Started = time.Now()
	}
	s := &server{deps: deps}
	if deps.Logger != nil {
		s.logger = *deps.Logger
	} else {
		s.logger = logging.NewLogger(logging.ComponentServer)
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(s.recovery)
	r.Use(s.requestID)
	r.Use(s.logging)
	r.Use(metricsMiddleware)

	proxyDeps := proxy.Deps{
		Cache:    deps.Cache,
		ErrorLog: deps.ErrorLog,
		Upstream: deps.Upstream,
		TTL:      deps.CacheTTL,
		Logger:   deps.Logger,
		Tracer:   deps.Tracer,
	}
	for _, route := range Routes {
		r.Method(http.MethodGet, route, proxy.New(route, proxyDeps))
	}

	r.Method(http.MethodGet, "/health", health.NewReporter(deps.ErrorLog, deps.Started))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		proxy.WriteJSONError(w, http.StatusNotFound, MessageNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		proxy.WriteJSONError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight
// requests for at most shutdownTimeout.
func Run(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("REST Countries proxy listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
