// Package proxy implements the caching middleware that answers a route from
// the response cache or, on a miss, from the upstream API.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sternrassler/countries-proxy/pkg/cache"
	"github.com/Sternrassler/countries-proxy/pkg/logging"
)

// FailureMessage is the only error text proxied callers ever see.
const FailureMessage = "An error occurred while processing your request."

// Upstream fetches a JSON document from the upstream API.
type Upstream interface {
	Get(ctx context.Context, path, rawQuery string) ([]byte, error)
}

// ErrorLog records request counts and failures.
type ErrorLog interface {
	IncrementRequestCount() int64
	LogError(ctx context.Context, err error)
	Persist(ctx context.Context) error
}

// Deps are the collaborators shared by every proxied route.
type Deps struct {
	Cache    cache.Store
	ErrorLog ErrorLog
	Upstream Upstream

	// TTL applied to every cached response. Zero never expires.
	TTL time.Duration

	// Logger defaults to the proxy component logger.
	Logger *zerolog.Logger

	// Tracer defaults to the global otel tracer.
	Tracer trace.Tracer
}

type handler struct {
	template string
	params   []string
	deps     Deps
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// New returns a handler proxying requests for template, e.g. "/alpha/{code}"
// or "/alpha/:code". Path parameters are read from the chi route context.
func New(template string, deps Deps) http.Handler {
	if deps.Cache == nil || deps.ErrorLog == nil || deps.Upstream == nil {
		panic("proxy: cache, error log and upstream are required")
	}

	h := &handler{
		template: template,
		params:   Placeholders(template),
		deps:     deps,
		tracer:   deps.Tracer,
	}
	if deps.Logger != nil {
		h.logger = *deps.Logger
	} else {
		h.logger = logging.NewLogger(logging.ComponentProxy)
	}
	if h.tracer == nil {
		h.tracer = otel.Tracer("github.com/Sternrassler/countries-proxy/pkg/proxy")
	}
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "proxy "+h.template,
		trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	// The snapshot is written once per request whatever the outcome, even if
	// the caller has gone away.
	persistCtx := context.WithoutCancel(ctx)
	defer func() {
		_ = h.deps.ErrorLog.Persist(persistCtx)
	}()

	h.deps.ErrorLog.IncrementRequestCount()

	body, hit, err := h.fetch(ctx, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream failure")
		proxyRequestsTotal.WithLabelValues(h.template, outcomeError).Inc()

		h.deps.ErrorLog.LogError(persistCtx, err)
		WriteJSONError(w, http.StatusInternalServerError, FailureMessage)
		return
	}

	span.SetAttributes(attribute.Bool("cache.hit", hit))

	cacheStatus := "MISS"
	outcome := outcomeMiss
	if hit {
		cacheStatus = "HIT"
		outcome = outcomeHit
	}
	proxyRequestsTotal.WithLabelValues(h.template, outcome).Inc()
	proxyResponseBytes.WithLabelValues(h.template).Observe(float64(len(body)))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// fetch returns the response body from the cache or the upstream. A panic
// anywhere along the way is returned as an error.
func (h *handler) fetch(ctx context.Context, r *http.Request) (body []byte, hit bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error().Interface("panic", rec).Str("route", h.template).Msg("Recovered panic in proxy")
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	path, err := ResolvePath(h.template, h.routeParams(r))
	if err != nil {
		return nil, false, err
	}
	key := cache.Key{Path: path, Query: r.URL.Query()}.String()

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("upstream.path", path))

	h.logger.Debug().Str("key", key).Msg("Cache lookup")

	if cached, ok := h.deps.Cache.Get(ctx, key); ok {
		h.logger.Debug().Str("key", key).Bool("cache_hit", true).Msg("CACHE HIT")
		return cached, true, nil
	}
	h.logger.Debug().Str("key", key).Bool("cache_hit", false).Msg("CACHE MISS")

	body, err = h.deps.Upstream.Get(ctx, path, r.URL.RawQuery)
	if err != nil {
		return nil, false, err
	}

	h.deps.Cache.Set(ctx, key, body, h.deps.TTL)
	return body, false, nil
}

func (h *handler) routeParams(r *http.Request) map[string]string {
	params := make(map[string]string, len(h.params))
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return params
	}
	for _, name := range h.params {
		value := rctx.URLParam(name)
		// chi matches on RawPath when the path carries escaped slashes
		if r.URL.RawPath != "" {
			if unescaped, err := url.PathUnescape(value); err == nil {
				value = unescaped
			}
		}
		params[name] = value
	}
	return params
}

type errorBody struct {
	Error string `json:"error"`
}

// WriteJSONError writes {"error": message} with status.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message})
}
