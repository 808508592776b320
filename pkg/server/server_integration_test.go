//go:build integration

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/countries-proxy/internal/testutil"
	"github.com/Sternrassler/countries-proxy/pkg/cache"
	"github.com/Sternrassler/countries-proxy/pkg/client"
	"github.com/Sternrassler/countries-proxy/pkg/errorlog"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// startProcess wires a full proxy against the shared Redis snapshot, as the
// serve command does.
func startProcess(t *testing.T, redisClient *redis.Client, upstreamURL string) http.Handler {
	t.Helper()

	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)

	elog := errorlog.New(errorlog.NewRedisStore(redisClient, ""), errorlog.WithLogger(logger))
	if err := elog.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	store, err := cache.New(0, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	upstream, err := client.New(client.DefaultConfig(upstreamURL, "countries-proxy-integration/1.0"))
	if err != nil {
		t.Fatal(err)
	}

	return New(Deps{
		Cache:    store,
		ErrorLog: elog,
		Upstream: upstream,
		CacheTTL: time.Hour,
		Logger:   &logger,
	})
}

// TestFullRequestFlow covers cache miss, cache hit, upstream failure and
// error log persistence across a restart.
func TestFullRequestFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/alpha/us", testutil.NewJSONResponse(testutil.CountryUS))

	// First process
	h := startProcess(t, redisClient, mock.URL())

	t.Log("Request 1: cache miss")
	if rec := do(h, http.MethodGet, "/alpha/us", nil); rec.Code != http.StatusOK {
		t.Fatalf("Request 1 status = %d", rec.Code)
	}

	t.Log("Request 2: cache hit")
	if rec := do(h, http.MethodGet, "/alpha/us", nil); rec.Header().Get("X-Cache") != "HIT" {
		t.Errorf("Request 2 X-Cache = %q, want HIT", rec.Header().Get("X-Cache"))
	}

	t.Log("Request 3: upstream 404")
	if rec := do(h, http.MethodGet, "/name/doesnotexist", nil); rec.Code != http.StatusInternalServerError {
		t.Errorf("Request 3 status = %d, want 500", rec.Code)
	}

	if mock.RequestCount() != 2 {
		t.Errorf("upstream requests = %d, want 2", mock.RequestCount())
	}

	// Second process: the response cache starts empty, the error log does not.
	h = startProcess(t, redisClient, mock.URL())

	rec := do(h, http.MethodGet, "/health", nil)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["totalRequests"] != float64(3) {
		t.Errorf("totalRequests after restart = %v, want 3", body["totalRequests"])
	}
	if body["errorsLast24h"] != float64(1) {
		t.Errorf("errorsLast24h after restart = %v, want 1", body["errorsLast24h"])
	}
	if body["errorRate"] != "33.33%" {
		t.Errorf("errorRate after restart = %v, want 33.33%%", body["errorRate"])
	}

	if rec := do(h, http.MethodGet, "/alpha/us", nil); rec.Header().Get("X-Cache") != "MISS" {
		t.Errorf("X-Cache after restart = %q, want MISS", rec.Header().Get("X-Cache"))
	}
}
