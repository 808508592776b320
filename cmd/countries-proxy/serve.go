package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/dnscache"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/countries-proxy/pkg/cache"
	"github.com/Sternrassler/countries-proxy/pkg/client"
	"github.com/Sternrassler/countries-proxy/pkg/errorlog"
	"github.com/Sternrassler/countries-proxy/pkg/logging"
	"github.com/Sternrassler/countries-proxy/pkg/server"
	"github.com/Sternrassler/countries-proxy/pkg/tracing"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the caching proxy (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	started := time.Now()

	cfg, err := opts.load()
	if err != nil {
		return err
	}
	logger := setupLogging(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTelEndpoint, cfg.OTelSampleRate)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("Tracer shutdown failed")
		}
	}()

	store, closeStore, err := openSnapshotter(ctx, cfg.ErrorLog)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info().Str("backend", cfg.ErrorLog.Backend).Msg("Error log snapshot store ready")

	errorLog := errorlog.New(store, errorlog.WithLogger(logging.NewLogger(logging.ComponentErrorLog)))
	if err := errorLog.Initialize(ctx); err != nil {
		// Serving continues; the next successful write restores the snapshot.
		logger.Warn().Err(err).Msg("Error log snapshot could not be written at startup")
	}

	responseCache, err := cache.New(cfg.CacheMaxEntries, cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}

	var resolver *dnscache.Resolver
	if cfg.DNSRefreshInterval > 0 {
		resolver = &dnscache.Resolver{}
	}

	upstream, err := client.New(client.Config{
		BaseURL:   cfg.UpstreamURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.UpstreamTimeout,
		Resolver:  resolver,
	})
	if err != nil {
		return fmt.Errorf("create upstream client: %w", err)
	}

	handler := server.New(server.Deps{
		Cache:    responseCache,
		ErrorLog: errorLog,
		Upstream: upstream,
		CacheTTL: cfg.CacheTTL,
		Started:  started,
		Tracer:   tracing.Tracer("github.com/Sternrassler/countries-proxy"),
	})

	logger.Info().
		Str("upstream", upstream.BaseURL()).
		Dur("cache_ttl", cfg.CacheTTL).
		Int("cache_max_entries", cfg.CacheMaxEntries).
		Msg("Starting REST Countries proxy")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, cfg.Addr(), handler, cfg.ShutdownTimeout, logger)
	})
	if resolver != nil {
		refresher := client.NewResolverRefresher(resolver, cfg.DNSRefreshInterval, logging.NewLogger(logging.ComponentUpstream))
		g.Go(func() error {
			return refresher.Run(gctx)
		})
	}

	runErr := g.Wait()

	if err := errorLog.Persist(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Final error log persist failed")
	}
	logger.Info().Msg("Stopped")
	return runErr
}
