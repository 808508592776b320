package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/countries-proxy/pkg/config"
	"github.com/Sternrassler/countries-proxy/pkg/errorlog"
)

// defaultSQLitePath replaces the JSON default path for the sqlite backend.
const defaultSQLitePath = "error_log.db"

// openSnapshotter opens the configured error log snapshot backend. The
// returned close function releases its connections.
func openSnapshotter(ctx context.Context, cfg config.ErrorLogConfig) (errorlog.Snapshotter, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendFile, "":
		return errorlog.NewFileStore(cfg.Path), noop, nil

	case config.BackendSQLite:
		path := cfg.Path
		if path == config.DefaultErrorLogPath {
			path = defaultSQLitePath
		}
		store, err := errorlog.NewSQLiteStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite snapshot store: %w", err)
		}
		return store, store.Close, nil

	case config.BackendRedis:
		opts, err := redisOptions(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		redisClient := redis.NewClient(opts)
		store := errorlog.NewRedisStore(redisClient, "")
		if err := store.Ping(ctx); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
		}
		return store, redisClient.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown error log backend %q", cfg.Backend)
	}
}

// redisOptions accepts either a redis:// URL or a bare host:port address.
func redisOptions(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}
