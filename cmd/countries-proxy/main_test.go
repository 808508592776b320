package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/countries-proxy/pkg/config"
	"github.com/Sternrassler/countries-proxy/pkg/errorlog"
)

func TestRenderErrors(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	state := &errorlog.State{
		Errors: []errorlog.Event{
			{Timestamp: now.Add(-30 * time.Hour), Message: "stale failure"},
			{Timestamp: now.Add(-90 * time.Second), Message: "upstream client error (status 404): 404 Not Found"},
		},
		TotalRequests: 8,
	}

	out := renderErrors(state, now)

	for _, want := range []string{
		"stale failure",
		"404 Not Found",
		"2026-10-19T11:58:30Z",
		"1m30s",
		"8 requests",
		"1 in 24h",
		"error rate 12.50%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderErrors_Empty(t *testing.T) {
	out := renderErrors(&errorlog.State{Errors: []errorlog.Event{}}, time.Now())

	if !strings.Contains(out, "error rate 0.00%") {
		t.Errorf("rendered table missing zero rate:\n%s", out)
	}
}

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		in       string
		wantAddr string
		wantDB   int
		wantErr  bool
	}{
		{in: "localhost:6379", wantAddr: "localhost:6379"},
		{in: "redis://cache:6380/2", wantAddr: "cache:6380", wantDB: 2},
		{in: "redis://cache:6379/notanumber", wantErr: true},
	}

	for _, tt := range tests {
		opts, err := redisOptions(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("redisOptions(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if opts.Addr != tt.wantAddr || opts.DB != tt.wantDB {
			t.Errorf("redisOptions(%q) = %s/%d, want %s/%d", tt.in, opts.Addr, opts.DB, tt.wantAddr, tt.wantDB)
		}
	}
}

func TestOpenSnapshotter(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		cfg      config.ErrorLogConfig
		wantType string
		wantErr  bool
	}{
		{
			name:     "file",
			cfg:      config.ErrorLogConfig{Backend: config.BackendFile, Path: filepath.Join(dir, "log.json")},
			wantType: "*errorlog.FileStore",
		},
		{
			name:     "sqlite",
			cfg:      config.ErrorLogConfig{Backend: config.BackendSQLite, Path: filepath.Join(dir, "log.db")},
			wantType: "*errorlog.SQLiteStore",
		},
		{
			name:    "unknown",
			cfg:     config.ErrorLogConfig{Backend: "etcd"},
			wantErr: true,
		},
		{
			name:    "unreachable redis",
			cfg:     config.ErrorLogConfig{Backend: config.BackendRedis, RedisURL: "127.0.0.1:1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			store, closeStore, err := openSnapshotter(ctx, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("openSnapshotter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer closeStore()

			if got := typeName(store); got != tt.wantType {
				t.Errorf("store type = %s, want %s", got, tt.wantType)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *errorlog.FileStore:
		return "*errorlog.FileStore"
	case *errorlog.SQLiteStore:
		return "*errorlog.SQLiteStore"
	case *errorlog.RedisStore:
		return "*errorlog.RedisStore"
	}
	return "unknown"
}

func TestErrorsCommand_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_log.json")
	t.Setenv("ERROR_LOG_BACKEND", "file")
	t.Setenv("ERROR_LOG_PATH", path)

	seed := errorlog.State{
		Errors:        []errorlog.Event{{Timestamp: time.Now().Add(-time.Minute), Message: "boom"}},
		TotalRequests: 3,
	}
	if err := errorlog.NewFileStore(path).Save(context.Background(), &seed); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"errors", "--output", "json"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v (stderr %s)", err, stderr.String())
	}

	var got errorlog.State
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout.String())
	}
	if got.TotalRequests != 3 || len(got.Errors) != 1 || got.Errors[0].Message != "boom" {
		t.Errorf("output = %+v", got)
	}
}

func TestErrorsCommand_MissingSnapshot(t *testing.T) {
	t.Setenv("ERROR_LOG_BACKEND", "file")
	t.Setenv("ERROR_LOG_PATH", filepath.Join(t.TempDir(), "missing.json"))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"errors"})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() should fail without a snapshot")
	}
}

func TestErrorsCommand_BadFormat(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"errors", "--output", "xml"})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() should reject unknown output format")
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"serve", "errors"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	for _, flag := range []string{"config", "log-level"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestRootOptions_LogLevelOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")

	opts := &rootOptions{logLevel: "debug"}
	cfg, err := opts.load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}
