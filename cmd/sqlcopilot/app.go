package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/leofalp/sqlcopilot/core/copilot"
	"github.com/leofalp/sqlcopilot/core/copilot/middleware"
	"github.com/leofalp/sqlcopilot/core/history"
	"github.com/leofalp/sqlcopilot/core/messaging"
	"github.com/leofalp/sqlcopilot/internal/settings"
	"github.com/leofalp/sqlcopilot/providers/kv"
	"github.com/leofalp/sqlcopilot/providers/kv/filestore"
	"github.com/leofalp/sqlcopilot/providers/kv/inmemory"
	"github.com/leofalp/sqlcopilot/providers/kv/redisstore"
	"github.com/leofalp/sqlcopilot/providers/kv/sqlstore"
	"github.com/leofalp/sqlcopilot/providers/observability"
	"github.com/leofalp/sqlcopilot/providers/observability/promobs"
	"github.com/leofalp/sqlcopilot/providers/observability/slogobs"
)

// app wires one process: store, observers, façade, history and hub.
type app struct {
	settings *settings.Settings
	store    kv.Store
	closers  []func() error

	logger   *slog.Logger
	observer *promobs.Observer
	registry *prometheus.Registry

	manager  *copilot.Manager
	messages *history.History
	hub      *messaging.Hub
}

func newApp(ctx context.Context, s *settings.Settings, logOutput io.Writer) (*app, error) {
	level, _ := slogobs.ParseLevel(s.Log.Level)
	logs := slogobs.New(
		slogobs.WithOutput(logOutput),
		slogobs.WithFormat(slogobs.ParseFormat(s.Log.Format)),
		slogobs.WithLevel(level),
	)
	slog.SetDefault(logs.Logger())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observer := promobs.New(logs, registry)

	a := &app{
		settings: s,
		logger:   logs.Logger(),
		observer: observer,
		registry: registry,
	}

	store, closer, err := openStore(ctx, s.Store)
	if err != nil {
		return nil, err
	}
	a.store = store
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	logLevel := middleware.LogLevelStandard
	if level < slog.LevelDebug {
		logLevel = middleware.LogLevelVerbose
	}

	a.manager = copilot.New(store,
		copilot.WithObserver(observer),
		copilot.WithMiddleware(middleware.NewLoggingMiddleware(a.logger, logLevel)),
	)
	a.messages = history.New(store)
	a.hub = messaging.NewHub(messaging.WithObserver(observer))

	a.logger.Debug("store opened",
		slog.String(observability.AttrStoreBackend, s.Store.Backend),
		slog.String("store.path", s.Store.Path),
	)
	return a, nil
}

// Close releases the store. Errors are logged; there is nothing left to do
// with them on the way out.
func (a *app) Close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.logger.Warn("failed to close store", slog.String("error", err.Error()))
		}
	}
}

// openStore returns the configured backend and an optional close function.
func openStore(ctx context.Context, s settings.StoreSettings) (kv.Store, func() error, error) {
	switch s.Backend {
	case settings.BackendMemory:
		return inmemory.New(), nil, nil

	case settings.BackendFile:
		store, err := filestore.New(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil

	case settings.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(s.Path), 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		store, err := sqlstore.Open(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case settings.BackendRedis:
		store, client, err := redisstore.Dial(ctx, s.RedisAddr, s.RedisPassword, s.RedisDB, s.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, client.Close, nil
	}

	return nil, nil, errors.New("unknown store backend " + s.Backend)
}
