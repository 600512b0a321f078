package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/gamerec/internal/adapters/backend"
	"github.com/okian/gamerec/internal/adapters/eventbus"
	"github.com/okian/gamerec/internal/adapters/http/api"
	"github.com/okian/gamerec/internal/adapters/kvstore"
	service "github.com/okian/gamerec/internal/app"
	"github.com/okian/gamerec/internal/config"
	"github.com/okian/gamerec/internal/session"
	"github.com/okian/gamerec/pkg/logger"
	"github.com/okian/gamerec/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

// instance is one wired gamerec runtime.
type instance struct {
	store   kvstore.Store
	session *session.Session
	svc     *service.Service
	handler http.Handler
}

// close stops the service and releases the store.
func (in *instance) close(ctx context.Context) {
	in.svc.Stop()
	if err := in.store.Close(); err != nil {
		logger.Get().Error(ctx, "close store", logger.Error(err))
	}
}

// openStore opens the persistent store at path. An empty path, or a store
// that cannot be opened, yields a memory store.
func openStore(ctx context.Context, path string) kvstore.Store {
	if path == "" {
		return kvstore.NewMemoryStore()
	}
	store, err := kvstore.OpenBadger(path)
	if err != nil {
		logger.Get().Warn(ctx, "persistent store unavailable; using memory store",
			logger.String("store_path", path),
			logger.Error(err),
		)
		return kvstore.NewMemoryStore()
	}
	return store
}

// build wires the store, session, backend client, service and HTTP API.
func build(ctx context.Context, cfg *config.Config) (*instance, error) {
	in := &instance{store: openStore(ctx, cfg.StorePath)}

	in.session = session.New(in.store)
	in.session.Restore(ctx)

	sess := in.session
	var svc *service.Service
	client, err := backend.New(cfg.APIBaseURL,
		backend.WithTimeout(cfg.APITimeout()),
		backend.WithBreaker(uint32(cfg.BreakerFailures), cfg.BreakerTimeout()), //nolint:gosec // validated gte=1
		backend.WithTokenSource(sess),
		backend.WithUnauthorizedHook(func(ctx context.Context) { svc.Unauthorized(ctx) }),
	)
	if err != nil {
		_ = in.store.Close()
		return nil, fmt.Errorf("backend client: %w", err)
	}

	svc = service.New(
		service.WithStore(in.store),
		service.WithBackend(client),
		service.WithBus(eventbus.New()),
		service.WithSession(sess),
	)
	in.svc = svc
	if err := in.svc.Start(ctx); err != nil {
		_ = in.store.Close()
		return nil, fmt.Errorf("start service: %w", err)
	}

	in.handler = api.NewServer(in.svc, api.WithAllowedOrigins(cfg.AllowedOrigins())).Handler()
	return in, nil
}

func main() {
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		return
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	in, err := build(ctx, cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to start", logger.Error(err))
		return
	}
	defer in.close(context.Background())

	go startServiceMetricsUpdater(ctx, in.svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           in.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("api_base_url", cfg.APIBaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	loggerInstance.Info(shutdownCtx, "server stopped")
}

// startServiceMetricsUpdater periodically publishes service gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics copies the service stats into the gauges.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if n, ok := stats["subscribers"].(int); ok {
		metrics.UpdateSubscribers(n)
	}
	if n, ok := stats["panelItems"].(int); ok {
		metrics.UpdatePanelItems(n)
	}
}
