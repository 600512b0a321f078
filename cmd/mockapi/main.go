// Command mockapi serves an in-memory game recommendation API for local
// development of gamerec instances.
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

	"github.com/okian/gamerec/internal/config"
	"github.com/okian/gamerec/internal/mockapi"
	"github.com/okian/gamerec/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Named("mockapi")

	srv := &http.Server{
		Addr:              cfg.MockAddr,
		Handler:           mockapi.New(cfg.MockJWTSecret).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info(ctx, "mock API listening", logger.String("addr", cfg.MockAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "mock API failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "mock API shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "mock API stopped")
}
