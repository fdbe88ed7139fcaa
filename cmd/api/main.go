// Package main starts the archlint HTTP server: plan validation, graph
// compilation, validation statistics, health probes and Prometheus metrics.
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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/archlint/core/internal/config"
	"github.com/archlint/core/internal/engine"
	"github.com/archlint/core/internal/logging"
	"github.com/archlint/core/internal/metrics"
	"github.com/archlint/core/internal/ratelimit"
	"github.com/archlint/core/internal/service"
	"github.com/archlint/core/internal/store"
)

const limiterSweepInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.GinMode)

	st, err := store.Open(storeConfig(cfg, logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("closing store", zap.Error(err))
		}
	}()

	var opts []engine.Option
	if cfg.EngineVersion != "" {
		opts = append(opts, engine.WithVersion(cfg.EngineVersion))
	}
	eng := engine.New(opts...)
	m := metrics.New()
	svc := service.New(eng, st, m, logger)
	limiter := ratelimit.New(cfg.RateLimitRPM, cfg.RateLimitBurst)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(cfg, svc, m, limiter, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sweepLimiter(gctx, limiter)
		return nil
	})
	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("engine_version", eng.Version()),
			zap.Strings("rules", eng.Rules()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func storeConfig(cfg *config.Config, logger *zap.Logger) store.Config {
	var sc store.Config
	if cfg.StoreInMemory {
		sc = store.InMemoryConfig()
	} else {
		sc = store.DefaultConfig(cfg.DataDir)
	}
	sc.GCInterval = cfg.StoreGCInterval
	sc.Logger = logger.Named("store")
	return sc
}

func sweepLimiter(ctx context.Context, limiter *ratelimit.Limiter) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
