package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kpinetwork/backend-sub000/internal/app"
	"github.com/kpinetwork/backend-sub000/internal/observability"
	"github.com/kpinetwork/backend-sub000/internal/permissions"
	"github.com/kpinetwork/backend-sub000/internal/platform/db"
	"github.com/kpinetwork/backend-sub000/internal/quarters"
	quartershttp "github.com/kpinetwork/backend-sub000/internal/quarters/http"
)

func main() {
	mode, err := app.ResolveRunMode()
	if err != nil {
		slog.Default().Error("resolve run mode", slog.Any("error", err))
		os.Exit(1)
	}
	if mode == app.RunSkip {
		slog.Default().Info("run mode skip, not starting")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if mode == app.RunCheck {
		logger.Info("configuration and database check passed", slog.String("addr", cfg.AppAddr))
		return
	}

	metrics := observability.NewMetrics()

	builder := snapshotBuilder{
		db: dbpool,
		opts: quarters.Options{
			Logger:        logger,
			Metrics:       metrics,
			ExemptMetrics: cfg.AnonymizeExemptMetrics,
		},
	}
	quartersHandler := quartershttp.NewHandler(logger, builder, permissions.NewService(dbpool), cfg.IdentityHeader)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		QuartersHandler: quartersHandler,
		DB:              dbpool,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
