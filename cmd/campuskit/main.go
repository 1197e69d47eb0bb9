package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/campuskit/campuskit/cmd/campuskit/cli"
	"github.com/campuskit/campuskit/internal/app"
	"github.com/campuskit/campuskit/internal/audit"
	"github.com/campuskit/campuskit/internal/authn"
	"github.com/campuskit/campuskit/internal/authz"
	"github.com/campuskit/campuskit/internal/directory"
	"github.com/campuskit/campuskit/internal/idp"
	"github.com/campuskit/campuskit/internal/observability"
	"github.com/campuskit/campuskit/internal/platform/cache"
	"github.com/campuskit/campuskit/internal/platform/db"
	"github.com/campuskit/campuskit/jobs"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "create-admin" {
		if err := cli.CreateAdmin(os.Args[2:]); err != nil {
			slog.Default().Error("create-admin", slog.Any("error", err))
			os.Exit(1)
		}
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	codec, err := authn.NewTokenCodec(cfg.AuthTokenSecret)
	if err != nil {
		logger.Error("token codec", slog.Any("error", err))
		os.Exit(1)
	}
	identity := authn.Middleware{
		Codec:   codec,
		Revoked: authn.NewRevocationList(redisClient),
		Logger:  logger,
	}

	metrics := observability.NewMetrics()

	mirror := idp.NewClient(cfg.IdPBaseURL, cfg.IdPAPIKey)
	if err := mirror.Ping(ctx); err != nil {
		logger.Warn("identity provider ping", slog.Any("error", err))
	}

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	store := directory.NewPGStore(pool)
	gate := authz.NewGate(store)
	service := directory.NewService(logger, store, gate, mirror).
		WithAudit(audit.NewRecorder(pool)).
		WithOrphanEnqueuer(jobsClient).
		WithMetrics(metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Identity:         identity,
		DirectoryHandler: directory.NewHandler(logger, service),
		WebhookHandler:   idp.NewWebhookHandler(logger, cfg.IdPWebhookSecret, service),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
