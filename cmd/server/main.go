// Command server starts the SkillSync marketplace HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsync/skillsync/internal/adapter/cache"
	"github.com/skillsync/skillsync/internal/adapter/httpserver"
	"github.com/skillsync/skillsync/internal/adapter/identity"
	"github.com/skillsync/skillsync/internal/adapter/queue/redpanda"
	"github.com/skillsync/skillsync/internal/adapter/repo/postgres"
	"github.com/skillsync/skillsync/internal/app"
	"github.com/skillsync/skillsync/internal/config"
	"github.com/skillsync/skillsync/internal/observability"
	"github.com/skillsync/skillsync/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(pool)
	jobRepo := postgres.NewJobRepo(pool)
	appRepo := postgres.NewApplicationRepo(pool)
	ratingRepo := postgres.NewRatingRepo(pool)
	messageRepo := postgres.NewMessageRepo(pool)

	// Notification producer
	producer, err := redpanda.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		slog.Error("redpanda producer connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			slog.Error("failed to close queue producer", slog.Any("error", err))
		}
	}()

	// Profile cache
	redisClient := cache.NewClient(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()
	profileCache := cache.New(redisClient, cfg.ProfileCacheTTL)

	// Token verification
	verifier, err := identity.NewVerifier(cfg.JWTSecret)
	if err != nil {
		slog.Error("identity verifier init failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Usecases
	jobSvc := usecase.NewJobService(jobRepo, producer)
	appSvc := usecase.NewApplicationService(appRepo, jobRepo, producer)
	hireSvc := usecase.NewHireService(jobRepo, producer)
	ratingSvc := usecase.NewRatingService(ratingRepo, jobRepo, profileCache)
	messageSvc := usecase.NewMessageService(messageRepo, jobRepo)
	profileSvc := usecase.NewProfileService(userRepo, profileCache)

	dbCheck, redisCheck, brokerCheck := app.BuildReadinessChecks(pool, redisClient, producer)

	srv := &httpserver.Server{
		Cfg:         cfg,
		Jobs:        jobSvc,
		Apps:        appSvc,
		Hiring:      hireSvc,
		Ratings:     ratingSvc,
		Messages:    messageSvc,
		Profiles:    profileSvc,
		DBCheck:     dbCheck,
		RedisCheck:  redisCheck,
		BrokerCheck: brokerCheck,
	}

	handler := app.BuildRouter(cfg, srv, verifier)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
