// Command server runs the invitation code tracker HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hqops/invite-tracker/internal/api"
	codesapi "github.com/hqops/invite-tracker/internal/api/codes"
	perfapi "github.com/hqops/invite-tracker/internal/api/performance"
	"github.com/hqops/invite-tracker/internal/cache"
	"github.com/hqops/invite-tracker/internal/config"
	"github.com/hqops/invite-tracker/internal/notify"
	"github.com/hqops/invite-tracker/internal/repository"
	"github.com/hqops/invite-tracker/internal/service/invites"
	"github.com/hqops/invite-tracker/internal/service/ranking"
	"github.com/hqops/invite-tracker/internal/service/scheduler"
	"github.com/hqops/invite-tracker/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer func() { _ = redisCache.Close() }()

	codeRepo := repository.NewCodeRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)

	cacheTTL := time.Duration(cfg.Database.Redis.CacheTTL) * time.Second
	rankingService := ranking.NewService(codeRepo, employeeRepo, performanceRepo, redisCache, cacheTTL, log)
	inviteService := invites.NewService(codeRepo, rankingService, log, cfg.Codes.ExpiryDays, cfg.Codes.MaxAttempts)

	notifier := notify.NewClient(&cfg.Notifier, log)
	schedulerService := scheduler.NewService(cfg, rankingService, notifier, log)
	if err := schedulerService.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer schedulerService.Stop()

	router := api.NewRouter(
		cfg,
		db,
		codesapi.NewHandler(inviteService, log),
		perfapi.NewHandler(rankingService, log),
		log,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}
