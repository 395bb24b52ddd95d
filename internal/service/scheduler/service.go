// Package scheduler triggers the monthly performance computation on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hqops/invite-tracker/internal/config"
	prommetrics "github.com/hqops/invite-tracker/internal/metrics"
	"github.com/hqops/invite-tracker/internal/models"
	"github.com/hqops/invite-tracker/internal/notify"
	"github.com/hqops/invite-tracker/internal/service/ranking"
	"github.com/hqops/invite-tracker/pkg/logger"
)

// MonthComputer is the ranking entry point the scheduler drives. The call is
// idempotent, so overlapping scheduled and manual runs converge.
type MonthComputer interface {
	ComputeMonth(ctx context.Context, month string) ([]models.PerformanceRecord, error)
}

// Service handles the monthly performance calculation schedule.
type Service struct {
	config   *config.Config
	ranking  MonthComputer
	notifier *notify.Client
	log      *logger.Logger
	cron     *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(
	cfg *config.Config,
	rankingService *ranking.Service,
	notifier *notify.Client,
	log *logger.Logger,
) *Service {
	return &Service{
		config:   cfg,
		ranking:  rankingService,
		notifier: notifier,
		log:      log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.Scheduler.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	cronExpr, err := buildCronExpression(s.config.Scheduler.Time)
	if err != nil {
		return fmt.Errorf("failed to build cron expression: %w", err)
	}

	_, err = s.cron.AddFunc(cronExpr, func() {
		s.runMonthlyComputation(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register monthly computation job: %w", err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", cronExpr).
		Str("timezone", s.config.Scheduler.Timezone).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// buildCronExpression turns an "HH:MM" time of day into a cron expression
// firing on the first day of every month.
func buildCronExpression(timeOfDay string) (string, error) {
	parts := strings.Split(timeOfDay, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", timeOfDay)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	return fmt.Sprintf("%d %d 1 * *", minute, hour), nil
}

// runMonthlyComputation executes the scheduled job: compute the snapshot for
// the previous calendar month and post a summary.
func (s *Service) runMonthlyComputation(ctx context.Context) {
	start := time.Now()
	defer func() {
		prommetrics.ObserveSchedulerJobDuration(time.Since(start).Seconds())
	}()

	month := ranking.PreviousMonth(time.Now())

	s.log.Info().Str("month", month).Msg("Running monthly performance computation job")

	records, err := s.ranking.ComputeMonth(ctx, month)
	if err != nil {
		s.log.Error().
			Err(err).
			Str("month", month).
			Dur("duration", time.Since(start)).
			Msg("Monthly performance computation job failed")
		prommetrics.RecordSchedulerJobRun("error")
		return
	}

	prommetrics.RecordSchedulerJobRun("success")

	s.log.Info().
		Str("month", month).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Monthly performance computation job completed")

	// The summary is best-effort: the snapshot is already persisted.
	if s.notifier != nil && len(records) > 0 {
		if err := s.notifier.SendMonthlySummary(ctx, month, records); err != nil {
			s.log.Warn().Err(err).Str("month", month).Msg("Failed to post monthly ranking summary")
		}
	}
}
