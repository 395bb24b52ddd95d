package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hqops/invite-tracker/internal/config"
	"github.com/hqops/invite-tracker/internal/models"
	"github.com/hqops/invite-tracker/internal/service/ranking"
	"github.com/hqops/invite-tracker/pkg/logger"
)

type mockMonthComputer struct {
	months  []string
	records []models.PerformanceRecord
	err     error
}

func (m *mockMonthComputer) ComputeMonth(_ context.Context, month string) ([]models.PerformanceRecord, error) {
	m.months = append(m.months, month)
	return m.records, m.err
}

func TestBuildCronExpression(t *testing.T) {
	tests := []struct {
		timeOfDay string
		expected  string
		wantErr   bool
	}{
		{"02:00", "0 2 1 * *", false},
		{"14:30", "30 14 1 * *", false},
		{"00:00", "0 0 1 * *", false},
		{"23:59", "59 23 1 * *", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"1:2:3", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		expr, err := buildCronExpression(tt.timeOfDay)
		if tt.wantErr {
			assert.Error(t, err, "time %q", tt.timeOfDay)
			continue
		}
		require.NoError(t, err, "time %q", tt.timeOfDay)
		assert.Equal(t, tt.expected, expr)
	}
}

func TestStart_Disabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.Enabled = false

	service := NewService(cfg, nil, nil, logger.Nop())
	require.NoError(t, service.Start())
	assert.Nil(t, service.cron)
}

func TestStart_InvalidConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Time = "02:00"
	cfg.Scheduler.Timezone = "Not/AZone"

	service := NewService(cfg, nil, nil, logger.Nop())
	assert.Error(t, service.Start())

	cfg.Scheduler.Timezone = "UTC"
	cfg.Scheduler.Time = "25:00"
	assert.Error(t, service.Start())
}

func TestStartAndStop(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Time = "02:00"
	cfg.Scheduler.Timezone = "UTC"

	service := &Service{config: cfg, ranking: &mockMonthComputer{}, log: logger.Nop()}
	require.NoError(t, service.Start())
	require.NotNil(t, service.cron)
	require.Len(t, service.cron.Entries(), 1)

	// The job fires on the first of the month.
	next := service.cron.Entries()[0].Next
	assert.Equal(t, 1, next.Day())
	assert.Equal(t, 2, next.Hour())
	assert.Equal(t, 0, next.Minute())

	service.Stop()
}

func TestRunMonthlyComputation_TargetsPreviousMonth(t *testing.T) {
	computer := &mockMonthComputer{records: []models.PerformanceRecord{{EmployeeID: "0042"}}}
	service := &Service{config: &config.Config{}, ranking: computer, log: logger.Nop()}

	service.runMonthlyComputation(context.Background())

	require.Len(t, computer.months, 1)
	assert.Equal(t, ranking.PreviousMonth(time.Now()), computer.months[0])
}

func TestRunMonthlyComputation_ComputeFailureDoesNotPanic(t *testing.T) {
	computer := &mockMonthComputer{err: errors.New("db down")}
	service := &Service{config: &config.Config{}, ranking: computer, log: logger.Nop()}

	service.runMonthlyComputation(context.Background())

	assert.Len(t, computer.months, 1)
}
