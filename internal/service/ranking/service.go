// Package ranking computes monthly performance aggregates and dense ranks
// from invitation code redemption counts.
package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hqops/invite-tracker/internal/cache"
	"github.com/hqops/invite-tracker/internal/metrics"
	"github.com/hqops/invite-tracker/internal/models"
	"github.com/hqops/invite-tracker/internal/repository"
	"github.com/hqops/invite-tracker/pkg/logger"
)

// CodeCounter is the code-store contract consumed by the aggregation paths.
type CodeCounter interface {
	CountUsedInRange(employeeIDs []string, start, end time.Time) (map[string]int, error)
}

// EmployeeDirectory resolves employee names and the active cohort.
type EmployeeDirectory interface {
	FindActive() ([]models.Employee, error)
	NamesByIDs(ids []string) (map[string]string, error)
}

// PerformanceStore is the persistence contract for monthly aggregates.
type PerformanceStore interface {
	Upsert(record *models.PerformanceRecord) error
	FindByMonth(month string) ([]models.PerformanceRecord, error)
	FindByEmployeeAndMonth(employeeID, month string) (*models.PerformanceRecord, error)
	Months() ([]string, error)
	ListHistorical(page, pageSize int) ([]models.PerformanceRecord, int64, error)
}

// Service computes and persists performance rankings.
type Service struct {
	codes       CodeCounter
	employees   EmployeeDirectory
	performance PerformanceStore
	cache       cache.Cache
	cacheTTL    time.Duration
	log         *logger.Logger
}

// NewService creates a new ranking service with concrete repository types.
// The cache is optional: a nil cache disables response caching.
func NewService(
	codeRepo *repository.CodeRepository,
	employeeRepo *repository.EmployeeRepository,
	performanceRepo *repository.PerformanceRepository,
	cache cache.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(codeRepo, employeeRepo, performanceRepo, cache, cacheTTL, log)
}

// NewServiceWithInterfaces creates a new ranking service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	codes CodeCounter,
	employees EmployeeDirectory,
	performance PerformanceStore,
	c cache.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		codes:       codes,
		employees:   employees,
		performance: performance,
		cache:       c,
		cacheTTL:    cacheTTL,
		log:         log,
	}
}

const monthsCacheKey = "performance:months"

// placeholderName synthesizes a display name for an employee ID missing from
// the roster.
func placeholderName(employeeID string) string {
	return "Employee " + employeeID
}

// BumpRedemption upserts the (employee, month) aggregate after a redemption
// and re-ranks the whole month. Ranks are eventually consistent under
// concurrent redemptions: a later recomputation always supersedes an earlier
// one.
func (s *Service) BumpRedemption(ctx context.Context, employeeID, month string) error {
	now := time.Now()

	record, err := s.performance.FindByEmployeeAndMonth(employeeID, month)
	if err != nil {
		return err
	}

	if record == nil {
		names, err := s.employees.NamesByIDs([]string{employeeID})
		if err != nil {
			s.log.Warn().Err(err).Str("employee_id", employeeID).Msg("Failed to resolve employee name")
			names = map[string]string{}
		}
		name, ok := names[employeeID]
		if !ok {
			name = placeholderName(employeeID)
		}
		record = &models.PerformanceRecord{
			EmployeeID:      employeeID,
			EmployeeName:    name,
			RedemptionCount: 1,
			Month:           month,
		}
	} else {
		record.RedemptionCount++
	}

	record.Score = models.ScoreFor(record.RedemptionCount)
	record.UpdatedAt = now
	if record.Rank == 0 {
		record.Rank = 1 // placeholder until the re-rank below
	}

	if err := s.performance.Upsert(record); err != nil {
		return err
	}

	if err := s.rerankMonth(month); err != nil {
		return err
	}

	s.invalidateCaches(ctx)

	s.log.Debug().
		Str("employee_id", employeeID).
		Str("month", month).
		Int("redemption_count", record.RedemptionCount).
		Msg("Incremental ranking update applied")

	return nil
}

// rerankMonth reloads the month's cohort and rewrites every rank.
func (s *Service) rerankMonth(month string) error {
	records, err := s.performance.FindByMonth(month)
	if err != nil {
		return err
	}

	assignRanks(records)

	for i := range records {
		if err := s.performance.Upsert(&records[i]); err != nil {
			return fmt.Errorf("failed to persist rank for employee %s: %w", records[i].EmployeeID, err)
		}
	}
	return nil
}

// ComputeMonth recomputes the full monthly snapshot from the underlying
// redemption data and persists it via upsert. Rerunning for the same month
// with unchanged redemptions produces identical records, so scheduled and
// manual triggers may overlap safely.
func (s *Service) ComputeMonth(ctx context.Context, month string) ([]models.PerformanceRecord, error) {
	if !monthPattern.MatchString(month) {
		return nil, ErrInvalidMonth
	}

	start, end, err := monthBounds(month)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	defer func() {
		metrics.ObserveRankingComputeDuration(time.Since(began).Seconds())
	}()

	s.log.Info().Str("month", month).Msg("Starting monthly performance computation")

	// Every employee who redeemed in the month counts here, regardless of
	// current roster status. The live read path is the one restricted to
	// active employees.
	counts, err := s.codes.CountUsedInRange(nil, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count redemptions for %s: %w", month, err)
	}

	if len(counts) == 0 {
		s.log.Info().Str("month", month).Msg("No redemptions found for month")
		return []models.PerformanceRecord{}, nil
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}

	names, err := s.employees.NamesByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve employee names: %w", err)
	}

	now := time.Now()
	records := make([]models.PerformanceRecord, 0, len(counts))
	for id, count := range counts {
		name, ok := names[id]
		if !ok {
			name = placeholderName(id)
		}
		records = append(records, models.PerformanceRecord{
			EmployeeID:      id,
			EmployeeName:    name,
			RedemptionCount: count,
			Score:           models.ScoreFor(count),
			Month:           month,
			UpdatedAt:       now,
		})
	}

	assignRanks(records)

	for i := range records {
		if err := s.performance.Upsert(&records[i]); err != nil {
			return nil, fmt.Errorf("failed to persist record for employee %s: %w", records[i].EmployeeID, err)
		}
	}

	metrics.SetRankingLastCompute()
	metrics.SetRankedEmployees(month, len(records))
	s.invalidateCaches(ctx)

	s.log.Info().
		Str("month", month).
		Int("employees", len(records)).
		Dur("duration", time.Since(began)).
		Msg("Monthly performance computation completed")

	return records, nil
}

// LiveQuery selects the period for an on-the-fly performance read: either an
// explicit month or an inclusive [StartDate, EndDate] calendar date range;
// with neither set the whole history counts.
type LiveQuery struct {
	Month     string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Page      int
	PageSize  int
}

// LiveResult is a paginated live ranking response.
type LiveResult struct {
	List     []models.PerformanceRecord `json:"list"`
	Total    int                        `json:"total"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
}

// LivePerformance computes the current ranking on the fly for dashboards,
// without persisting anything. Unlike ComputeMonth it restricts the cohort to
// currently active employees and includes those with zero redemptions.
func (s *Service) LivePerformance(ctx context.Context, query LiveQuery) (*LiveResult, error) {
	start, end, label, err := query.bounds()
	if err != nil {
		return nil, err
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 10
	}

	cacheKey := fmt.Sprintf("performance:live:%s:%d:%d", label, query.Page, query.PageSize)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	employees, err := s.employees.FindActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}

	ids := make([]string, len(employees))
	for i, emp := range employees {
		ids[i] = emp.EmployeeID
	}

	counts, err := s.codes.CountUsedInRange(ids, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count redemptions: %w", err)
	}

	records := make([]models.PerformanceRecord, 0, len(employees))
	for _, emp := range employees {
		count := counts[emp.EmployeeID]
		records = append(records, models.PerformanceRecord{
			EmployeeID:      emp.EmployeeID,
			EmployeeName:    emp.Name,
			RedemptionCount: count,
			Score:           models.ScoreFor(count),
			Month:           label,
		})
	}

	assignRanks(records)

	total := len(records)
	startIdx := (query.Page - 1) * query.PageSize
	if startIdx > total {
		startIdx = total
	}
	endIdx := startIdx + query.PageSize
	if endIdx > total {
		endIdx = total
	}

	result := &LiveResult{
		List:     records[startIdx:endIdx],
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}

	s.cacheSet(ctx, cacheKey, result)
	return result, nil
}

// bounds resolves the query period to a [start, end) window and a display
// label for the month field of the returned records.
func (q LiveQuery) bounds() (time.Time, time.Time, string, error) {
	switch {
	case q.StartDate != "" && q.EndDate != "":
		start, err := time.ParseInLocation("2006-01-02", q.StartDate, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, "", ErrInvalidDateRange
		}
		endDay, err := time.ParseInLocation("2006-01-02", q.EndDate, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, "", ErrInvalidDateRange
		}
		if endDay.Before(start) {
			return time.Time{}, time.Time{}, "", ErrInvalidDateRange
		}
		// The end date is an inclusive calendar date.
		end := endDay.AddDate(0, 0, 1)
		return start, end, q.StartDate + ".." + q.EndDate, nil

	case q.Month != "":
		if !monthPattern.MatchString(q.Month) {
			return time.Time{}, time.Time{}, "", ErrInvalidMonth
		}
		start, end, err := monthBounds(q.Month)
		if err != nil {
			return time.Time{}, time.Time{}, "", err
		}
		return start, end, q.Month, nil

	default:
		// No period given: count everything ever redeemed.
		return time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC), "all", nil
	}
}

// AvailableMonths returns the months with persisted snapshots, newest first.
func (s *Service) AvailableMonths(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, monthsCacheKey); err == nil && raw != "" {
			var months []string
			if json.Unmarshal([]byte(raw), &months) == nil {
				return months, nil
			}
		}
	}

	months, err := s.performance.Months()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(months); err == nil {
			if err := s.cache.Set(ctx, monthsCacheKey, string(payload), s.cacheTTL); err != nil {
				s.log.Debug().Err(err).Msg("Failed to cache available months")
			}
		}
	}
	return months, nil
}

// HistoricalResult is a paginated page of persisted snapshots.
type HistoricalResult struct {
	List     []models.PerformanceRecord `json:"list"`
	Total    int64                      `json:"total"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
}

// Historical returns persisted records across all months, newest month first.
// Names are re-resolved against the roster so renames show up; IDs that have
// left the roster keep a synthesized placeholder.
func (s *Service) Historical(_ context.Context, page, pageSize int) (*HistoricalResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	records, total, err := s.performance.ListHistorical(page, pageSize)
	if err != nil {
		return nil, err
	}

	if len(records) > 0 {
		ids := make([]string, len(records))
		for i := range records {
			ids[i] = records[i].EmployeeID
		}
		names, err := s.employees.NamesByIDs(ids)
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to re-resolve employee names for history")
		} else {
			for i := range records {
				if name, ok := names[records[i].EmployeeID]; ok {
					records[i].EmployeeName = name
				} else {
					records[i].EmployeeName = placeholderName(records[i].EmployeeID)
				}
			}
		}
	}

	return &HistoricalResult{
		List:     records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *Service) cacheGet(ctx context.Context, key string) *LiveResult {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return nil
	}
	var result LiveResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil
	}
	return &result
}

func (s *Service) cacheSet(ctx context.Context, key string, result *LiveResult) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("Failed to cache live performance result")
	}
}

// invalidateCaches drops derived cache entries after a write. Live entries
// carry a short TTL, so only the months listing needs eager invalidation.
func (s *Service) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, monthsCacheKey); err != nil {
		s.log.Debug().Err(err).Msg("Failed to invalidate months cache")
	}
}
