// Package invites implements invitation code issuance and redemption.
package invites

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/hqops/invite-tracker/internal/metrics"
	"github.com/hqops/invite-tracker/internal/models"
	"github.com/hqops/invite-tracker/internal/repository"
	"github.com/hqops/invite-tracker/pkg/logger"
)

// CodeStore is the persistence contract for invitation codes.
type CodeStore interface {
	InsertIfAbsent(code *models.InvitationCode) (bool, error)
	Exists(code string) (bool, error)
	FindByCode(code string) (*models.InvitationCode, error)
	MarkRedeemed(code, redeemerID string, at time.Time) (bool, error)
	List(filter repository.CodeFilter, page, pageSize int) ([]models.InvitationCode, int64, error)
}

// RankingUpdater is invoked after a successful redemption to refresh the
// current month's aggregate. Failures here never fail the redemption.
type RankingUpdater interface {
	BumpRedemption(ctx context.Context, employeeID, month string) error
}

// Service handles invitation code issuance and redemption.
type Service struct {
	codes       CodeStore
	ranking     RankingUpdater
	log         *logger.Logger
	expiryDays  int
	maxAttempts int
}

// NewService creates a new invites service with concrete repository types.
func NewService(codeRepo *repository.CodeRepository, ranking RankingUpdater, log *logger.Logger, expiryDays, maxAttempts int) *Service {
	return NewServiceWithInterfaces(codeRepo, ranking, log, expiryDays, maxAttempts)
}

// NewServiceWithInterfaces creates a new invites service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(codes CodeStore, ranking RankingUpdater, log *logger.Logger, expiryDays, maxAttempts int) *Service {
	return &Service{
		codes:       codes,
		ranking:     ranking,
		log:         log,
		expiryDays:  expiryDays,
		maxAttempts: maxAttempts,
	}
}

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{16}$`)

// Issue generates a unique code for the employee and persists it. A lost
// insert race on the unique constraint surfaces as ErrGenerationExhausted so
// the caller can retry the whole request.
func (s *Service) Issue(ctx context.Context, employeeID, generatorID string) (*models.InvitationCode, error) {
	code, err := s.Generate(ctx, employeeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmployeeID):
			metrics.RecordCodeGenerated("invalid_input")
		case errors.Is(err, ErrGenerationExhausted):
			metrics.RecordCodeGenerated("exhausted")
		default:
			metrics.RecordCodeGenerated("error")
		}
		return nil, err
	}

	row := &models.InvitationCode{
		Code:        code,
		EmployeeID:  employeeID,
		GeneratorID: generatorID,
		GeneratedAt: time.Now(),
		Status:      models.CodeStatusUnused,
	}

	inserted, err := s.codes.InsertIfAbsent(row)
	if err != nil {
		metrics.RecordCodeGenerated("error")
		return nil, err
	}
	if !inserted {
		// Another issuance won the race on this candidate between our
		// existence check and the insert.
		metrics.RecordCodeGenerated("collision")
		return nil, ErrGenerationExhausted
	}

	metrics.RecordCodeGenerated("success")
	s.log.Info().
		Str("employee_id", employeeID).
		Str("generator_id", generatorID).
		Msg("Issued invitation code")

	return row, nil
}

// RedemptionResult is returned on a successful redemption.
type RedemptionResult struct {
	Code       string `json:"code"`
	EmployeeID string `json:"employee_id"`
	RedeemerID string `json:"redeemer_id"`
}

// Redeem applies the unused -> used transition on a code. The update is
// conditioned on the pre-transition state at the storage layer, so concurrent
// redeemers cannot both succeed.
func (s *Service) Redeem(ctx context.Context, code, redeemerID string) (*RedemptionResult, error) {
	if !codePattern.MatchString(code) {
		metrics.RecordRedemption("invalid_format")
		return nil, ErrInvalidCodeFormat
	}

	row, err := s.codes.FindByCode(code)
	if err != nil {
		metrics.RecordRedemption("error")
		return nil, err
	}
	if row == nil {
		metrics.RecordRedemption("not_found")
		return nil, ErrCodeNotFound
	}
	if row.IsUsed() {
		metrics.RecordRedemption("already_redeemed")
		return nil, ErrAlreadyRedeemed
	}

	now := time.Now()
	if expired(row.GeneratedAt, now, s.expiryDays) {
		metrics.RecordRedemption("expired")
		return nil, ErrCodeExpired
	}

	ok, err := s.codes.MarkRedeemed(code, redeemerID, now)
	if err != nil {
		metrics.RecordRedemption("error")
		return nil, err
	}
	if !ok {
		// A concurrent redeemer won between our read and the guarded update.
		metrics.RecordRedemption("already_redeemed")
		return nil, ErrAlreadyRedeemed
	}

	metrics.RecordRedemption("success")
	s.log.Info().
		Str("code", code).
		Str("employee_id", row.EmployeeID).
		Str("redeemer_id", redeemerID).
		Msg("Invitation code redeemed")

	// Best-effort incremental ranking update. A failure is logged and counted
	// but never propagates: the redemption is already committed.
	month := monthOf(now)
	if err := s.ranking.BumpRedemption(ctx, row.EmployeeID, month); err != nil {
		metrics.RecordRankUpdateFailure()
		s.log.Error().
			Err(err).
			Str("employee_id", row.EmployeeID).
			Str("month", month).
			Msg("Failed to update performance ranking after redemption")
	}

	return &RedemptionResult{
		Code:       row.Code,
		EmployeeID: row.EmployeeID,
		RedeemerID: redeemerID,
	}, nil
}

// History returns issued codes, newest first, with optional employee and
// status filters.
func (s *Service) History(_ context.Context, filter repository.CodeFilter, page, pageSize int) ([]models.InvitationCode, int64, error) {
	return s.codes.List(filter, page, pageSize)
}

// monthOf labels the instant with its UTC calendar month. The aggregation
// windows are UTC, so the label must be too: a local-zone label near a month
// boundary would file the bump into a month whose window excludes it.
func monthOf(now time.Time) string {
	return now.UTC().Format("2006-01")
}

const millisPerDay = 24 * 60 * 60 * 1000

// expired reports whether the validity window has passed. Elapsed whole days
// are computed by ceiling division of the millisecond difference, so a code
// generated exactly expiryDays ago is still redeemable.
func expired(generatedAt, now time.Time, expiryDays int) bool {
	elapsed := now.Sub(generatedAt).Milliseconds()
	if elapsed <= 0 {
		return false
	}
	days := (elapsed + millisPerDay - 1) / millisPerDay
	return days > int64(expiryDays)
}
