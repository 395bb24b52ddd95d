package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hqops/invite-tracker/internal/models"
)

// CodeRepository handles invitation code database operations.
type CodeRepository struct {
	db *DB
}

// NewCodeRepository creates a new code repository.
func NewCodeRepository(db *DB) *CodeRepository {
	return &CodeRepository{db: db}
}

// InsertIfAbsent inserts a new code row. It returns false when the code value
// already exists; the unique index on code is the authoritative collision check.
func (r *CodeRepository) InsertIfAbsent(code *models.InvitationCode) (bool, error) {
	err := r.db.Create(code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert code: %w", err)
	}
	return true, nil
}

// Exists reports whether a code value is already present in the store.
func (r *CodeRepository) Exists(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.InvitationCode{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return count > 0, nil
}

// FindByCode retrieves a code by its value. Returns (nil, nil) when absent.
func (r *CodeRepository) FindByCode(code string) (*models.InvitationCode, error) {
	var row models.InvitationCode
	err := r.db.Where("code = ?", code).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get code %s: %w", code, err)
	}
	return &row, nil
}

// MarkRedeemed transitions a code from unused to used. The update is guarded by
// the pre-transition status so that two concurrent redeemers cannot both win;
// the loser observes rowsAffected == 0 and gets false back.
func (r *CodeRepository) MarkRedeemed(code, redeemerID string, at time.Time) (bool, error) {
	result := r.db.Model(&models.InvitationCode{}).
		Where("code = ? AND status = ?", code, models.CodeStatusUnused).
		Updates(map[string]interface{}{
			"status":      models.CodeStatusUsed,
			"redeemer_id": redeemerID,
			"redeemed_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark code redeemed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CountUsedInRange counts, per employee, the codes redeemed within
// [start, end). A nil or empty employeeIDs slice counts across all employees.
func (r *CodeRepository) CountUsedInRange(employeeIDs []string, start, end time.Time) (map[string]int, error) {
	type row struct {
		EmployeeID string
		Total      int
	}

	query := r.db.Model(&models.InvitationCode{}).
		Select("employee_id, COUNT(*) as total").
		Where("status = ? AND redeemed_at >= ? AND redeemed_at < ?", models.CodeStatusUsed, start, end).
		Group("employee_id")

	if len(employeeIDs) > 0 {
		query = query.Where("employee_id IN ?", employeeIDs)
	}

	var rows []row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count redeemed codes: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.EmployeeID] = r.Total
	}
	return counts, nil
}

// CodeFilter narrows List results.
type CodeFilter struct {
	EmployeeID string
	Status     string
}

// List retrieves issued codes ordered by generation time descending, paginated.
// Returns the page of codes and the total matching count.
func (r *CodeRepository) List(filter CodeFilter, page, pageSize int) ([]models.InvitationCode, int64, error) {
	query := r.db.Model(&models.InvitationCode{})
	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count codes: %w", err)
	}

	var codes []models.InvitationCode
	err := query.Order("generated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&codes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list codes: %w", err)
	}
	return codes, total, nil
}
