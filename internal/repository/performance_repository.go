package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hqops/invite-tracker/internal/models"
)

// PerformanceRepository handles monthly performance record database operations.
type PerformanceRepository struct {
	db *DB
}

// NewPerformanceRepository creates a new performance repository.
func NewPerformanceRepository(db *DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// Upsert creates or replaces the record for (employee_id, month). Rerunning a
// monthly computation therefore fully overwrites the prior snapshot.
func (r *PerformanceRepository) Upsert(record *models.PerformanceRecord) error {
	var existing models.PerformanceRecord
	err := r.db.Where("employee_id = ? AND month = ?", record.EmployeeID, record.Month).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create performance record: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up performance record: %w", err)
	}

	record.ID = existing.ID
	if err := r.db.Save(record).Error; err != nil {
		return fmt.Errorf("failed to update performance record: %w", err)
	}
	return nil
}

// FindByMonth retrieves all records for a month, highest redemption count first.
func (r *PerformanceRepository) FindByMonth(month string) ([]models.PerformanceRecord, error) {
	var records []models.PerformanceRecord
	err := r.db.Where("month = ?", month).
		Order("redemption_count DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list performance records for %s: %w", month, err)
	}
	return records, nil
}

// FindByEmployeeAndMonth retrieves one employee's record for a month.
// Returns (nil, nil) when absent.
func (r *PerformanceRepository) FindByEmployeeAndMonth(employeeID, month string) (*models.PerformanceRecord, error) {
	var record models.PerformanceRecord
	err := r.db.Where("employee_id = ? AND month = ?", employeeID, month).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get performance record: %w", err)
	}
	return &record, nil
}

// Months returns the distinct months with persisted records, newest first.
func (r *PerformanceRepository) Months() ([]string, error) {
	var months []string
	err := r.db.Model(&models.PerformanceRecord{}).
		Distinct("month").
		Order("month DESC").
		Pluck("month", &months).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list available months: %w", err)
	}
	return months, nil
}

// ListHistorical retrieves persisted records across all months, newest month
// first and highest count first within a month, paginated.
func (r *PerformanceRepository) ListHistorical(page, pageSize int) ([]models.PerformanceRecord, int64, error) {
	var total int64
	if err := r.db.Model(&models.PerformanceRecord{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count performance records: %w", err)
	}

	var records []models.PerformanceRecord
	err := r.db.Order("month DESC, redemption_count DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list historical performance records: %w", err)
	}
	return records, total, nil
}
