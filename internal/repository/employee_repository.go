package repository

import (
	"fmt"

	"github.com/hqops/invite-tracker/internal/models"
)

// EmployeeRepository handles employee roster database operations. The ranking
// paths only read the roster; roster maintenance lives elsewhere.
type EmployeeRepository struct {
	db *DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// FindActive retrieves all employees with active status, ordered by employee ID.
func (r *EmployeeRepository) FindActive() ([]models.Employee, error) {
	var employees []models.Employee
	err := r.db.Where("status = ?", models.EmployeeStatusActive).
		Order("employee_id ASC").
		Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	return employees, nil
}

// NamesByIDs returns a mapping from employee ID to display name for the given
// IDs. IDs without a roster entry are simply absent from the map.
func (r *EmployeeRepository) NamesByIDs(ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var employees []models.Employee
	err := r.db.Select("employee_id", "name").
		Where("employee_id IN ?", ids).
		Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve employee names: %w", err)
	}

	for _, emp := range employees {
		names[emp.EmployeeID] = emp.Name
	}
	return names, nil
}
