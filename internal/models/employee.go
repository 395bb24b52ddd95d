package models

import (
	"time"
)

// Employee represents an entry in the employee roster. The roster is owned by
// the HR side of the system; the ranking paths only read it.
type Employee struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EmployeeID string     `gorm:"column:employee_id;size:10;uniqueIndex;not null" json:"employee_id"`
	Name       string     `gorm:"size:50;not null" json:"name"`
	Department string     `gorm:"size:100" json:"department"`
	Position   string     `gorm:"size:100" json:"position"`
	HireDate   *time.Time `gorm:"type:date" json:"hire_date"`
	Status     string     `gorm:"size:20;not null;default:active;index" json:"status"` // 'active', 'inactive', 'on_leave'
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Employee model.
func (Employee) TableName() string {
	return "employees"
}

// EmployeeStatus constants.
const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
	EmployeeStatusOnLeave  = "on_leave"
)
