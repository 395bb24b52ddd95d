package models

import (
	"time"
)

// PerformanceRecord is the monthly redemption aggregate for one employee.
// At most one record exists per (employee_id, month) pair.
type PerformanceRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	EmployeeID      string    `gorm:"column:employee_id;size:4;not null;uniqueIndex:idx_employee_month" json:"employee_id"`
	EmployeeName    string    `gorm:"size:50;not null" json:"employee_name"`
	RedemptionCount int       `gorm:"not null;default:0;index" json:"redemption_count"`
	Score           int       `gorm:"column:performance_score;not null;default:0" json:"performance_score"`
	Month           string    `gorm:"size:7;not null;uniqueIndex:idx_employee_month;index" json:"month"` // YYYY-MM
	Rank            int       `gorm:"not null;index" json:"rank"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for PerformanceRecord model.
func (PerformanceRecord) TableName() string {
	return "performance_records"
}

// MaxScore caps the performance score; every redemption is worth ScorePerRedemption.
const (
	MaxScore           = 100
	ScorePerRedemption = 5
)

// ScoreFor computes the bounded performance score for a redemption count.
func ScoreFor(redemptionCount int) int {
	score := redemptionCount * ScorePerRedemption
	if score > MaxScore {
		return MaxScore
	}
	return score
}
