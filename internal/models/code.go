package models

import (
	"time"
)

// InvitationCode represents a single-use invitation code tied to an employee.
// The first 4 characters of the code equal the owning employee's ID, the
// remaining 12 are random alphanumerics.
type InvitationCode struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"size:16;uniqueIndex;not null" json:"code"`
	EmployeeID  string     `gorm:"column:employee_id;size:4;not null;index" json:"employee_id"`
	GeneratorID string     `gorm:"column:generator_id;size:50" json:"generator_id"`
	RedeemerID  *string    `gorm:"column:redeemer_id;size:50" json:"redeemer_id"`
	GeneratedAt time.Time  `gorm:"not null;index" json:"generated_at"`
	Status      string     `gorm:"size:10;not null;default:unused;index" json:"status"` // 'unused' or 'used'
	RedeemedAt  *time.Time `json:"redeemed_at"`
}

// TableName specifies the table name for InvitationCode model.
func (InvitationCode) TableName() string {
	return "invitation_codes"
}

// CodeStatus constants.
const (
	CodeStatusUnused = "unused"
	CodeStatusUsed   = "used"
)

// IsUsed reports whether the code has been redeemed.
func (c *InvitationCode) IsUsed() bool {
	return c.Status == CodeStatusUsed
}
