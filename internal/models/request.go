package models

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// LeaveRequest goes pending -> approved|rejected exactly once. Approved and
// rejected are terminal; records are never deleted.
type LeaveRequest struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	LeaveType string    `gorm:"size:50;not null"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`

	// Inclusive day span, computed once at submission and never recomputed.
	Days int `gorm:"not null"`

	Reason string        `gorm:"size:500;not null"`
	Status RequestStatus `gorm:"size:10;index;not null;default:pending"`

	ReviewerID    *uint
	Reviewer      *User `gorm:"foreignKey:ReviewerID"`
	ReviewComment *string `gorm:"size:500"`
	ReviewedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OvertimeRequest struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	Date      time.Time `gorm:"type:date;not null"`
	StartTime string    `gorm:"size:5;not null"` // "HH:MM"
	EndTime   string    `gorm:"size:5;not null"`

	// Computed once at submission: minutes / 60, one decimal, floored at zero.
	Hours float64 `gorm:"not null"`

	Reason string        `gorm:"size:500;not null"`
	Status RequestStatus `gorm:"size:10;index;not null;default:pending"`

	ReviewerID    *uint
	Reviewer      *User `gorm:"foreignKey:ReviewerID"`
	ReviewComment *string `gorm:"size:500"`
	ReviewedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
