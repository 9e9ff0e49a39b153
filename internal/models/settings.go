package models

import "time"

// Settings is a singleton row (always ID=1). Department and leave type lists
// live in their own tables so a partial settings patch can never touch them.
type Settings struct {
	ID uint `gorm:"primaryKey"`

	CompanyName    string `gorm:"size:200"`
	CompanyAddress string `gorm:"size:255"`
	CompanyEmail   string `gorm:"size:100"`

	DefaultWorkStart string `gorm:"size:5"`
	DefaultWorkEnd   string `gorm:"size:5"`
	FlexibleHours    bool

	// Attendance policy
	GraceMinutesIn  int
	GraceMinutesOut int
	AutoClockOut    bool

	// Leave policy
	LeaveRequireApproval bool
	MaxAdvanceDays       int
	AllowSameDayLeave    bool

	// Notification policy
	NotificationsEnabled bool
	NotifyManager        bool

	// Bumped on every successful update; stale writers get a conflict.
	Version int `gorm:"not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Department struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
	IsDefault   bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

type LeaveType struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"size:100;uniqueIndex;not null"`
	Description     string `gorm:"size:255"`
	DaysAllowed     int    `gorm:"not null;default:0"` // annual entitlement
	RequireApproval bool   `gorm:"not null;default:true"`
	Color           string `gorm:"size:20"`
	IsDefault       bool   `gorm:"not null;default:false"`
	IsActive        bool   `gorm:"not null;default:true"`
	CreatedAt       time.Time
}

// SystemMarker is the one-time initialization gate. The system counts as
// initialized when this row exists and at least one active admin exists.
type SystemMarker struct {
	ID            uint `gorm:"primaryKey"`
	InitializedAt time.Time
}
