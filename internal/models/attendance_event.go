package models

import "time"

type ClockType string

const (
	ClockIn  ClockType = "clock_in"
	ClockOut ClockType = "clock_out"
)

// AttendanceEvent is one immutable clock action. Rows are only ever appended;
// the current state of a user's day is derived from the latest event, never stored.
type AttendanceEvent struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	Type      ClockType `gorm:"size:10;not null"`
	Timestamp time.Time `gorm:"index;not null"` // client-observed instant
	CreatedAt time.Time // server-observed, audit ordering
}
