package models

import "time"

type EmailStatus string

const (
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// EmailLog is an append-only audit trail of every notification attempt,
// successful or not. Rows are never updated.
type EmailLog struct {
	ID           uint        `gorm:"primaryKey"`
	To           string      `gorm:"size:100;not null"`
	Subject      string      `gorm:"size:255;not null"`
	Type         string      `gorm:"size:50;index"` // "leave_request" | "overtime_request" | ...
	RelatedID    *uint
	Status       EmailStatus `gorm:"size:10;not null"`
	ErrorMessage string      `gorm:"size:500"`
	SentAt       time.Time
}
