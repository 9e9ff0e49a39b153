package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleManager  UserRole = "manager"
	RoleEmployee UserRole = "employee"
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	Department   *string  `gorm:"size:100"`

	// Daily working window, "HH:MM". Defaults come from the settings singleton.
	WorkStart string `gorm:"size:5"`
	WorkEnd   string `gorm:"size:5"`

	// Deactivation is the only form of deletion. Inactive users cannot log in
	// and any live token stops working on the next request.
	Active bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
