package database

import (
	"log"

	"attendance-backend/internal/config"
	"attendance-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("Database connected, migration complete.")
}

// Migrate is separate from Init so tests can run it against an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.AttendanceEvent{},
		&models.LeaveRequest{},
		&models.OvertimeRequest{},
		&models.Settings{},
		&models.Department{},
		&models.LeaveType{},
		&models.EmailLog{},
		&models.SystemMarker{},
	)
}
