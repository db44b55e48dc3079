package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Criterion{},
		&models.Team{},
		&models.Jury{},
		&models.Event{},
		&models.ActivityLog{},
	)
}
