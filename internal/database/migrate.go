package database

import (
	"gorm.io/gorm"

	"github.com/tastebase/backend/internal/models"
)

// Migrate applies the schema for all application models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.RecipeLike{},
	)
}
