package db

import (
	"fmt"

	"peo_admin/internal/model"

	"gorm.io/gorm"
)

// Models lists every migrated model in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Session{},
		&model.Project{},
		&model.Document{},
		&model.Post{},
		&model.Event{},
	}
}

// Migrate runs database migrations for all models
func Migrate(db *gorm.DB) error {
	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
