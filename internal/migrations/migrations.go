// Package migrations keeps the database schema in sync with the models.
package migrations

import (
	"fmt"

	"github.com/topicmux/topicmux/internal/model"
	"gorm.io/gorm"
)

// Migrate runs the schema migrations for all topicmux models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.ConnectionProfile{},
		&model.ManagedProfileFile{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}
