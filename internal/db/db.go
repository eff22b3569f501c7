// Package db provides database connectivity for the topicmux server.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/topicmux/topicmux/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const dbFilename = "topicmux.db"

// NewDBConnection creates a new database connection based on the provided DSN.
// If the DSN is empty, it falls back to an embedded SQLite database in the
// current directory.
func NewDBConnection(log logger.Logger, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if dsn == "" {
		log.Info(
			"Database URL not set, falling back to embedded SQLite",
			logger.Field{Key: "db_filename", Value: dbFilename},
		)
		dialector = sqlite.Open(fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", dbFilename))
	} else {
		dialector = postgres.Open(dsn)
	}

	c := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
	db, err := gorm.Open(dialector, c)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
