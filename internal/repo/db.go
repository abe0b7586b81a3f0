// Package repo is the persistence layer. Summaries and idempotency records
// live in a single SQLite file accessed through GORM with the pure Go
// glebarez driver, so the binary stays cgo-free.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/pverdon/go-minutes-backend/internal/domain"
)

// OpenSQLite opens (or creates) the database file and tunes the connection
// for a small concurrent HTTP workload: WAL so reads do not block the writer,
// a busy timeout instead of immediate SQLITE_BUSY, and a bounded pool.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		db.Exec(pragma)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for every persisted model.
// Idempotent, run at each startup.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Summary{},
		&domain.Idempotency{},
	)
}
