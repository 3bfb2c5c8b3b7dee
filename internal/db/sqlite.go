package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type openOptions struct {
	logger gormlogger.Interface
}

type Option func(*openOptions)

// WithLogger replaces the default silent gorm logger.
func WithLogger(logger gormlogger.Interface) Option {
	return func(options *openOptions) {
		options.logger = logger
	}
}

// OpenSQLite opens (creating if needed) the database file at dbPath and
// applies every pending embedded migration before returning.
func OpenSQLite(dbPath string, opts ...Option) (*gorm.DB, error) {
	options := openOptions{logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	for _, opt := range opts {
		opt(&options)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	database, err := gorm.Open(sqlite.Open(sqliteDSN(dbPath)), &gorm.Config{
		Logger:         options.logger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyEmbeddedMigrations(database); err != nil {
		if sqlDB, dbErr := database.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}

	return database, nil
}

func sqliteDSN(dbPath string) string {
	return fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
}

// Ping reports whether the underlying connection pool can reach the database.
func Ping(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
