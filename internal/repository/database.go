package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/kutbudev/ctdp/internal/config"
	"github.com/kutbudev/ctdp/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a database connection for the configured driver. Callers run
// Migrate separately.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Debug {
		logLevel = logger.Info
	} else {
		logLevel = logger.Silent
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Database.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.Database.DSN()), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get SQL DB: %w", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	case "sqlite", "":
		path := cfg.Database.Path
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(path), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open database file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	return db, nil
}

// Migrate runs auto migration for all models and installs the partial
// unique indexes backing the one-ACTIVE-chain-per-context and
// one-PENDING-reservation-per-context invariants.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.SacredContext{},
		&models.Chain{},
		&models.ChainLog{},
		&models.Tag{},
		&models.AuxiliaryChain{},
		&models.Settings{},
	); err != nil {
		return err
	}

	// Partial unique indexes; supported by both sqlite and postgres.
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_chains_active_per_context
			ON chains (context_id) WHERE status = 'ACTIVE'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_auxiliary_pending_per_context
			ON auxiliary_chains (target_context_id) WHERE status = 'PENDING'`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health pings the database.
func Health(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
