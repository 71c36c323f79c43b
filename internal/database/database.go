package database

import (
	"fmt"
	"time"

	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const slowQueryThreshold = 500 * time.Millisecond

func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Gorm(slowQueryThreshold),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get database instance:", err)
		return
	}
	sqlDB.Close()
}

// Migrate creates or updates every table. On Postgres the pgvector extension must exist
// before the notes table can be created.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("enable pgvector: %w", err)
		}
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	logger.Info("Database schema migrated")
	return nil
}
