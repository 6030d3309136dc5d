package config

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"talenttrack-backend/models/contracts"
	"talenttrack-backend/models/jobs"
	"talenttrack-backend/models/messages"
	"talenttrack-backend/models/users"
)

// InitDB opens the Postgres connection and checks it with a ping.
func InitDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables for every stored entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&jobs.Job{},
		&contracts.Contract{},
		&messages.Message{},
	)
}
