package pkg

import (
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.IsProduction() {
		logLevel = logger.Error
	} else {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Unique violations surface as gorm.ErrDuplicatedKey so submissions can be retried.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// AutoMigrate creates or updates the quiz tables and their unique indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Collection{},
		&models.Question{},
		&models.UserAnswer{},
		&models.UserProgress{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
