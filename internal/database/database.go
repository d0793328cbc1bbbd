package database

import (
	"fmt"
	"time"

	"questlog/backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewLogger returns a gorm logger writing through logrus.
func NewLogger() logger.Interface {
	return logger.New(
		logrus.StandardLogger(), // io writer
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  false,
		},
	)
}

// Connect opens the Postgres connection. The returned handle is shared by all
// handlers for the life of the process.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         NewLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	logrus.Info("Database connection established.")
	return db, nil
}

// Migrate creates or updates the schema, including the unique indexes the
// submission workflow relies on.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.GameContributor{},
		&models.PendingGame{},
		&models.Review{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	logrus.Info("Database migrated successfully.")
	return nil
}
