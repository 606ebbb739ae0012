// Package database opens the MySQL connection and owns the schema.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"learnora.com/app/internal/modules/courses"
	"learnora.com/app/internal/modules/entitlements"
	"learnora.com/app/internal/modules/payments"
	"learnora.com/app/internal/modules/users"
)

// Open connects with a DSN like
// user:pass@tcp(localhost:3306)/learnora?parseTime=true&loc=UTC
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database: empty DSN")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Models lists every table the service owns, in dependency order.
func Models() []any {
	return []any{
		&users.User{},
		&courses.Course{},
		&payments.Payment{},
		&entitlements.UserCourse{},
		&payments.GatewayEvent{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}
