package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/twhispers/twhispers/internal/config"
	"github.com/twhispers/twhispers/internal/models"
)

// Open connects to the database described by cfg. The returned handle lives
// for the whole process; release it with Close.
func Open(cfg config.DB, logger *zap.SugaredLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
		logger.Infow("connecting to PostgreSQL database", "host", cfg.Host, "database", cfg.Name)
	case "sqlite":
		// Writers wait on the lock instead of failing with SQLITE_BUSY.
		dialector = sqlite.Open(cfg.Name + "?_pragma=busy_timeout(5000)")
		logger.Infow("connecting to SQLite database", "path", cfg.Name)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(logger, 200*time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// sqlite allows one writer; a single connection also keeps an
		// in-memory database alive for the lifetime of the handle.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	logger.Info("database connection established")
	return conn, nil
}

// EnsureSchema creates the confessions table when it does not exist yet.
// Running it again is a no-op; it does not migrate existing columns.
func EnsureSchema(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	if conn.Migrator().HasTable(&models.Confession{}) {
		return nil
	}
	if err := conn.Migrator().CreateTable(&models.Confession{}); err != nil {
		return fmt.Errorf("failed to create confessions table: %w", err)
	}
	return nil
}

// Ping checks that the database answers.
func Ping(ctx context.Context, conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases every pooled connection.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
