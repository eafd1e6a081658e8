package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Settings struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	Logger      *zap.Logger
}

// Open connects to the configured store and applies pending embedded migrations.
func Open(settings Settings) (*gorm.DB, error) {
	switch settings.Driver {
	case "", DriverSQLite:
		return openSQLite(settings.SQLitePath, settings.Logger)
	case DriverPostgres:
		return openPostgres(settings.PostgresDSN, settings.Logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", settings.Driver)
	}
}

func OpenSQLite(dbPath string) (*gorm.DB, error) {
	return openSQLite(dbPath, nil)
}

func openSQLite(dbPath string, logger *zap.Logger) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite has a single writer; one pooled connection avoids SQLITE_BUSY inside transactions.
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := prepareSchema(database); err != nil {
		return nil, err
	}

	return database, nil
}

func openPostgres(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	database, err := gorm.Open(postgres.Open(dsn), gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := prepareSchema(database); err != nil {
		return nil, err
	}

	return database, nil
}

func prepareSchema(database *gorm.DB) error {
	if err := applyEmbeddedMigrations(database); err != nil {
		return fmt.Errorf("apply embedded migrations: %w", err)
	}
	if _, err := NewUserRepository(database).BackfillSearchKeys(context.Background()); err != nil {
		return fmt.Errorf("backfill user search keys: %w", err)
	}
	return nil
}

func gormConfig(logger *zap.Logger) *gorm.Config {
	var writer gormlogger.Writer = log.New(os.Stdout, "\r\n", log.LstdFlags)
	colorful := true
	if logger != nil {
		writer = zap.NewStdLog(logger.Named("gorm"))
		colorful = false
	}

	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			writer,
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  colorful,
			},
		),
	}
}
