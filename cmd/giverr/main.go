package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giverr/giverr/internal/api"
	"github.com/giverr/giverr/internal/cli"
	"github.com/giverr/giverr/internal/config"
	"github.com/giverr/giverr/internal/db"
	"github.com/giverr/giverr/internal/logger"
	"github.com/giverr/giverr/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxRequestBodyBytes = 2 << 20

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	location, ok := cfg.Location()
	if !ok {
		log.Warn("invalid TZ, falling back to UTC", zap.String("tz", cfg.Timezone))
	}
	time.Local = location

	switch command {
	case "serve":
		return serve(cfg, log)
	case "reset-weekly":
		return withDatabase(cfg, log, func(database *gorm.DB) error {
			return cli.RunResetWeeklyCommand(context.Background(), database, os.Stdout)
		})
	case "audit":
		return withDatabase(cfg, log, func(database *gorm.DB) error {
			return cli.RunAuditCommand(context.Background(), database, os.Stdout)
		})
	case "issue-token":
		secret, err := cfg.RequireIdentitySecret()
		if err != nil {
			return err
		}
		return cli.RunIssueTokenCommand(secret, args, os.Stdout)
	default:
		return fmt.Errorf("unknown command %q (expected serve, reset-weekly, audit or issue-token)", command)
	}
}

func openDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	database, err := db.Open(db.Settings{
		Driver:      cfg.DBDriver,
		SQLitePath:  cfg.DBPath,
		PostgresDSN: cfg.DatabaseURL,
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	return database, nil
}

func withDatabase(cfg *config.Config, log *zap.Logger, action func(database *gorm.DB) error) error {
	database, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer closeDatabase(database, log)
	return action(database)
}

func closeDatabase(database *gorm.DB, log *zap.Logger) {
	sqlDB, err := database.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("close database", zap.Error(err))
	}
}

func serve(cfg *config.Config, log *zap.Logger) error {
	secret, err := cfg.RequireIdentitySecret()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer closeDatabase(database, log)

	handler, err := api.NewHandler(database, api.Options{
		IdentitySecret:   secret,
		Logger:           log,
		ImportRateLimit:  cfg.ImportRateLimit,
		ImportRateWindow: cfg.ImportRateWindow,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newApp(handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("giverr listening",
		zap.String("addr", cfg.ListenAddr()),
		zap.String("env", cfg.AppEnv),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("tz", time.Local.String()),
	)
	if err := app.Listen(cfg.ListenAddr()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Giverr",
		DisableStartupMessage: true,
		BodyLimit:             maxRequestBodyBytes,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(metrics.Middleware)
	app.Use(handler.RequestLogger)
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)
	return app
}
