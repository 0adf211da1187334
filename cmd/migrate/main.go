package main

import (
	"flag"
	"log"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/internal/infrastructure/database"
	"github.com/johnquangdev/call-coach/pkg/config"
	"github.com/johnquangdev/call-coach/pkg/logger"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up, down or status")
	steps := flag.Int("steps", 0, "maximum number of migrations to apply, 0 for all")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.NewDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	// sqlite has no versioned migrations; its schema comes from the models
	if cfg.Database.Driver != "postgres" {
		if *direction != "up" {
			zlog.Fatal("only -direction=up is supported for sqlite", zap.String("driver", cfg.Database.Driver))
		}
		if err := database.Migrate(db, cfg.Database.Driver, zlog); err != nil {
			zlog.Fatal("failed to migrate", zap.Error(err))
		}
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		zlog.Fatal("failed to get database connection", zap.Error(err))
	}

	source := database.MigrationSource()
	switch *direction {
	case "up", "down":
		dir := migrate.Up
		if *direction == "down" {
			dir = migrate.Down
		}
		n, err := migrate.ExecMax(sqlDB, "postgres", source, dir, *steps)
		if err != nil {
			zlog.Fatal("failed to apply migrations", zap.String("direction", *direction), zap.Error(err))
		}
		zlog.Info("migrations applied", zap.String("direction", *direction), zap.Int("count", n))
	case "status":
		records, err := migrate.GetMigrationRecords(sqlDB, "postgres")
		if err != nil {
			zlog.Fatal("failed to read migration records", zap.Error(err))
		}
		for _, r := range records {
			zlog.Info("migration applied", zap.String("id", r.Id), zap.Time("applied_at", r.AppliedAt))
		}
		all, err := source.FindMigrations()
		if err != nil {
			zlog.Fatal("failed to list migrations", zap.Error(err))
		}
		zlog.Info("migration status", zap.Int("applied", len(records)), zap.Int("available", len(all)))
	default:
		zlog.Fatal("unknown direction", zap.String("direction", *direction))
	}
}
