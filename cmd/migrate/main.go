package main

import (
	"wrongbook/internal/config"
	"wrongbook/internal/database"
	"wrongbook/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	appLogger := logger.Get()

	appLogger.Info("Running migrations", zap.String("dir", cfg.Database.MigrationsDir))
	if err := database.RunMigrations(cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		appLogger.Fatal("Migration failed", zap.Error(err))
	}
	appLogger.Info("Migrations applied")
}
