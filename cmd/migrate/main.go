package main

import (
	"context"
	"time"

	mongoMigration "courtside/internal/migrations/mongo"
	"courtside/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()
	cfg := config.Load(JobName)
	cfg.SetMongo()
	cfg.Log.Info("Starting Mongo migration job", "database", cfg.MongoDatabaseName)
	defer cfg.GracefulShutdown()

	if err := mongoMigration.RunMigration(ctx, cfg.Database(), cfg.Log); err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		return
	}
	cfg.Log.Info("Migration completed successfully")
}
