package main

import (
	"context"
	"time"

	mongoMigration "bookmyworkspace/internal/migrations/mongo"
	"bookmyworkspace/pkg/config"
)

const (
	JobName      = "mongo-migration"
	migrationTTL = 120 * time.Second
)

func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), migrationTTL)
	defer cancel()

	cfg.Log.Info("Starting Mongo migration job")
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		return
	}
	cfg.Log.Info("Migration completed successfully")
}
