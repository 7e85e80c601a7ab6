package main

import (
	"context"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/platform/db"
	"delivery-dispatch-service/internal/platform/obs"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// dbtool creates the schema and loads the seed file into the configured database.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.Server.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	conn, err := db.Open(cfg.Database.Driver, cfg.DSN())
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	ctx := context.Background()

	logger.Info("initializing database schema", zap.String("driver", conn.Driver()))
	if err := repositories.InitSchema(ctx, conn); err != nil {
		logger.Fatal("schema initialization failed", zap.Error(err))
	}

	logger.Info("seeding database", zap.String("seed_path", cfg.Database.SeedPath))
	if err := repositories.SeedFromJSON(ctx, conn, cfg.Database.SeedPath); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seeding complete")
}
