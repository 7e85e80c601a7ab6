package main

import (
	"context"
	"delivery-dispatch-service/internal/adapters/messaging"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/api"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/db"
	"delivery-dispatch-service/internal/platform/obs"
	redisx "delivery-dispatch-service/internal/platform/redis"
	"delivery-dispatch-service/internal/ports"
	"delivery-dispatch-service/internal/services"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type publisher interface {
	ports.EventPublisher
	Close() error
}

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
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
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.Database.Driver, cfg.DSN())
	if err != nil {
		return err
	}
	defer conn.Close()

	// SQLite is the local mode: create the schema and demo data on startup.
	if conn.Driver() == db.DriverSQLite {
		if err := initAndSeed(ctx, conn, cfg.Database.SeedPath); err != nil {
			return err
		}
	}

	events, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer events.Close()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisx.New(ctx, redisx.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		logger.Info("rate limiting enabled", zap.String("redis", cfg.Redis.Addr), zap.Int("rps", cfg.Redis.RateLimitRPS))
	}

	depot := domain.Coordinates{Lat: cfg.Depot.Lat, Lon: cfg.Depot.Lon}
	store := repositories.NewSQLStore(conn)

	router := api.NewRouter(api.Deps{
		Assigner:     services.NewRouteAssigner(store, events, depot),
		Orders:       store,
		Updater:      services.NewOrderService(store, events),
		Drivers:      services.NewDriverService(store, depot),
		Logger:       logger,
		Redis:        rdb,
		RateLimitRPS: cfg.Redis.RateLimitRPS,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("db", conn.Driver()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newPublisher(cfg *config.Config, logger *zap.Logger) (publisher, error) {
	if len(cfg.Messaging.Brokers) == 0 {
		logger.Info("no kafka brokers configured, events go to the log")
		return messaging.NewLogPublisher(logger), nil
	}

	p, err := messaging.NewKafkaPublisher(cfg.Messaging.Brokers, cfg.Messaging.Topic)
	if err != nil {
		return nil, err
	}
	logger.Info("publishing events to kafka",
		zap.Strings("brokers", cfg.Messaging.Brokers),
		zap.String("topic", cfg.Messaging.Topic),
	)
	return p, nil
}

func initAndSeed(ctx context.Context, conn *db.DB, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
