package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/01moynul/items-api/internal/auth"
	"github.com/01moynul/items-api/internal/cache"
	"github.com/01moynul/items-api/internal/config"
	"github.com/01moynul/items-api/internal/database"
	"github.com/01moynul/items-api/internal/handlers"
	"github.com/01moynul/items-api/internal/logging"
	"github.com/01moynul/items-api/internal/routes"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// 0. --- Load Configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal(err)
	}
}

// run owns every resource it opens, so its defers close them on any return.
func run(cfg config.Config, logger *logrus.Logger) error {
	ctx := context.Background()

	// 1. --- Database Connection ---
	db, err := database.Open(ctx, cfg.DB, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db, logger); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	// 2. --- Stores (optionally behind the Redis list cache) ---
	var items handlers.ItemStore = database.NewItemStore(db.DB, db.Dialect)
	if cfg.CacheEnabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer closeRedis(rdb, logger)
		items = cache.NewItemCache(items, cache.NewRedisBackend(rdb), cfg.Redis.TTL, logger)
		logger.WithField("addr", cfg.Redis.Addr).Info("Item list cache enabled")
	}

	// --- Application Setup ---
	issuer := auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	app := &handlers.Handlers{
		Items:  items,
		Users:  database.NewUserStore(db.DB, db.Dialect),
		Tokens: issuer,
		DB:     db,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, routes.Options{
		Log:            logger,
		Tokens:         issuer,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// --- Start Server ---
	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting items API server on %s...", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-quit:
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func closeRedis(rdb *redis.Client, logger *logrus.Logger) {
	if err := rdb.Close(); err != nil {
		logger.WithError(err).Warn("Closing redis failed")
	}
}
