// Command httpd runs the phishguard URL scanning HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phishguard/phishguard/internal/api"
	"github.com/phishguard/phishguard/internal/cache"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/database"
	"github.com/phishguard/phishguard/internal/engine"
	"github.com/phishguard/phishguard/internal/logger"
	"github.com/phishguard/phishguard/internal/processor"
	"github.com/phishguard/phishguard/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "phishguard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting phishguard",
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port))

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	log.Info("database connection established", logger.String("driver", cfg.Database.Driver))

	if cfg.Database.Driver == "postgres" && os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := database.RunMigrations(db, "migrations", log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	tp := telemetry.NewProvider()

	var resultCache *cache.ResultCache
	if cfg.Redis.Enabled {
		redisClient, redisErr := cache.NewClient(cfg.Redis)
		if redisErr != nil {
			return fmt.Errorf("connect redis: %w", redisErr)
		}
		defer redisClient.Close()
		resultCache = cache.NewResultCache(redisClient, cfg.Redis.ResultTTL, log, tp)
		log.Info("result cache enabled", logger.String("addr", cfg.Redis.Addr))
	}

	patternsRepo := database.NewPatternsRepository(db)
	legitimateRepo := database.NewLegitimateDomainsRepository(db)
	historyRepo := database.NewScanHistoryRepository(db)
	snapshots := database.NewSnapshotProvider(patternsRepo, legitimateRepo, cfg.Database.SnapshotTTL, log)

	eng := engine.New(log, tp, cfg.Scoring.Weights())
	batch := processor.NewBatchProcessor(eng, cfg.Service.Concurrency, log, tp)
	limiter := processor.NewRateLimiter(cfg.Service.ScanRPS, 0, log)

	handler := api.NewHandler(
		eng,
		batch,
		limiter,
		snapshots,
		patternsRepo,
		legitimateRepo,
		historyRepo,
		resultCache,
		db.Ping,
		log,
	)

	server := api.NewServer(handler, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, tp, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case sig := <-sigChan:
		log.Info("received signal", logger.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("phishguard stopped")
	return nil
}
