package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"psenrich/internal/bootstrap"
	"psenrich/internal/config"
	cronpkg "psenrich/internal/cron"
	"psenrich/internal/enrich"
	"psenrich/internal/handler/api"
	"psenrich/internal/pkg/cardcache"
	"psenrich/internal/repository"
	"psenrich/internal/router"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if hasArg("--bootstrap-db") {
		if err := runDBBootstrap(logger); err != nil {
			logger.Fatal("Database bootstrap failed", zap.Error(err))
		}
		logger.Info("Database bootstrap completed")
		return
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	// --- Repositories ---
	jobRepo := repository.NewEnrichmentJobRepository(db)
	cardRepo := repository.NewCmdletCardRepository(db)
	cmdletRepo := repository.NewCmdletRepository(db)

	// A job left non-terminal by a previous process would wedge the
	// single-flight slot; fail it before accepting requests.
	if reaped, err := jobRepo.FailOrphaned("interrupted by service restart"); err != nil {
		logger.Fatal("Failed to reap orphaned jobs", zap.Error(err))
	} else if reaped > 0 {
		logger.Warn("Reaped orphaned enrichment jobs", zap.Int64("count", reaped))
	}

	// --- Card cache (Redis with in-memory fallback) ---
	cache, cacheErr := cardcache.New(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		cfg.Enrich.CardCacheTTL,
	)
	if cacheErr != nil {
		logger.Warn("Redis unavailable for card cache, using in-memory fallback", zap.Error(cacheErr))
	}

	// --- Enrichment runner ---
	aiClient := enrich.NewAIClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.ItemTimeout)
	runner := enrich.NewRunner(
		&enrich.Stores{Jobs: jobRepo, Cards: cardRepo, Source: cmdletRepo},
		aiClient,
		cache,
		logger,
		cfg.AI.ItemTimeout,
		cfg.Enrich.StaleAfter,
	)

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	commandHandler := api.NewCommandHandler(runner, jobRepo, cardRepo, cmdletRepo, cache, logger)
	router.Setup(e, commandHandler, cfg.API.Key)

	// --- Cron Scheduler ---
	var scheduler *cronpkg.Scheduler
	if cfg.Enrich.SweepEnabled {
		scheduler = cronpkg.New(runner, logger)
		scheduler.Start()
	}

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting enrichment server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func runDBBootstrap(logger *zap.Logger) error {
	dbCfg, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(dbCfg)
	if err != nil {
		return err
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		return err
	}
	logger.Info("Schema migration and default seed completed")
	return nil
}
