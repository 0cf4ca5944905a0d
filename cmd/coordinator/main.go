package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/perfinsights/mre/internal/coordinator/api/rest"
	"github.com/perfinsights/mre/internal/coordinator/service"
	"github.com/perfinsights/mre/internal/coordinator/storage"
	"github.com/perfinsights/mre/internal/shared/config"
	"github.com/perfinsights/mre/internal/shared/logging"

	_ "github.com/perfinsights/mre/examples/grep"
	_ "github.com/perfinsights/mre/examples/wordcount"
)

func main() {
	configPath := flag.String("config", "", "path to coordinator config file")
	flag.Parse()

	cfg, err := config.LoadCoordinator(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.NewSlogLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	runStore := storage.NewInMemoryRunStore()
	runService := service.NewRunService(runStore, cfg.Runner.NumRunners, logger)
	runService.Start()

	watchdogCtx, stopWatchdog := context.WithCancel(context.Background())
	watchdog := service.NewRunWatchdog(
		cfg.Watchdog.CheckInterval,
		cfg.Watchdog.StaleTimeout,
		runStore,
		logger,
	)
	go watchdog.Start(watchdogCtx)

	server := rest.NewServer(cfg.REST, runService, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	// Give server 30 seconds to finish serving ongoing requests
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	stopWatchdog()
	runService.Stop()

	logger.Info("Server stopped")
}
