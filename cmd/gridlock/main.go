package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apexline/gridlock/internal/app"
	"github.com/apexline/gridlock/internal/auth"
	"github.com/apexline/gridlock/internal/config"
	"github.com/apexline/gridlock/internal/logger"
)

var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `gridlock - rating and settlement engine for grid predictions

Usage:
  gridlock [options]

Options:
  -version       Show version and exit
  -help          Show this help message

Configuration is read from the environment (prefix GRIDLOCK_) and an
optional YAML file pointed at by GRIDLOCK_CONFIG:

  GRIDLOCK_ADDR              HTTP listen address (default ":8080")
  GRIDLOCK_DB_PATH           SQLite database path (default "gridlock.db")
  GRIDLOCK_ADMIN_KEY         Admin API key (generated when unset)
  GRIDLOCK_LOG_LEVEL         debug, info, warn, error (default "info")
  GRIDLOCK_HTTP_LOGGING      Per-request access logging (default false)
  GRIDLOCK_FIELD_SIZE        Drivers per ordering (default 20)
  GRIDLOCK_RESULTS_FEED_URL  External timing feed base URL

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("gridlock %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.HTTPLogging {
		appLog.EnableHTTPLogging()
	}

	if cfg.AdminKey == "" {
		cfg.AdminKey = auth.GenerateKey()
		appLog.Info("Admin key generated", "key", cfg.AdminKey)
	}

	a, err := app.New(appLog, cfg, appLog)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatal(err)
		}
	case <-ctx.Done():
		appLog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Shutdown(shutdownCtx); err != nil {
			appLog.Error("Shutdown error", "error", err)
		}
	}
}
