// Command apiserver serves the ReviewPulse dashboard API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/ReviewPulse/internal/bootstrap"
	"github.com/turtacn/ReviewPulse/internal/config"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
)

const (
	defaultConfigPath = "configs/config.yaml"
	startupTimeout    = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file; REVIEWPULSE_* env is used when absent")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the config")
	flag.Parse()

	if err := run(*configPath, *envFile, *httpPort); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string, httpPort int) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	if _, err := os.Stat(configPath); err != nil {
		configPath = ""
	}
	cfg, err := config.LoadOrEnv(configPath)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := logging.NewLogger(bootstrap.LogConfig(cfg.Log))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	logger.Info("Starting ReviewPulse API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("source", cfg.Dataset.Source),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	app, err := bootstrap.New(startCtx, cfg, logger, version)
	cancel()
	if err != nil {
		logger.Error("Startup failed", logging.Err(err))
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logger.Error("Shutdown incomplete", logging.Err(err))
		}
	}()

	l, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr(), err)
	}
	if err := app.Server().Run(ctx, l); err != nil {
		logger.Error("HTTP server error", logging.Err(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}

//Personal.AI order the ending
