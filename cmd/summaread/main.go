package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Theomnitron/SummaRead"
	"github.com/Theomnitron/SummaRead/internal/config"
	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/logger"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file loaded before configuration")
	configPath := flag.String("config", "", "path to the configuration file (overrides SUMMAREAD_CONFIG)")
	httpAddr := flag.String("http", "", "address for the JSON API; empty keeps the configured value")
	writeConfig := flag.String("write-config", "", "write the effective configuration, without the API token, to this path and exit")
	flag.Parse()

	boot, err := config.LoadBootstrap(*envFile)
	if err != nil {
		fatal(slog.Default(), errortypes.ConfigError(err, "failed to read environment"))
	}
	if *configPath != "" {
		boot.ConfigPath = *configPath
	}

	cfg, err := config.LoadConfigWithPath(boot.ConfigPath)
	if err != nil {
		fatal(slog.Default(), errortypes.ConfigError(err, "failed to load configuration"))
	}
	boot.Apply(cfg)
	if *httpAddr != "" {
		cfg.HTTP.Addr = *httpAddr
	}

	if *writeConfig != "" {
		cfg.Remote.APIToken = ""
		if err := cfg.SaveToFile(*writeConfig); err != nil {
			fatal(slog.Default(), errortypes.ConfigError(err, "failed to write configuration"))
		}
		slog.Info("Configuration written", "path", *writeConfig)
		return
	}

	lc := logger.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Format = cfg.Logging.Format
	appLogger := logger.New(lc)
	slog.SetDefault(appLogger)

	appLogger.Info("SummaRead - Starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := summaread.NewServer(summaread.ServerOptions{
		Config:  cfg,
		Logger:  appLogger,
		Context: ctx,
	})
	if err != nil {
		fatal(appLogger, err)
	}

	// The stdio transport blocks on stdin, so a signal shuts down from here.
	go func() {
		<-ctx.Done()
		appLogger.Info("Received shutdown signal, terminating gracefully...")
		if err := srv.Stop(); err != nil {
			errortypes.LogError(appLogger, err)
			os.Exit(1)
		}
		appLogger.Info("Shutdown complete")
		os.Exit(0)
	}()

	if err := srv.Start(ctx); err != nil {
		fatal(appLogger, errortypes.InternalError(err, "MCP server failed"))
	}
	if err := srv.Stop(); err != nil {
		errortypes.LogError(appLogger, err)
	}
}

func fatal(log *slog.Logger, err error) {
	errortypes.LogError(log, err)
	os.Exit(1)
}
