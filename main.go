package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/soocke/pixel-scan-go/app"
	"github.com/soocke/pixel-scan-go/config"
	"github.com/soocke/pixel-scan-go/debug"
)

func main() {
	cfgPath := flag.String("config", "pixelscan.json", "path to the JSON config file")
	envPath := flag.String("env", ".env", "optional dotenv file with PIXELSCAN_* overrides")
	flag.Parse()

	cfg, loadErr := config.Load(*cfgPath)
	envErr := cfg.ApplyEnv(*envPath)
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if loadErr != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", loadErr)
	}
	if envErr != nil {
		logger.Warn("env overrides", "error", envErr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Debug {
		debug.StartGoroutineLogger(ctx, 10*time.Second, logger)
		debug.StartMemLogger(ctx, 10*time.Second, logger)
	}

	application, err := app.NewApp("Pixel Scan", 900, 640, cfg, *cfgPath, logger)
	if err != nil {
		logger.Error("app init", "error", err)
		os.Exit(1)
	}
	if err := application.Start(); err != nil {
		logger.Error("app exited", "error", err)
		os.Exit(1)
	}
}
