// Command pixelscan-headless scans without a window and prints each result
// as a JSON line on stdout.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soocke/pixel-scan-go/config"
	"github.com/soocke/pixel-scan-go/debug"
	"github.com/soocke/pixel-scan-go/headless"
)

func main() {
	cfgPath := flag.String("config", "pixelscan.json", "path to the JSON config file")
	envPath := flag.String("env", ".env", "optional dotenv file with PIXELSCAN_* overrides")
	mode := flag.String("mode", "", "decode mode override: none, single or continuous")
	addr := flag.String("http", "", "HTTP control address override, e.g. :8080")
	once := flag.Bool("once", false, "exit after the first result in single mode")
	flag.Parse()

	cfg, loadErr := config.Load(*cfgPath)
	envErr := cfg.ApplyEnv(*envPath)
	logger := newLogger(cfg.Debug)
	if loadErr != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", loadErr)
	}
	if envErr != nil {
		logger.Warn("env overrides", "error", envErr)
	}
	if *mode != "" {
		cfg.DecodeMode = *mode
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	_ = cfg.Validate()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Debug {
		debug.StartGoroutineLogger(ctx, 10*time.Second, logger)
		debug.StartMemLogger(ctx, 10*time.Second, logger)
	}

	sinks := []headless.Sink{headless.NewJSONLines(os.Stdout)}
	if cfg.CopyToClipboard {
		if cb, err := headless.NewClipboard(); err != nil {
			logger.Warn("clipboard disabled", "error", err)
		} else {
			sinks = append(sinks, cb)
		}
	}
	r, err := headless.New(cfg, logger, headless.Options{Sinks: sinks, ExitAfterSingle: *once})
	if err != nil {
		logger.Error("init", "error", err)
		os.Exit(1)
	}
	if err := r.Run(ctx); err != nil {
		logger.Error("scanner stopped", "error", err)
		os.Exit(1)
	}
}

// newLogger logs to stderr so stdout carries only results.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
