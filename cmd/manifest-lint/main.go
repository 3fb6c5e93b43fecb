// Package main implements the manifest-lint command line tool.
// It loads one or more manifest documents, applies profile gating and
// placeholder resolution, and reports every problem the loading
// pipeline encountered. The process exits non-zero when any manifest
// fails to load cleanly.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/nats-io/nats.go"

	"github.com/c360/manifest/environment"
	"github.com/c360/manifest/metric"
	"github.com/c360/manifest/natsink"
	"github.com/c360/manifest/reader"
	"github.com/c360/manifest/registry"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "manifest-lint"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Lint failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()
	if err := validateFlags(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	listener, cleanup, err := setupListener(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	env := environment.New()
	if len(cfg.Profiles) > 0 {
		env.SetActiveProfiles(cfg.Profiles...)
		logger.Info("Active profiles set", "profiles", cfg.Profiles)
	}

	metrics := metric.NewRegistry()
	collector := reader.NewCollector()
	ctx := &reader.Context{
		Registry:    registry.New(),
		Environment: env,
		Reporter:    collector,
		Listener:    listener,
		Metrics:     metrics.Metrics(),
		Logger:      logger,
	}

	loader, err := reader.NewLoader(ctx)
	if err != nil {
		return err
	}

	failed := false
	for _, location := range cfg.Manifests {
		count, err := loader.Load(location)
		if err != nil {
			logger.Error("Manifest failed to load", "location", location, "error", err)
			failed = true
			continue
		}
		logger.Info("Manifest loaded", "location", location, "definitions", count)
	}

	for _, p := range collector.Problems() {
		_, _ = fmt.Fprintf(os.Stderr, "problem: %s\n", p.Error())
	}

	names := ctx.Registry.Names()
	logger.Info("Lint finished",
		"manifests", len(cfg.Manifests),
		"definitions", len(names),
		"problems", len(collector.Problems()))

	if failed || collector.Err() != nil {
		return fmt.Errorf("%d problem(s) found", len(collector.Problems()))
	}
	return nil
}

// setupListener wires the event sink. Without a NATS URL the loader
// runs with a discard listener.
func setupListener(cfg *CLIConfig, logger *slog.Logger) (reader.EventListener, func(), error) {
	if cfg.NATSURL == "" {
		return reader.NopListener{}, func() {}, nil
	}

	nc, err := nats.Connect(cfg.NATSURL, nats.Name(appName))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS at %s: %w", cfg.NATSURL, err)
	}
	logger.Info("Publishing loading events", "url", cfg.NATSURL, "subjects", natsink.SubjectPrefix+".>")
	return natsink.New(nc, logger), func() { nc.Close() }, nil
}
