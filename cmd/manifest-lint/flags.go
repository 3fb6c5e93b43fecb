package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Manifests   []string
	Profiles    []string
	LogLevel    string
	LogFormat   string
	NATSURL     string
	ShowVersion bool
	ShowHelp    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}
	var manifests, profiles string

	// Define flags with environment variable fallback
	flag.StringVar(&manifests, "manifest",
		getEnv("MANIFEST_PATH", ""),
		"Comma-separated manifest locations (env: MANIFEST_PATH)")

	flag.StringVar(&manifests, "m",
		getEnv("MANIFEST_PATH", ""),
		"Comma-separated manifest locations (env: MANIFEST_PATH)")

	flag.StringVar(&profiles, "profiles",
		getEnv("MANIFEST_PROFILES", ""),
		"Comma-separated active profiles (env: MANIFEST_PROFILES)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("MANIFEST_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: MANIFEST_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("MANIFEST_LOG_FORMAT", "text"),
		"Log format: json, text (env: MANIFEST_LOG_FORMAT)")

	flag.StringVar(&cfg.NATSURL, "nats-url",
		getEnv("MANIFEST_NATS_URL", ""),
		"NATS URL for publishing loading events, empty to disable (env: MANIFEST_NATS_URL)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	cfg.Manifests = splitList(manifests)
	cfg.Manifests = append(cfg.Manifests, flag.Args()...)
	cfg.Profiles = splitList(profiles)

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if len(cfg.Manifests) == 0 {
		return fmt.Errorf("no manifest locations given (use -manifest or positional arguments)")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Manifest loading and validation

Usage: %s [options] [location ...]

Locations may be filesystem paths, file:/http(s): URLs, or glob:
patterns.

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Lint a single manifest
  %s manifests/base.xml

  # Lint everything under a directory with the prod profile active
  %s --profiles=prod "glob:manifests/*.xml"

  # Run with environment variables
  export MANIFEST_PATH=/etc/app/base.xml
  export MANIFEST_PROFILES=prod
  %s

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// splitList splits a comma-separated flag value, dropping empty tokens.
func splitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
