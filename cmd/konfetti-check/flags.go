package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ManifestPath string
	Output       string
	LogLevel     string
	LogFormat    string
	Timeout      time.Duration
	ShowVersion  bool
	ShowHelp     bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ManifestPath, "manifest",
		getEnv("KONFETTI_MANIFEST", "konfetti.json"),
		"Path to configuration manifest (env: KONFETTI_MANIFEST)")

	flag.StringVar(&cfg.ManifestPath, "m",
		getEnv("KONFETTI_MANIFEST", "konfetti.json"),
		"Path to configuration manifest (env: KONFETTI_MANIFEST)")

	flag.StringVar(&cfg.Output, "output",
		getEnv("KONFETTI_OUTPUT", "text"),
		"Report format: text, json (env: KONFETTI_OUTPUT)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("KONFETTI_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: KONFETTI_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("KONFETTI_LOG_FORMAT", "text"),
		"Log format: json, text (env: KONFETTI_LOG_FORMAT)")

	flag.DurationVar(&cfg.Timeout, "timeout",
		getEnvDuration("KONFETTI_TIMEOUT", 30*time.Second),
		"Overall check timeout (env: KONFETTI_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	// Custom usage
	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	// Validate manifest file exists
	if _, err := os.Stat(cfg.ManifestPath); err != nil {
		return fmt.Errorf("manifest not found: %s", cfg.ManifestPath)
	}

	// Validate output format
	validOutputs := []string{"text", "json"}
	if !contains(validOutputs, cfg.Output) {
		return fmt.Errorf("invalid output format: %s", cfg.Output)
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	// Validate log format
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", cfg.Timeout)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Configuration Startup Check

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Check the default manifest
  %s

  # Check a specific manifest with a JSON report
  %s --manifest=/etc/myservice/konfetti.json --output=json

  # Run with environment variables
  export KONFETTI_MANIFEST=/etc/myservice/konfetti.json
  export KONFETTI_LOG_LEVEL=debug
  %s

Exit codes:
  0  every declared variable is resolvable
  1  one or more variables are unresolvable
  2  the check itself could not run (bad flags, unreadable manifest)

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
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
