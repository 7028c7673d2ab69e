// Package main implements konfetti-check, a startup validation tool for
// konfetti configuration manifests. It builds the resolver chain a service
// would use, eagerly resolves every declared variable and exits non-zero
// when anything is unresolvable, so misconfiguration is caught at deploy
// time instead of mid-request.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/samarcan/konfetti"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "konfetti-check"
)

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("%s %s (built %s)\n", appName, Version, BuildTime)
		return
	}
	if cfg.ShowHelp {
		printDetailedHelp()
		return
	}

	if err := validateFlags(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printDetailedHelp()
		os.Exit(2)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	failures, err := run(cfg, logger)
	if err != nil {
		logger.Error("check failed", "error", err)
		os.Exit(2)
	}
	if len(failures) > 0 {
		os.Exit(1)
	}
}

func run(cfg *CLIConfig, logger *slog.Logger) ([]konfetti.Failure, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	manifest, err := loadManifest(cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", cfg.ManifestPath, err)
	}

	k, err := manifest.Build(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("build container: %w", err)
	}
	defer func() {
		if cerr := k.Close(); cerr != nil {
			logger.Warn("close container", "error", cerr)
		}
	}()

	logger.Info("checking configuration",
		"manifest", cfg.ManifestPath,
		"variables", len(k.Names()),
	)

	failures := k.Validate(ctx)
	if err := printReport(cfg.Output, manifest, failures); err != nil {
		return nil, err
	}

	return failures, nil
}

// report is the JSON shape of a check result.
type report struct {
	Manifest  string             `json:"manifest"`
	Variables int                `json:"variables"`
	Failures  []konfetti.Failure `json:"failures"`
	OK        bool               `json:"ok"`
}

func printReport(format string, m *Manifest, failures []konfetti.Failure) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report{
			Manifest:  m.path,
			Variables: len(m.Variables),
			Failures:  failures,
			OK:        len(failures) == 0,
		})
	}

	if len(failures) == 0 {
		fmt.Printf("OK: %d variable(s) resolvable\n", len(m.Variables))
		return nil
	}

	fmt.Printf("FAILED: %d of %d variable(s) unresolvable\n", len(failures), len(m.Variables))
	for _, f := range failures {
		fmt.Printf("  %s: %s\n", f.Name, f.Reason)
	}
	return nil
}
