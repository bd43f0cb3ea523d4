package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/osintment/osintment/pkg/config"
	"github.com/osintment/osintment/pkg/defaults"
	"github.com/osintment/osintment/pkg/ui"
)

// runConfig prints the effective configuration, then checks that the
// scanning service is reachable and the report directory writable.
func runConfig() {
	cfg := config.Load()

	fs := flag.NewFlagSet("config", flag.ExitOnError)
	cf := registerCommonFlags(fs, cfg)
	fs.Parse(os.Args[2:])
	cf.apply()

	ui.PrintMiniBanner()

	ui.PrintSection("Effective Configuration")
	ui.PrintConfigLine("SpiderFoot URL", cf.URL)
	ui.PrintConfigLine("API Key", maskSecret(cf.APIKey))
	ui.PrintConfigLine("Output", cfg.OutputDir)
	ui.PrintConfigLine("Logo", cfg.LogoPath)
	ui.PrintConfigLine("Company", cfg.CompanyName)
	ui.PrintConfigLine("Author", cfg.Author)
	ui.PrintConfigLine("Log Level", cfg.LogLevel)
	if cf.Proxy != "" {
		ui.PrintConfigLine("Proxy", cf.Proxy)
	}
	if cfg.OTLPEndpoint != "" {
		ui.PrintConfigLine("OTLP Endpoint", cfg.OTLPEndpoint)
	}

	cfg.SpiderFootURL = cf.URL
	if err := cfg.Validate(); err != nil {
		fatal(defaults.ExitUserError, "%v", err)
	}

	ui.PrintSection("Connectivity")

	ctx, cancel := signalContext()
	defer cancel()
	ctx, probeCancel := context.WithTimeout(ctx, 15*time.Second)
	defer probeCancel()

	modules, err := cf.client().Modules(ctx)
	if err != nil {
		ui.PrintError(fmt.Sprintf("SpiderFoot unreachable at %s: %v", cf.URL, err))
		os.Exit(defaults.ExitNetworkError)
	}
	ui.PrintSuccess(fmt.Sprintf("SpiderFoot reachable (%d modules)", len(modules)))

	if err := cfg.EnsureDirectories(); err != nil {
		fatal(defaults.ExitInternalError, "%v", err)
	}
	if dirWritable(cfg.OutputDir) {
		ui.PrintSuccess("Report directory writable: " + cfg.OutputDir)
	} else {
		fatal(defaults.ExitInternalError, "Report directory not writable: %s", cfg.OutputDir)
	}

	if cfg.LogoExists() {
		ui.PrintSuccess("Logo found: " + cfg.LogoPath)
	} else {
		ui.PrintWarning("Logo missing: " + cfg.LogoPath + " (reports render without it)")
	}

	ui.PrintSuccess("Configuration OK")
}

// runVersion prints version and build information.
func runVersion() {
	ui.PrintMiniBanner()
	fmt.Printf("%s %s\n", defaults.ToolName, ui.Version)
	fmt.Printf("  commit: %s\n", ui.Commit)
	fmt.Printf("  built:  %s\n", ui.BuildDate)
}

// maskSecret shows just enough of a secret to recognize it.
func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 4:
		return "****"
	default:
		return s[:4] + "****"
	}
}

// dirWritable probes the directory with a throwaway temp file.
func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
