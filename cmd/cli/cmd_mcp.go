package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/osintment/osintment/pkg/config"
	"github.com/osintment/osintment/pkg/defaults"
	"github.com/osintment/osintment/pkg/mcpserver"
)

// runMCP starts the MCP (Model Context Protocol) server on stdio, for
// IDE and assistant integrations. The protocol owns stdout, so all
// diagnostics go to stderr and no banner is printed.
func runMCP() {
	cfg := config.Load()

	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cf := registerCommonFlags(fs, cfg)
	rf := registerReportFlags(fs, cfg)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: osintment mcp [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Start an MCP server exposing scan and report tools over stdio.\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  osintment mcp\n")
		fmt.Fprintf(os.Stderr, "  SPIDERFOOT_URL=http://recon:5001 osintment mcp\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	fs.Parse(os.Args[2:])
	cf.apply()

	gen, err := rf.generator()
	if err != nil {
		fatal(defaults.ExitUserError, "Report setup failed: %v", err)
	}

	srv, err := mcpserver.New(&mcpserver.Config{
		Client:    cf.client(),
		Generator: gen,
	})
	if err != nil {
		fatal(defaults.ExitInternalError, "%v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Fprintf(os.Stderr, "%s MCP server on stdio (scanning service: %s)\n", defaults.UserAgent(), cf.URL)

	if err := srv.RunStdio(ctx); err != nil {
		fatal(defaults.ExitInternalError, "%v", err)
	}
}
