package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/osintment/osintment/pkg/analyzer"
	"github.com/osintment/osintment/pkg/config"
	"github.com/osintment/osintment/pkg/defaults"
	"github.com/osintment/osintment/pkg/filter"
	"github.com/osintment/osintment/pkg/finding"
	"github.com/osintment/osintment/pkg/report"
	"github.com/osintment/osintment/pkg/spiderfoot"
	"github.com/osintment/osintment/pkg/ui"
)

// runReport generates report artifacts for a scan that already ran.
// With -template or -builtin (or -format template) the bundle is
// rendered through a custom template to stdout instead.
func runReport() {
	cfg := config.Load()

	fs := flag.NewFlagSet("report", flag.ExitOnError)
	id := fs.String("id", "", "Scan ID (required)")
	format := fs.String("format", "html", "Report format: html, pdf, both, json, csv, template")
	stem := fs.String("filename", "", "Artifact filename stem, without extension")
	tmplPath := fs.String("template", "", "Custom template file (implies -format template)")
	builtin := fs.String("builtin", "", "Built-in template: markdown, findings-csv, digest")
	summaryOnly := fs.Bool("summary", false, "Print the executive summary only, write nothing")
	cf := registerCommonFlags(fs, cfg)
	rf := registerReportFlags(fs, cfg)
	ff := registerFilterFlags(fs)
	fs.Parse(os.Args[2:])
	cf.apply()

	if strings.TrimSpace(*id) == "" {
		ui.PrintError("Scan ID is required")
		ui.PrintHelp("osintment report -id <scan-id>  (find IDs with: osintment scans)")
		os.Exit(defaults.ExitUserError)
	}

	ui.PrintMiniBanner()

	fltr, err := ff.build()
	if err != nil {
		fatal(defaults.ExitUserError, "%v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := cf.client()

	if *summaryOnly {
		raw := fetchFiltered(ctx, client, fltr, *id)
		info := scanInfo(ctx, client, *id)
		gen, err := rf.generator()
		if err != nil {
			fatal(defaults.ExitUserError, "Report setup failed: %v", err)
		}
		fmt.Println(gen.ExecutiveSummaryText(raw, info))
		return
	}

	if *tmplPath != "" || *builtin != "" || strings.EqualFold(*format, "template") {
		exportTemplate(ctx, client, fltr, *id, *tmplPath, *builtin)
		return
	}

	reportFormat, err := report.ParseFormat(*format)
	if err != nil {
		fatal(defaults.ExitUserError, "%v", err)
	}
	gen, err := rf.generator()
	if err != nil {
		fatal(defaults.ExitUserError, "Report setup failed: %v", err)
	}

	generateArtifacts(ctx, client, gen, fltr, *id, reportFormat, *stem)
}

// fetchFiltered pulls the raw results for a scan and applies the
// filter, reporting how much it cut.
func fetchFiltered(ctx context.Context, client *spiderfoot.Client, fltr *filter.Filter, id string) []map[string]any {
	_, raw, err := client.ScanFindings(ctx, id)
	if err != nil {
		fatal(defaults.ExitNetworkError, "Failed to fetch results for %s: %v", id, err)
	}
	if fltr != nil && !fltr.Empty() {
		before := len(raw)
		raw = fltr.Apply(raw)
		ui.PrintInfo(fmt.Sprintf("Filter kept %d of %d findings", len(raw), before))
	}
	return raw
}

// scanInfo fetches report metadata, degrading to a bare ID when the
// summary endpoint is unavailable.
func scanInfo(ctx context.Context, client *spiderfoot.Client, id string) finding.ScanInfo {
	info, err := client.ScanInfo(ctx, id)
	if err != nil {
		return finding.ScanInfo{ID: id}
	}
	return info
}

// generateArtifacts runs the full report pipeline for a scan: fetch,
// filter, render every requested artifact, then print the executive
// summary to stdout.
func generateArtifacts(ctx context.Context, client *spiderfoot.Client, gen *report.Generator, fltr *filter.Filter, id string, format report.Format, stem string) {
	raw := fetchFiltered(ctx, client, fltr, id)
	if len(raw) == 0 {
		ui.PrintWarning("No findings to report")
		return
	}
	info := scanInfo(ctx, client, id)

	artifacts, err := gen.Generate(ctx, raw, info, format, stem)
	if err != nil {
		var pdfErr *report.PDFError
		if errors.As(err, &pdfErr) && pdfErr.FallbackPath != "" {
			ui.PrintWarning(fmt.Sprintf("PDF rendering failed: %v", pdfErr.Err))
			ui.PrintInfo("HTML fallback written to " + pdfErr.FallbackPath)
			os.Exit(defaults.ExitInternalError)
		}
		fatal(defaults.ExitInternalError, "Report generation failed: %v", err)
	}

	for _, a := range artifacts {
		ui.PrintSuccess(fmt.Sprintf("%s report: %s", strings.ToUpper(string(a.Format)), a.Path))
	}

	fmt.Println(gen.ExecutiveSummaryText(raw, info))
}

// exportTemplate renders the analysis bundle through a user template
// and writes the result to stdout, leaving formatting entirely to the
// template author.
func exportTemplate(ctx context.Context, client *spiderfoot.Client, fltr *filter.Filter, id, tmplPath, builtin string) {
	exporter, err := report.NewExporter(report.ExportConfig{
		TemplatePath: tmplPath,
		BuiltIn:      builtin,
	})
	if err != nil {
		fatal(defaults.ExitUserError, "%v", err)
	}

	raw := fetchFiltered(ctx, client, fltr, id)
	info := scanInfo(ctx, client, id)
	bundle := analyzer.Analyze(finding.FromMaps(raw), info)

	if err := exporter.Export(os.Stdout, bundle); err != nil {
		fatal(defaults.ExitInternalError, "Template export failed: %v", err)
	}
}
