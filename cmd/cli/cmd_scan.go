package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/osintment/osintment/pkg/config"
	"github.com/osintment/osintment/pkg/defaults"
	"github.com/osintment/osintment/pkg/report"
	"github.com/osintment/osintment/pkg/spiderfoot"
	"github.com/osintment/osintment/pkg/ui"
)

// runScan starts a scan and, unless -no-wait is set, watches it to
// completion and generates the report in one go.
func runScan() {
	cfg := config.Load()

	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	target := fs.String("target", "", "Target domain, IP, netblock, or email (required)")
	name := fs.String("name", "", "Scan name (default: Scan_<target>_<timestamp>)")
	scanType := fs.String("type", "all", "Scan type: all or passive")
	modules := fs.String("modules", "", "Exact modules to run, comma-separated (overrides -type)")
	format := fs.String("format", "html", "Report format: html, pdf, both, json, csv")
	noWait := fs.Bool("no-wait", false, "Start the scan and return without waiting")
	timeout := fs.Duration("timeout", spiderfoot.DefaultWaitTimeout, "Maximum time to wait for completion")
	poll := fs.Duration("poll", spiderfoot.DefaultPollInterval, "Status poll interval")
	cf := registerCommonFlags(fs, cfg)
	rf := registerReportFlags(fs, cfg)
	ff := registerFilterFlags(fs)
	fs.Parse(os.Args[2:])
	cf.apply()

	if strings.TrimSpace(*target) == "" {
		ui.PrintError("Target is required")
		ui.PrintHelp("osintment scan -target example.com")
		os.Exit(defaults.ExitUserError)
	}

	ui.PrintBanner()
	ui.PrintConfigBanner(map[string]string{
		"Target":         *target,
		"Scan Name":      *name,
		"Scan Type":      *scanType,
		"Modules":        *modules,
		"SpiderFoot URL": cf.URL,
		"Format":         *format,
		"Output":         rf.Output,
		"PDF Engine":     rf.PDFEngine,
		"Proxy":          cf.Proxy,
	})

	// Everything that can fail on user input fails before the scan
	// starts, so a typo never burns a scan run.
	reportFormat, err := report.ParseFormat(*format)
	if err != nil {
		fatal(defaults.ExitUserError, "%v", err)
	}
	fltr, err := ff.build()
	if err != nil {
		fatal(defaults.ExitUserError, "%v", err)
	}
	gen, err := rf.generator()
	if err != nil {
		fatal(defaults.ExitUserError, "Report setup failed: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := cf.client()

	scanID, err := client.StartScan(ctx, *target, spiderfoot.StartScanOptions{
		Name:     *name,
		Modules:  splitCSV(*modules),
		ScanType: *scanType,
	})
	if err != nil {
		fatal(defaults.ExitNetworkError, "Failed to start scan: %v", err)
	}

	ui.PrintBracketedInfo(ui.StatusBracket("started"), ui.TextBracket(*target), ui.MutedBracket(scanID))

	if *noWait {
		ui.PrintInfo(fmt.Sprintf("Check progress with: osintment status -id %s", scanID))
		fmt.Println(scanID)
		return
	}

	status, finished, err := watchScan(ctx, client, scanID, *target, *timeout, *poll)
	if err != nil {
		if ctx.Err() != nil {
			ui.PrintWarning("Interrupted; the scan keeps running on the service")
			ui.PrintInfo(fmt.Sprintf("Resume with: osintment report -id %s", scanID))
			os.Exit(defaults.ExitScanFailed)
		}
		fatal(defaults.ExitNetworkError, "Lost track of scan %s: %v", scanID, err)
	}

	ui.PrintBracketedInfo(ui.StatusBracket(status), ui.TextBracket(*target), ui.MutedBracket(scanID))

	if !finished {
		if strings.Contains(status, spiderfoot.StatusRunning) {
			ui.PrintWarning(fmt.Sprintf("Scan still running after %s; generate later with: osintment report -id %s", *timeout, scanID))
			os.Exit(defaults.ExitScanFailed)
		}
		fatal(defaults.ExitScanFailed, "Scan ended in %s", status)
	}

	generateArtifacts(ctx, client, gen, fltr, scanID, reportFormat, "")
}

// watchScan polls the scan until it settles, animating a one-line
// status display on stderr. Returns the last observed status and
// whether the scan finished cleanly. Hitting the timeout is not an
// error; the caller decides what an unfinished scan means.
func watchScan(ctx context.Context, client *spiderfoot.Client, id, target string, timeout, poll time.Duration) (string, bool, error) {
	if timeout <= 0 {
		timeout = spiderfoot.DefaultWaitTimeout
	}
	if poll <= 0 {
		poll = spiderfoot.DefaultPollInterval
	}

	spinner := ui.GetSpinner(ui.SpinnerDots)
	status := spiderfoot.StatusRunning
	started := time.Now()
	frame := 0

	render := time.NewTicker(spinner.Interval)
	defer render.Stop()
	probe := time.NewTicker(poll)
	defer probe.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	clearLine := func() {
		if !ui.IsSilent() {
			fmt.Fprint(os.Stderr, "\r\033[K")
		}
	}

	for {
		select {
		case <-ctx.Done():
			clearLine()
			return status, false, ctx.Err()

		case <-deadline.C:
			clearLine()
			return status, false, nil

		case <-render.C:
			if ui.IsSilent() {
				continue
			}
			frame++
			elapsed := time.Since(started).Round(time.Second)
			fmt.Fprintf(os.Stderr, "\r  %s %s %s %s ",
				ui.SpinnerStyle.Render(spinner.Frames[frame%len(spinner.Frames)]),
				ui.StatusStyle(status).Render(strings.ToLower(status)),
				target,
				ui.DividerStyle.Render(elapsed.String()))

		case <-probe.C:
			s, err := client.Status(ctx, id)
			if err != nil {
				clearLine()
				return status, false, err
			}
			status = s
			switch {
			case strings.Contains(status, spiderfoot.StatusFinished):
				clearLine()
				return status, true, nil
			case strings.Contains(status, spiderfoot.StatusError),
				strings.Contains(status, spiderfoot.StatusAborted):
				clearLine()
				return status, false, nil
			}
		}
	}
}
