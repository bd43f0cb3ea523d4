package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/osintment/osintment/pkg/config"
	"github.com/osintment/osintment/pkg/defaults"
	"github.com/osintment/osintment/pkg/jsonutil"
	"github.com/osintment/osintment/pkg/strutil"
	"github.com/osintment/osintment/pkg/ui"
)

// runScans lists every scan the scanning service knows about.
func runScans() {
	cfg := config.Load()

	fs := flag.NewFlagSet("scans", flag.ExitOnError)
	limit := fs.Int("limit", 0, "Show at most this many scans (0 = all)")
	jsonOut := fs.Bool("json", false, "Emit the raw scan list as JSON")
	cf := registerCommonFlags(fs, cfg)
	fs.Parse(os.Args[2:])
	cf.apply()

	ctx, cancel := signalContext()
	defer cancel()

	rows, err := cf.client().ListScans(ctx)
	if err != nil {
		fatal(defaults.ExitNetworkError, "Failed to list scans: %v", err)
	}
	if *limit > 0 && len(rows) > *limit {
		rows = rows[:*limit]
	}

	if *jsonOut {
		enc := jsonutil.NewStreamEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			fatal(defaults.ExitInternalError, "Encode failed: %v", err)
		}
		return
	}

	ui.PrintMiniBanner()

	if len(rows) == 0 {
		ui.PrintInfo("No scans found")
		return
	}

	titler := cases.Title(language.English)

	fmt.Printf("%-34s %-24s %-22s %-12s %9s\n", "ID", "NAME", "TARGET", "STATUS", "FINDINGS")
	for _, row := range rows {
		target := stringField(row, "target")
		if target == "" {
			target = stringField(row, "seed_target")
		}
		status := stringField(row, "status")
		cell := fmt.Sprintf("%-12s", titler.String(strings.ToLower(status)))
		fmt.Printf("%-34s %-24s %-22s %s %9s\n",
			strutil.Truncate(stringField(row, "id"), 34),
			strutil.Truncate(stringField(row, "name"), 24),
			strutil.Truncate(target, 22),
			ui.StatusStyle(status).Render(cell),
			stringField(row, "elements"))
	}

	fmt.Println()
	ui.PrintInfo(fmt.Sprintf("%d scan(s)", len(rows)))
}

// runStatus shows the live status of one scan.
func runStatus() {
	cfg := config.Load()

	fs := flag.NewFlagSet("status", flag.ExitOnError)
	id := fs.String("id", "", "Scan ID (required)")
	cf := registerCommonFlags(fs, cfg)
	fs.Parse(os.Args[2:])
	cf.apply()

	if strings.TrimSpace(*id) == "" {
		ui.PrintError("Scan ID is required")
		ui.PrintHelp("osintment status -id <scan-id>  (find IDs with: osintment scans)")
		os.Exit(defaults.ExitUserError)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := cf.client()

	rows, err := client.ScanStatus(ctx, *id)
	if err != nil {
		fatal(defaults.ExitNetworkError, "Failed to fetch status: %v", err)
	}
	if len(rows) == 0 || rows[0] == nil {
		fatal(defaults.ExitUserError, "Scan %s not found", *id)
	}
	row := rows[0]
	status := stringField(row, "status")

	ui.PrintMiniBanner()
	ui.PrintBracketedInfo(ui.StatusBracket(status), ui.TextBracket(*id))

	keys := make([]string, 0, len(row))
	for k := range row {
		if k == "status" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-16s %v\n", k, row[k])
	}
}
