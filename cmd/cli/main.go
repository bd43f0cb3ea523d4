// Command cli is the osintment command line: start SpiderFoot scans,
// watch them to completion, and turn the findings into intelligence
// reports. It also fronts the HTTP service and the MCP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/osintment/osintment/pkg/ui"
)

func printUsage() {
	ui.PrintBanner()

	fmt.Println(ui.SectionStyle.Render("USAGE"))
	fmt.Println()
	fmt.Println("  osintment <command> [flags]")
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("COMMANDS"))
	fmt.Println()
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("scan    "), "Start a scan, wait for it, and generate a report")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("report  "), "Generate a report from an existing scan")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("scans   "), "List scans known to the scanning service")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("status  "), "Show the status of one scan")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("config  "), "Print the effective configuration and check connectivity")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("serve   "), "Run the HTTP service")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("mcp     "), "Run the MCP server on stdio")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("version "), "Show version and build info")
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("EXAMPLES"))
	fmt.Println()
	fmt.Printf("  %s\n", ui.ConfigValueStyle.Render("osintment scan -target example.com -format both"))
	fmt.Printf("  %s\n", ui.ConfigValueStyle.Render("osintment scan -target example.com -type passive -no-wait"))
	fmt.Printf("  %s\n", ui.ConfigValueStyle.Render("osintment report -id <scan-id> -format pdf"))
	fmt.Printf("  %s\n", ui.ConfigValueStyle.Render("osintment report -id <scan-id> -builtin markdown > report.md"))
	fmt.Printf("  %s\n", ui.ConfigValueStyle.Render("osintment serve -addr :5000 -metrics"))
	fmt.Println()
	fmt.Println("  Run 'osintment <command> -h' for the full flag list of a command.")
	fmt.Println()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "scan":
		runScan()
	case "report":
		runReport()
	case "scans", "list":
		runScans()
	case "status":
		runStatus()
	case "config":
		runConfig()
	case "serve", "server":
		runServe()
	case "mcp":
		runMCP()
	case "-v", "--version", "version":
		runVersion()
	case "-h", "--help", "help":
		printUsage()
		os.Exit(0)
	default:
		ui.PrintError(fmt.Sprintf("Unknown command: %s", os.Args[1]))
		printUsage()
		os.Exit(1)
	}
}

// signalContext is the root context for a command, cancelled on
// Ctrl-C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
