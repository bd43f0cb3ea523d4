package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/osintment/osintment/pkg/finding"
	"github.com/osintment/osintment/pkg/report"
	"github.com/osintment/osintment/pkg/spiderfoot"
)

// registerTools adds all pipeline tools to the MCP server.
func (s *Server) registerTools() {
	s.addListScansTool()
	s.addStartScanTool()
	s.addScanStatusTool()
	s.addScanResultsSummaryTool()
	s.addGenerateReportTool()
}

// ═══════════════════════════════════════════════════════════════════════════
// list_scans — Browse scans known to the scanning service
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addListScansTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "list_scans",
			Title: "List Scans",
			Description: `Browse the scans known to the scanning service, newest first.

USE THIS TOOL WHEN:
• The user asks "what scans exist?" or "show me previous scans"
• You need a scan_id for scan_status, scan_results_summary or generate_report
• Checking whether a target was already scanned before starting a new scan

DO NOT USE THIS TOOL WHEN:
• You already have the scan_id — go straight to the tool that needs it

This is a READ-ONLY operation against the scanning service.

EXAMPLE INPUTS:
• Recent scans: {} (no arguments)
• More history: {"limit": 50}

Returns: total scan count and up to 'limit' scan records with their IDs, names, targets and statuses.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of scans to return, newest first.",
						"default":     20,
						"minimum":     1,
						"maximum":     100,
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "List Scans",
			},
		},
		s.handleListScans,
	)
}

type listScansArgs struct {
	Limit int `json:"limit"`
}

type scanList struct {
	Total    int              `json:"total"`
	Returned int              `json:"returned"`
	Scans    []map[string]any `json:"scans"`
}

func (s *Server) handleListScans(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args listScansArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected optional 'limit' (integer).", err)), nil
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}
	if args.Limit > 100 {
		args.Limit = 100
	}

	scans, err := s.client.ListScans(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to list scans: %v. Verify the scanning service is reachable and the API key is correct.", err)), nil
	}

	total := len(scans)
	if len(scans) > args.Limit {
		scans = scans[:args.Limit]
	}

	return jsonResult(scanList{
		Total:    total,
		Returned: len(scans),
		Scans:    scans,
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// start_scan — Kick off a reconnaissance scan
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addStartScanTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "start_scan",
			Title: "Start Scan",
			Description: `Start a reconnaissance scan against a target domain, IP address or email address.

USE THIS TOOL WHEN:
• The user asks to scan, investigate or profile a target
• A previous scan is too old and fresh data is needed

DO NOT USE THIS TOOL WHEN:
• A recent scan of the same target already exists — reuse its results instead
• The user has not confirmed they are authorized to assess the target

SAFETY: confirm authorization before scanning. Prefer scan_type "passive" unless the user explicitly asks for active probing. Scans run for minutes to hours; poll scan_status rather than waiting.

EXAMPLE INPUTS:
• Passive domain scan: {"target": "example.com", "scan_type": "passive"}
• Full scan with a name: {"target": "192.0.2.1", "name": "DC perimeter", "scan_type": "all"}
• Specific modules only: {"target": "example.com", "modules": ["sfp_dnsresolve", "sfp_ssl"]}

Returns: the scan_id to use with scan_status, scan_results_summary and generate_report.`,
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"target"},
				"properties": map[string]any{
					"target": map[string]any{
						"type":        "string",
						"description": "Domain, IP address or email address to scan.",
					},
					"name": map[string]any{
						"type":        "string",
						"description": "Human-readable scan name. A timestamped name is synthesized when empty.",
					},
					"scan_type": map[string]any{
						"type":        "string",
						"description": "Module selection: 'passive' uses only passive modules, 'all' uses everything.",
						"enum":        []string{"all", "passive"},
						"default":     "all",
					},
					"modules": map[string]any{
						"type":        "array",
						"description": "Explicit module list, overriding scan_type selection.",
						"items":       map[string]any{"type": "string"},
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   false,
				IdempotentHint: false,
				OpenWorldHint:  boolPtr(true),
				Title:          "Start Scan",
			},
		},
		s.handleStartScan,
	)
}

type startScanArgs struct {
	Target   string   `json:"target"`
	Name     string   `json:"name"`
	ScanType string   `json:"scan_type"`
	Modules  []string `json:"modules"`
}

type startScanResponse struct {
	ScanID  string `json:"scan_id"`
	Target  string `json:"target"`
	Message string `json:"message"`
}

func (s *Server) handleStartScan(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args startScanArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'target' (string) plus optional 'name', 'scan_type' and 'modules'.", err)), nil
	}
	if strings.TrimSpace(args.Target) == "" {
		return errorResult("target is required (e.g. example.com, 192.0.2.1 or user@example.com). Ask the user what to scan."), nil
	}

	scanID, err := s.client.StartScan(ctx, args.Target, spiderfoot.StartScanOptions{
		Name:     args.Name,
		Modules:  args.Modules,
		ScanType: args.ScanType,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("failed to start scan: %v. Verify the scanning service is reachable and the target is well formed.", err)), nil
	}

	logToSession(ctx, req, logInfo, fmt.Sprintf("started scan %s for %s", scanID, args.Target))

	return jsonResult(startScanResponse{
		ScanID:  scanID,
		Target:  args.Target,
		Message: "Scan started. Poll scan_status until the status contains FINISHED, ERROR or ABORTED.",
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// scan_status — Check scan progress
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addScanStatusTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "scan_status",
			Title: "Scan Status",
			Description: `Check the current status of a scan.

USE THIS TOOL WHEN:
• Polling a scan started with start_scan
• The user asks "is the scan done yet?"
• Before summarizing or reporting — verify the scan finished first

Statuses containing FINISHED mean the scan completed. ERROR-FAILED and ABORTED mean it stopped early (partial results may still exist). Anything else means it is still running — poll again after a pause.

EXAMPLE INPUTS:
• {"scan_id": "4DC62C51"}

Returns: the status string plus the raw status record from the scanning service.`,
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"scan_id"},
				"properties": map[string]any{
					"scan_id": map[string]any{
						"type":        "string",
						"description": "Scan ID returned by start_scan or list_scans.",
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "Scan Status",
			},
		},
		s.handleScanStatus,
	)
}

type scanStatusArgs struct {
	ScanID string `json:"scan_id"`
}

type scanStatusResponse struct {
	ScanID string         `json:"scan_id"`
	Status string         `json:"status"`
	Detail map[string]any `json:"detail"`
}

func (s *Server) handleScanStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args scanStatusArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'scan_id' (string).", err)), nil
	}
	if args.ScanID == "" {
		return errorResult("scan_id is required. Use list_scans to find scan IDs."), nil
	}

	rows, err := s.client.ScanStatus(ctx, args.ScanID)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to fetch status for scan %s: %v.", args.ScanID, err)), nil
	}
	if len(rows) == 0 {
		return errorResult(fmt.Sprintf("scan %s not found. Use list_scans to see available scans.", args.ScanID)), nil
	}

	status, _ := rows[0]["status"].(string)
	return jsonResult(scanStatusResponse{
		ScanID: args.ScanID,
		Status: status,
		Detail: rows[0],
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// scan_results_summary — Executive summary of scan findings
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addScanResultsSummaryTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "scan_results_summary",
			Title: "Scan Results Summary",
			Description: `Summarize a scan's findings as a plain-text executive summary: key metrics, top discovery categories, critical findings and risk posture.

USE THIS TOOL WHEN:
• The user asks "what did the scan find?" before wanting a full report
• Deciding whether the findings justify generating a report
• Giving the user a quick intelligence read-out in chat

DO NOT USE THIS TOOL WHEN:
• The user wants a file they can share — use generate_report instead

EXAMPLE INPUTS:
• {"scan_id": "4DC62C51"}

Returns: a preformatted text summary. Present it to the user verbatim inside a code block.`,
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"scan_id"},
				"properties": map[string]any{
					"scan_id": map[string]any{
						"type":        "string",
						"description": "Scan ID returned by start_scan or list_scans.",
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "Scan Results Summary",
			},
		},
		s.handleScanResultsSummary,
	)
}

type scanResultsSummaryArgs struct {
	ScanID string `json:"scan_id"`
}

func (s *Server) handleScanResultsSummary(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args scanResultsSummaryArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'scan_id' (string).", err)), nil
	}
	if args.ScanID == "" {
		return errorResult("scan_id is required. Use list_scans to find scan IDs."), nil
	}

	results, err := s.client.ScanResults(ctx, args.ScanID)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to fetch results for scan %s: %v.", args.ScanID, err)), nil
	}
	if len(results) == 0 {
		return errorResult(fmt.Sprintf("no results found for scan %s. The scan may still be running; check scan_status first.", args.ScanID)), nil
	}

	info, err := s.client.ScanInfo(ctx, args.ScanID)
	if err != nil {
		info = finding.ScanInfo{ID: args.ScanID}
	}

	return textResult(s.generator.ExecutiveSummaryText(results, info)), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// generate_report — Render report artifacts
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addGenerateReportTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "generate_report",
			Title: "Generate Report",
			Description: `Generate a professional intelligence report from a scan's findings and write it to disk.

USE THIS TOOL WHEN:
• The user asks for a report, deliverable or export of the findings
• After scan_status shows the scan FINISHED

DO NOT USE THIS TOOL WHEN:
• The user only wants a quick read-out — use scan_results_summary instead

FORMATS:
• html — styled single-file report (default)
• pdf  — print-quality PDF
• both — html and pdf in one call
• json — full analysis bundle for machine consumption
• csv  — raw findings spreadsheet

EXAMPLE INPUTS:
• {"scan_id": "4DC62C51"}
• {"scan_id": "4DC62C51", "format": "both"}
• {"scan_id": "4DC62C51", "format": "csv", "filename": "acme_findings"}

Returns: the written artifact paths. Give them to the user verbatim.`,
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"scan_id"},
				"properties": map[string]any{
					"scan_id": map[string]any{
						"type":        "string",
						"description": "Scan ID returned by start_scan or list_scans.",
					},
					"format": map[string]any{
						"type":        "string",
						"description": "Report format to render.",
						"enum":        []string{"html", "pdf", "both", "json", "csv"},
						"default":     "html",
					},
					"filename": map[string]any{
						"type":        "string",
						"description": "Output filename stem without extension. Synthesized from the scan when empty.",
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   false,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "Generate Report",
			},
		},
		s.handleGenerateReport,
	)
}

type generateReportArgs struct {
	ScanID   string `json:"scan_id"`
	Format   string `json:"format"`
	Filename string `json:"filename"`
}

type reportArtifact struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

type generateReportResponse struct {
	ScanID    string           `json:"scan_id"`
	Format    string           `json:"format"`
	Artifacts []reportArtifact `json:"artifacts"`
	Message   string           `json:"message"`
}

func (s *Server) handleGenerateReport(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args generateReportArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'scan_id' (string) plus optional 'format' and 'filename'.", err)), nil
	}
	if args.ScanID == "" {
		return errorResult("scan_id is required. Use list_scans to find scan IDs."), nil
	}
	if args.Format == "" {
		args.Format = string(report.FormatHTML)
	}

	format, err := report.ParseFormat(args.Format)
	if err != nil {
		return errorResult(fmt.Sprintf("invalid format %q. Use one of html, pdf, both, json, csv.", args.Format)), nil
	}

	results, err := s.client.ScanResults(ctx, args.ScanID)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to fetch results for scan %s: %v.", args.ScanID, err)), nil
	}
	if len(results) == 0 {
		return errorResult(fmt.Sprintf("no results found for scan %s. The scan may still be running; check scan_status first.", args.ScanID)), nil
	}

	info, err := s.client.ScanInfo(ctx, args.ScanID)
	if err != nil {
		info = finding.ScanInfo{ID: args.ScanID}
	}

	artifacts, err := s.generator.Generate(ctx, results, info, format, args.Filename)
	if err != nil {
		logToSession(ctx, req, logWarning, fmt.Sprintf("report generation failed for scan %s: %v", args.ScanID, err))

		var pdfErr *report.PDFError
		if errors.As(err, &pdfErr) && pdfErr.FallbackPath != "" {
			return errorResult(fmt.Sprintf("PDF rendering failed: %v. An HTML fallback was written to %s — offer that file to the user.", err, pdfErr.FallbackPath)), nil
		}
		return errorResult(fmt.Sprintf("report generation failed: %v.", err)), nil
	}

	out := make([]reportArtifact, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, reportArtifact{Format: string(a.Format), Path: a.Path})
	}

	logToSession(ctx, req, logInfo, fmt.Sprintf("generated %d report artifact(s) for scan %s", len(out), args.ScanID))

	return jsonResult(generateReportResponse{
		ScanID:    args.ScanID,
		Format:    string(format),
		Artifacts: out,
		Message:   fmt.Sprintf("Report generated: %d artifact(s) written to %s.", len(out), s.generator.OutputDir()),
	})
}
