package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/osintment/osintment/pkg/defaults"
	"github.com/osintment/osintment/pkg/jsonutil"
	"github.com/osintment/osintment/pkg/report"
	"github.com/osintment/osintment/pkg/spiderfoot"
)

// Typed logging level constants. The MCP SDK defines LoggingLevel as a
// raw string type without exported constants.
const (
	logInfo    mcp.LoggingLevel = "info"
	logWarning mcp.LoggingLevel = "warning"
)

// Config holds MCP server configuration.
type Config struct {
	// Client talks to the scanning service. A default client pointed
	// at the local service is built when nil.
	Client *spiderfoot.Client

	// Generator renders report artifacts. A default generator writing
	// to ./reports is built when nil.
	Generator *report.Generator
}

// Server wraps the MCP server with the OSINT pipeline tools.
type Server struct {
	mcp       *mcp.Server
	client    *spiderfoot.Client
	generator *report.Generator
}

// MCPServer returns the underlying MCP server for direct access (e.g., testing).
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// New creates an MCP server with all tools registered.
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	client := cfg.Client
	if client == nil {
		client = spiderfoot.New(spiderfoot.Config{})
	}

	generator := cfg.Generator
	if generator == nil {
		var err error
		generator, err = report.NewGenerator(report.Config{})
		if err != nil {
			return nil, fmt.Errorf("mcpserver: report generator: %w", err)
		}
	}

	s := &Server{
		client:    client,
		generator: generator,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    defaults.ToolName,
			Title:   "OSINT Pipeline MCP Server",
			Version: defaults.Version,
		},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)

	s.registerTools()
	return s, nil
}

// RunStdio runs the MCP server over stdio transport. This is the
// primary mode for IDE integrations (VS Code, Claude Desktop, Cursor).
func (s *Server) RunStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// logToSession sends a structured log message to the MCP client.
func logToSession(ctx context.Context, req *mcp.CallToolRequest, level mcp.LoggingLevel, data any) {
	if req.Session == nil {
		return
	}
	// Best-effort: log delivery is advisory and has no recovery action.
	_ = req.Session.Log(ctx, &mcp.LoggingMessageParams{
		Level:  level,
		Logger: defaults.ToolName,
		Data:   data,
	})
}

// textResult creates a CallToolResult with a single text content block.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// jsonResult marshals v to indented JSON and wraps it in a CallToolResult.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := jsonutil.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(string(data)), nil
}

// errorResult creates an IsError CallToolResult so the LLM can see the
// error and self-correct rather than raising a protocol-level exception.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// boolPtr returns a pointer to b. Used for optional bool fields in the SDK.
func boolPtr(b bool) *bool { return &b }

// parseArgs unmarshals the raw JSON arguments from a tool call into dst.
func parseArgs(req *mcp.CallToolRequest, dst any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := jsonutil.Unmarshal(req.Params.Arguments, dst); err != nil {
		return fmt.Errorf("parsing tool arguments: %w", err)
	}
	return nil
}

// serverInstructions is the operating manual handed to connected AI clients.
const serverInstructions = `You are operating an OSINT reconnaissance pipeline backed by a SpiderFoot scanning service. You can start scans, track their progress, summarize findings, and generate professional intelligence reports.

## CRITICAL SAFETY RULES

1. NEVER scan a target without confirming the user is authorized to assess it
2. Prefer scan_type "passive" unless the user explicitly asks for active scanning
3. OSINT scans can take minutes to hours — set expectations before starting one

## TOOL SELECTION GUIDE

| User Intent | Tool |
|---|---|
| "What scans exist?" | list_scans |
| "Scan example.com" | start_scan |
| "Is the scan done?" | scan_status |
| "What did the scan find?" | scan_results_summary |
| "Give me the report" | generate_report |

## RECOMMENDED WORKFLOW

1. start_scan → receive a scan_id
2. scan_status → poll until the status contains FINISHED, ERROR or ABORTED
3. scan_results_summary → executive summary of the findings
4. generate_report → render HTML/PDF/JSON/CSV artifacts for the user

## INTERPRETING STATUSES

- FINISHED: scan completed, results are final
- RUNNING / STARTING: still working, poll again later
- ERROR-FAILED / ABORTED: scan stopped early; partial results may still exist

## ERROR RECOVERY

- "target is required" → ask the user for the domain, IP or email to scan
- "No results found" → the scan may still be running; check scan_status first
- "Invalid format" → use one of html, pdf, both, json, csv
- Connection errors → the scanning service may be down; suggest checking its URL

When a report is generated, give the user the artifact paths verbatim.`
