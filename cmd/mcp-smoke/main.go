// Command mcp-smoke exercises the MCP server end to end: it spawns the
// CLI's mcp command over stdio, walks the tool surface, and checks both
// the happy paths and the guidance returned on bad input. Live
// scenarios that need a reachable SpiderFoot instance are skipped
// unless -live is set.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// scenarioResult tracks the outcome of a single scenario.
type scenarioResult struct {
	name   string
	passed bool
	err    error
}

// scenario is a named test function that runs against a live MCP session.
type scenario struct {
	name string
	live bool // requires a reachable scanning service (skipped without -live)
	fn   func(ctx context.Context, s *mcp.ClientSession) error
}

func main() {
	var (
		bin     = flag.String("bin", "osintment", "Path to the osintment binary")
		timeout = flag.Duration("timeout", 60*time.Second, "Overall timeout")
		live    = flag.Bool("live", false, "Enable scenarios that need a reachable SpiderFoot")
		runOnly = flag.String("scenario", "", "Run only this named scenario")
	)
	flag.Parse()
	log.SetFlags(0)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cmd := exec.Command(*bin, "mcp", "-silent")
	cmd.Stderr = os.Stderr

	client := mcp.NewClient(&mcp.Implementation{Name: "mcp-smoke", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		log.Fatalf("FATAL connect: %v", err)
	}
	defer session.Close()

	var results []scenarioResult
	for _, sc := range allScenarios() {
		if *runOnly != "" && sc.name != *runOnly {
			continue
		}
		if sc.live && !*live {
			results = append(results, scenarioResult{name: sc.name, passed: true, err: fmt.Errorf("SKIP (needs -live)")})
			fmt.Printf("SKIP  %s\n", sc.name)
			continue
		}

		err := sc.fn(ctx, session)
		passed := err == nil
		results = append(results, scenarioResult{name: sc.name, passed: passed, err: err})

		if passed {
			fmt.Printf("PASS  %s\n", sc.name)
		} else {
			fmt.Printf("FAIL  %s: %v\n", sc.name, err)
		}
	}

	passed, failed, skipped := 0, 0, 0
	for _, r := range results {
		switch {
		case r.err != nil && strings.HasPrefix(r.err.Error(), "SKIP"):
			skipped++
		case r.passed:
			passed++
		default:
			failed++
		}
	}

	fmt.Printf("\n--- %d passed, %d failed, %d skipped ---\n", passed, failed, skipped)
	if failed > 0 {
		os.Exit(1)
	}
}

// allScenarios returns every smoke scenario in execution order.
func allScenarios() []scenario {
	return []scenario{
		{"tool_discovery", false, scenarioToolDiscovery},
		{"missing_target_guidance", false, scenarioMissingTargetGuidance},
		{"invalid_format_guidance", false, scenarioInvalidFormatGuidance},

		// Live (requires a reachable SpiderFoot instance).
		{"scan_listing", true, scenarioScanListing},
		{"unknown_scan_guidance", true, scenarioUnknownScanGuidance},
	}
}

// call invokes a tool with a JSON argument payload.
func call(ctx context.Context, s *mcp.ClientSession, name, payload string) (*mcp.CallToolResult, error) {
	return s.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: json.RawMessage(payload)})
}

// resultText joins the text content blocks of a tool result.
func resultText(res *mcp.CallToolResult) string {
	var sb strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

// tool_discovery verifies every tool exists with metadata and schemas.
func scenarioToolDiscovery(ctx context.Context, s *mcp.ClientSession) error {
	tools, err := s.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return fmt.Errorf("ListTools: %w", err)
	}

	expected := []string{
		"list_scans", "start_scan", "scan_status",
		"scan_results_summary", "generate_report",
	}

	found := make(map[string]*mcp.Tool, len(tools.Tools))
	for _, t := range tools.Tools {
		found[t.Name] = t
	}

	for _, name := range expected {
		t, ok := found[name]
		if !ok {
			return fmt.Errorf("tool %s missing", name)
		}
		if t.Description == "" {
			return fmt.Errorf("tool %s has no description", name)
		}
		if t.InputSchema == nil {
			return fmt.Errorf("tool %s has no input schema", name)
		}
	}

	if len(tools.Tools) != len(expected) {
		return fmt.Errorf("expected %d tools, found %d", len(expected), len(tools.Tools))
	}
	return nil
}

// missing_target_guidance checks that start_scan without a target fails
// with advice instead of a protocol error.
func scenarioMissingTargetGuidance(ctx context.Context, s *mcp.ClientSession) error {
	res, err := call(ctx, s, "start_scan", `{}`)
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if !res.IsError {
		return fmt.Errorf("expected IsError result")
	}
	if text := resultText(res); !strings.Contains(text, "target") {
		return fmt.Errorf("error text should mention the target, got %q", text)
	}
	return nil
}

// invalid_format_guidance checks that generate_report rejects unknown
// formats by listing the valid ones.
func scenarioInvalidFormatGuidance(ctx context.Context, s *mcp.ClientSession) error {
	res, err := call(ctx, s, "generate_report", `{"scan_id": "SMOKE", "format": "docx"}`)
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if !res.IsError {
		return fmt.Errorf("expected IsError result")
	}
	if text := resultText(res); !strings.Contains(text, "html") {
		return fmt.Errorf("error text should list valid formats, got %q", text)
	}
	return nil
}

// scan_listing lists scans against the real service.
func scenarioScanListing(ctx context.Context, s *mcp.ClientSession) error {
	res, err := call(ctx, s, "list_scans", `{"limit": 5}`)
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if res.IsError {
		return fmt.Errorf("list_scans failed: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "total") {
		return fmt.Errorf("unexpected payload: %q", resultText(res))
	}
	return nil
}

// unknown_scan_guidance checks that a bogus scan ID yields a pointer to
// list_scans rather than a bare failure.
func scenarioUnknownScanGuidance(ctx context.Context, s *mcp.ClientSession) error {
	res, err := call(ctx, s, "scan_status", `{"scan_id": "does-not-exist"}`)
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if !res.IsError {
		return fmt.Errorf("expected IsError result")
	}
	if text := resultText(res); !strings.Contains(text, "list_scans") {
		return fmt.Errorf("error text should suggest list_scans, got %q", text)
	}
	return nil
}
