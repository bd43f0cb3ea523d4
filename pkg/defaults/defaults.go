// Package defaults provides canonical default values shared across the
// codebase. Reference these instead of repeating literals so the CLI,
// the HTTP service, and the MCP server stay in agreement.
package defaults

import "fmt"

// ToolName is the canonical application name, used for service
// identification in telemetry and user agents.
const ToolName = "osintment"

// Version is the current release version. Build-time overrides land in
// pkg/ui via ldflags; this constant backs telemetry and user agents.
const Version = "1.0.0"

// UserAgent returns the identification string for API traffic.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", ToolName, Version)
}

// Content types for HTTP requests and responses.
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeCSV  = "text/csv"
	ContentTypePDF  = "application/pdf"
)

// Service ports.
const (
	// SpiderFootPort is the stock port of a local SpiderFoot instance.
	SpiderFootPort = 5001

	// WebPort is the default HTTP service port.
	WebPort = 5000

	// MetricsPort is the default standalone Prometheus scrape port.
	MetricsPort = 9090
)
