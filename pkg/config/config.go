// Package config loads application configuration from the environment.
// Flags overlay these values in the CLI; the HTTP service and MCP server
// consume the struct as-is. All fields have working defaults so a bare
// `osintment scan -target x` works against a local SpiderFoot.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Environment variable names.
const (
	EnvSpiderFootURL    = "SPIDERFOOT_URL"
	EnvSpiderFootAPIKey = "SPIDERFOOT_API_KEY"
	EnvReportOutputDir  = "REPORT_OUTPUT_DIR"
	EnvReportLogoPath   = "REPORT_LOGO_PATH"
	EnvCompanyName      = "COMPANY_NAME"
	EnvReportAuthor     = "REPORT_AUTHOR"
	EnvLogLevel         = "LOG_LEVEL"
	EnvDebug            = "DEBUG"
	EnvProxy            = "OSINTMENT_PROXY"
	EnvOTLPEndpoint     = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config is the flat application configuration.
type Config struct {
	// Scanning service.
	SpiderFootURL string
	APIKey        string

	// Report branding and output.
	OutputDir   string
	LogoPath    string
	CompanyName string
	Author      string

	// Application behaviour.
	LogLevel string
	Debug    bool

	// Optional transports.
	Proxy        string
	OTLPEndpoint string
}

// Load reads configuration from the environment over built-in defaults.
func Load() *Config {
	return &Config{
		SpiderFootURL: envStr(EnvSpiderFootURL, "http://localhost:5001"),
		APIKey:        envStr(EnvSpiderFootAPIKey, ""),
		OutputDir:     envStr(EnvReportOutputDir, "./reports"),
		LogoPath:      envStr(EnvReportLogoPath, "./templates/assets/logo.png"),
		CompanyName:   envStr(EnvCompanyName, "Professional OSINT Services"),
		Author:        envStr(EnvReportAuthor, "OSINT Team"),
		LogLevel:      envStr(EnvLogLevel, "INFO"),
		Debug:         envBool(EnvDebug, false),
		Proxy:         envStr(EnvProxy, ""),
		OTLPEndpoint:  envStr(EnvOTLPEndpoint, ""),
	}
}

// Validate checks the fields other components will trust blindly.
func (c *Config) Validate() error {
	u, err := url.Parse(c.SpiderFootURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid SpiderFoot URL %q: must be http(s)://host[:port]", c.SpiderFootURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: invalid SpiderFoot URL scheme %q: use http or https", u.Scheme)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("config: output directory must not be empty")
	}
	return nil
}

// EnsureDirectories creates the report output directory tree.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("config: create output dir %s: %w", c.OutputDir, err)
	}
	return nil
}

// LogoExists reports whether the configured logo file is present.
// Reports render without a logo when it is not.
func (c *Config) LogoExists() bool {
	if c.LogoPath == "" {
		return false
	}
	info, err := os.Stat(c.LogoPath)
	return err == nil && !info.IsDir()
}

// ReportPath joins a file name onto the output directory.
func (c *Config) ReportPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
