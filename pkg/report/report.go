package report

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/osintment/osintment/pkg/analyzer"
	"github.com/osintment/osintment/pkg/finding"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// Format selects a report output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"

	// FormatBoth expands to HTML plus PDF.
	FormatBoth Format = "both"
)

// ErrUnsupportedFormat is returned for formats the generator cannot
// produce.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatPDF, FormatJSON, FormatCSV, FormatBoth:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Expand resolves aggregate formats to the concrete list to generate.
func (f Format) Expand() []Format {
	if f == FormatBoth {
		return []Format{FormatHTML, FormatPDF}
	}
	return []Format{f}
}

// Artifact describes one generated report file.
type Artifact struct {
	Path   string `json:"path"`
	Format Format `json:"format"`

	// FallbackPath is set when a PDF render failed and the HTML body was
	// written in its place.
	FallbackPath string `json:"fallback_path,omitempty"`
}

// Generator defaults, matching the service configuration defaults.
const (
	DefaultOutputDir   = "./reports"
	DefaultCompanyName = "Professional OSINT Services"
	DefaultAuthor      = "OSINT Team"
)

// Config configures a Generator. Zero values fall back to the defaults
// above.
type Config struct {
	// OutputDir is where artifacts are written. Created if missing.
	OutputDir string

	// CompanyName and Author appear in report headers and PDF metadata.
	CompanyName string
	Author      string

	// LogoPath is embedded in HTML reports when the file exists.
	LogoPath string

	// PDFEngine selects the renderer: "native" (default) draws with
	// fpdf, "chrome" prints the HTML report through a headless browser.
	PDFEngine string

	// Branding layers optional YAML-driven customization over the
	// company fields and the HTML appearance.
	Branding *BrandingConfig
}

// Generator renders scan findings into report artifacts. Safe for
// concurrent use; each Generate call analyzes independently.
type Generator struct {
	cfg      Config
	tmpl     *template.Template
	engine   PDFEngine
	branding *BrandingConfig
}

// NewGenerator builds a generator, creating the output directory and
// parsing the report template up front so later failures are I/O only.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.CompanyName == "" {
		cfg.CompanyName = DefaultCompanyName
	}
	if cfg.Author == "" {
		cfg.Author = DefaultAuthor
	}

	branding := cfg.Branding
	if branding == nil {
		branding = DefaultBrandingConfig()
	} else {
		branding = MergeBranding(DefaultBrandingConfig(), branding)
	}
	if err := ValidateBranding(branding); err != nil {
		return nil, err
	}
	if branding.CompanyName != "" {
		cfg.CompanyName = branding.CompanyName
	}
	if branding.Author != "" {
		cfg.Author = branding.Author
	}
	if branding.LogoPath != "" {
		cfg.LogoPath = branding.LogoPath
	}

	engine, err := newPDFEngine(cfg.PDFEngine)
	if err != nil {
		return nil, err
	}

	tmpl, err := newReportTemplate()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create report output dir: %w", err)
	}

	return &Generator{cfg: cfg, tmpl: tmpl, engine: engine, branding: branding}, nil
}

// Generate analyzes the raw scan results once and produces every
// requested artifact. stem overrides the default filename stem (without
// extension); pass "" for the default.
//
// A PDF render failure aborts the run with a *PDFError whose
// FallbackPath names the HTML file written in the PDF's place.
func (g *Generator) Generate(ctx context.Context, results []map[string]any, info finding.ScanInfo, format Format, stem string) ([]Artifact, error) {
	findings := finding.FromMaps(results)
	bundle := analyzer.Analyze(findings, info)

	artifacts := make([]Artifact, 0, 2)
	for _, f := range format.Expand() {
		var (
			a   Artifact
			err error
		)
		switch f {
		case FormatHTML:
			a, err = g.writeHTML(bundle, info, stem)
		case FormatPDF:
			a, err = g.writePDF(ctx, bundle, info, stem)
		case FormatJSON:
			a, err = g.writeJSON(bundle, info, stem)
		case FormatCSV:
			a, err = g.writeCSV(results, info, stem)
		default:
			return artifacts, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
		}
		if err != nil {
			return artifacts, err
		}
		if a.Path != "" {
			artifacts = append(artifacts, a)
		}
	}
	return artifacts, nil
}

// ExecutiveSummaryText analyzes the results and returns the fixed-layout
// terminal summary.
func (g *Generator) ExecutiveSummaryText(results []map[string]any, info finding.ScanInfo) string {
	bundle := analyzer.Analyze(finding.FromMaps(results), info)
	return executiveSummaryText(bundle)
}

// OutputDir returns the directory artifacts are written to.
func (g *Generator) OutputDir() string { return g.cfg.OutputDir }

func (g *Generator) writeHTML(bundle *analyzer.Bundle, info finding.ScanInfo, stem string) (Artifact, error) {
	body, err := g.renderHTML(bundle)
	if err != nil {
		return Artifact{}, err
	}
	if stem == "" {
		stem = reportStem(info)
	}
	path := filepath.Join(g.cfg.OutputDir, stem+".html")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return Artifact{}, fmt.Errorf("write html report: %w", err)
	}
	return Artifact{Path: path, Format: FormatHTML}, nil
}

func (g *Generator) writePDF(ctx context.Context, bundle *analyzer.Bundle, info finding.ScanInfo, stem string) (Artifact, error) {
	body, err := g.renderHTML(bundle)
	if err != nil {
		return Artifact{}, err
	}
	if stem == "" {
		stem = reportStem(info)
	}

	data, err := g.engine.Render(ctx, g.document(bundle, body))
	if err != nil {
		fallback := filepath.Join(g.cfg.OutputDir, stem+".html")
		if werr := os.WriteFile(fallback, []byte(body), 0o644); werr != nil {
			return Artifact{}, fmt.Errorf("pdf render: %v; write html fallback: %w", err, werr)
		}
		return Artifact{}, &PDFError{Err: err, FallbackPath: fallback}
	}

	path := filepath.Join(g.cfg.OutputDir, stem+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("write pdf report: %w", err)
	}
	return Artifact{Path: path, Format: FormatPDF}, nil
}

func (g *Generator) writeJSON(bundle *analyzer.Bundle, info finding.ScanInfo, stem string) (Artifact, error) {
	if stem == "" {
		stem = exportStem(info)
	}
	path := filepath.Join(g.cfg.OutputDir, stem+".json")
	if err := WriteJSONFile(path, bundle); err != nil {
		return Artifact{}, err
	}
	return Artifact{Path: path, Format: FormatJSON}, nil
}

func (g *Generator) writeCSV(results []map[string]any, info finding.ScanInfo, stem string) (Artifact, error) {
	if stem == "" {
		stem = exportStem(info)
	}
	path := filepath.Join(g.cfg.OutputDir, stem+".csv")
	written, err := WriteCSVFile(path, results)
	if err != nil {
		return Artifact{}, err
	}
	if !written {
		return Artifact{}, nil
	}
	return Artifact{Path: path, Format: FormatCSV}, nil
}

// document packages everything a PDF engine needs.
func (g *Generator) document(bundle *analyzer.Bundle, body string) *Document {
	return &Document{
		HTML:        body,
		Bundle:      bundle,
		Title:       "OSINT Assessment - " + bundle.ExecutiveSummary.ScanTarget,
		Target:      bundle.ExecutiveSummary.ScanTarget,
		ScanDate:    formatDisplayDate(parseScanDate(bundle.ExecutiveSummary.ScanDate)),
		ReportDate:  formatDisplayDate(timeNow()),
		CompanyName: g.cfg.CompanyName,
		Author:      g.cfg.Author,
	}
}

// logoPath returns the configured logo only when the file is actually
// present, so templates can skip the img tag otherwise.
func (g *Generator) logoPath() string {
	if g.cfg.LogoPath == "" {
		return ""
	}
	st, err := os.Stat(g.cfg.LogoPath)
	if err != nil || st.IsDir() {
		return ""
	}
	return g.cfg.LogoPath
}

var stemSanitizer = strings.NewReplacer(":", "_", "/", "_")

// reportStem builds the default html/pdf filename stem:
// osint_report_<target>_<timestamp>.
func reportStem(info finding.ScanInfo) string {
	target := info.Target
	if target == "" {
		target = "unknown"
	}
	return fmt.Sprintf("osint_report_%s_%s",
		stemSanitizer.Replace(target), timeNow().Format("20060102_150405"))
}

// exportStem builds the default json/csv filename stem: scan_<id>.
func exportStem(info finding.ScanInfo) string {
	return "scan_" + info.ID
}

// displayDateLayout is the report header date format.
const displayDateLayout = "January 02, 2006 at 15:04 UTC"

func formatDisplayDate(t time.Time) string {
	return t.Format(displayDateLayout)
}

// parseScanDate interprets the analyzer's scan_date string. Values
// without a time component, and values that fail to parse, fall back to
// the current time rather than failing the report.
func parseScanDate(s string) time.Time {
	if strings.Contains(s, "T") {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return timeNow()
}
