// Package report renders categorized scan intelligence into deliverable
// artifacts.
//
// The package is organized by logical concern across multiple files:
//
// # Core Generation (report.go)
//
// Generator, Config, Format, Artifact. The Generator analyzes a scan's
// findings once and fans out to the requested formats. Filenames follow
// the osint_report_<target>_<timestamp> convention unless a custom stem
// is given.
//
// # HTML Reports (html.go, templates/report.html)
//
// The embedded HTML template renders the full assessment: executive
// summary, critical findings, domain intelligence, technology stack,
// network and contact data, security findings, timeline, and module
// efficiency.
//
// # PDF Reports (pdf.go, chrome.go)
//
// Two engines: the native engine draws the report directly with fpdf,
// the chrome engine prints the HTML report through a headless browser.
// When either fails, the HTML body is written next to the intended PDF
// and the returned *PDFError carries that fallback path.
//
// # Data Exports (json.go, csv.go)
//
// JSON exports the complete analysis bundle; CSV flattens the raw
// findings with a sorted union of their keys.
//
// # Text Summary (text.go)
//
// ExecutiveSummaryText produces the fixed-layout terminal summary
// printed after every generation run.
//
// # Custom Templates (template.go)
//
// Exporter renders the analysis bundle through user-supplied or built-in
// text templates with the sprig function library.
//
// # Branding (branding.go)
//
// BrandingConfig customizes company identity, colors, and section
// visibility via YAML files.
package report
