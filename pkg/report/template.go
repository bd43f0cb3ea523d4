package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/osintment/osintment/pkg/analyzer"
	"github.com/osintment/osintment/pkg/finding"
	"github.com/osintment/osintment/pkg/jsonutil"
)

// ExportConfig configures the custom template exporter.
type ExportConfig struct {
	// TemplatePath is the path to a custom template file.
	TemplatePath string

	// TemplateString is an inline template string (alternative to TemplatePath).
	TemplateString string

	// BuiltIn is the name of a built-in template: "markdown", "findings-csv",
	// "digest".
	BuiltIn string
}

// builtInTemplates contains pre-defined templates for common export formats.
var builtInTemplates = map[string]string{
	"markdown": `# OSINT Intelligence Report: {{ .Target }}

Scan: {{ .ScanName }} | Scan Date: {{ .ScanDate }} | Generated: {{ .Generated }}

## Key Metrics

| Metric | Value |
|--------|-------|
| Total Findings | {{ .TotalFindings }} |
| Unique Data Types | {{ .UniqueDataTypes }} |
| Domains | {{ .Domains.TotalDomains }} |
| Subdomains | {{ .Domains.TotalSubdomains }} |
| IP Addresses | {{ .Domains.TotalIPs }} |

## Top Categories
{{ range .TopCategories }}- {{ .Category }}: {{ .Count }}
{{ end }}
{{- if .Critical }}
## Critical Findings

| Type | Data | Module | Confidence |
|------|------|--------|------------|
{{- range .Critical }}
| {{ .Type }} | {{ .Data }} | {{ .Module }} | {{ .Confidence }}% |
{{- end }}
{{ end }}
## Module Efficiency
{{ range .Modules }}- {{ .Module }}: {{ .Findings }}
{{ end }}`,

	"findings-csv": `type,data,module,source,confidence,timestamp
{{- range $type, $records := .Categories }}
{{- range $records }}
{{ escapeCSV $type }},{{ escapeCSV .Data }},{{ escapeCSV .Module }},{{ escapeCSV .Source }},{{ .Confidence }},{{ escapeCSV .Timestamp }}
{{- end }}
{{- end }}`,

	"digest": `OSINT Scan Digest
=================
Target: {{ .Target }}
Generated: {{ .Generated }}

Findings: {{ .TotalFindings }} across {{ .UniqueDataTypes }} data types
Domains: {{ .Domains.TotalDomains }} | Subdomains: {{ .Domains.TotalSubdomains }} | IPs: {{ .Domains.TotalIPs }}
{{ if .Critical }}
Critical items: {{ len .Critical }}
{{- range .Critical }}
  [{{ .Type }}] {{ .Data }} ({{ .Module }})
{{- end }}
{{ end }}`,
}

// Exporter renders an intelligence bundle through a Go template.
// Sprig functions and a few export-specific helpers are available.
type Exporter struct {
	config ExportConfig
	tmpl   *template.Template
}

// NewExporter parses the configured template immediately so invalid
// templates fail before any scan data is fetched.
func NewExporter(config ExportConfig) (*Exporter, error) {
	e := &Exporter{config: config}
	if err := e.parseTemplate(); err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}
	return e, nil
}

func (e *Exporter) parseTemplate() error {
	var templateContent string

	switch {
	case e.config.TemplatePath != "":
		content, err := os.ReadFile(e.config.TemplatePath)
		if err != nil {
			return fmt.Errorf("failed to read template file: %w", err)
		}
		templateContent = string(content)

	case e.config.TemplateString != "":
		templateContent = e.config.TemplateString

	case e.config.BuiltIn != "":
		content, ok := builtInTemplates[e.config.BuiltIn]
		if !ok {
			return fmt.Errorf("unknown built-in template: %s (available: markdown, findings-csv, digest)", e.config.BuiltIn)
		}
		templateContent = content

	default:
		return fmt.Errorf("no template specified: set TemplatePath, TemplateString, or BuiltIn")
	}

	funcMap := sprig.TxtFuncMap()
	funcMap["escapeCSV"] = tmplEscapeCSV
	funcMap["json"] = tmplToJSON
	funcMap["prettyJSON"] = tmplPrettyJSON

	tmpl, err := template.New("export").Funcs(funcMap).Parse(templateContent)
	if err != nil {
		return fmt.Errorf("parse export template: %w", err)
	}

	e.tmpl = tmpl
	return nil
}

// Export renders the bundle and writes the result to w. The template is
// rendered into a buffer first so a mid-render failure writes nothing.
func (e *Exporter) Export(w io.Writer, bundle *analyzer.Bundle) error {
	data := buildExportData(bundle)

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// exportData holds all data available to export templates.
type exportData struct {
	Target          string
	ScanName        string
	ScanDate        string
	Generated       string
	TotalFindings   int
	UniqueDataTypes int
	TopCategories   []analyzer.CategoryCount
	ModuleStats     []analyzer.ModuleCount
	Critical        []analyzer.CriticalFinding
	Domains         analyzer.DomainIntelligence
	Technology      map[string][]string
	Network         analyzer.NetworkIntelligence
	Contacts        analyzer.ContactInformation
	Security        analyzer.SecurityFindings
	Timeline        []analyzer.TimelineEvent
	Modules         []analyzer.ModuleEfficiency
	Categories      map[string][]finding.Record
}

func buildExportData(bundle *analyzer.Bundle) *exportData {
	s := bundle.ExecutiveSummary
	return &exportData{
		Target:          s.ScanTarget,
		ScanName:        s.ScanName,
		ScanDate:        s.ScanDate,
		Generated:       timeNow().UTC().Format(time.RFC3339),
		TotalFindings:   s.TotalFindings,
		UniqueDataTypes: s.UniqueDataTypes,
		TopCategories:   s.TopCategories,
		ModuleStats:     s.ModuleStats,
		Critical:        bundle.CriticalFindings,
		Domains:         bundle.DomainIntelligence,
		Technology:      bundle.TechnologyStack,
		Network:         bundle.NetworkIntelligence,
		Contacts:        bundle.ContactInformation,
		Security:        bundle.SecurityFindings,
		Timeline:        bundle.Timeline,
		Modules:         bundle.ModuleEfficiency,
		Categories:      bundle.CategorizedData,
	}
}

// Template helper functions

// tmplEscapeCSV escapes a string for CSV output. It wraps the value in
// quotes if it contains commas, quotes, or newlines.
func tmplEscapeCSV(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, ",\"\n\r") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}

// tmplToJSON marshals a value to compact JSON.
func tmplToJSON(v any) string {
	data, err := jsonutil.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// tmplPrettyJSON marshals a value to indented JSON.
func tmplPrettyJSON(v any) string {
	data, err := jsonutil.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
