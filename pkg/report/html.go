package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/osintment/osintment/pkg/analyzer"
)

//go:embed templates/report.html
var reportTemplateHTML string

// templateData holds all data needed for HTML rendering.
type templateData struct {
	ReportTitle string
	Target      string
	ScanDate    string
	ReportDate  string
	Author      string
	CompanyName string
	LogoPath    string // empty when the logo file is missing

	Branding BrandingConfig
	Sections SectionConfig

	Summary          analyzer.ExecutiveSummary
	CriticalFindings []analyzer.CriticalFinding
	DomainIntel      analyzer.DomainIntelligence
	TechnologyStack  map[string][]string
	NetworkIntel     analyzer.NetworkIntelligence
	Contacts         analyzer.ContactInformation
	SecurityFindings analyzer.SecurityFindings
	Timeline         []analyzer.TimelineEvent
	ModuleEfficiency []analyzer.ModuleEfficiency
}

// newReportTemplate parses the embedded report template once per
// generator.
func newReportTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"pct": func(count, total int) string {
			if total == 0 {
				return "0.0"
			}
			return fmt.Sprintf("%.1f", float64(count)/float64(total)*100)
		},
		"safeCSS": func(s string) template.CSS {
			return template.CSS(s)
		},
	}
	tmpl, err := template.New("report").Funcs(funcMap).Parse(reportTemplateHTML)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return tmpl, nil
}

// renderHTML renders the complete HTML report body for a bundle.
func (g *Generator) renderHTML(bundle *analyzer.Bundle) (string, error) {
	data := g.prepareTemplateData(bundle)

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute report template: %w", err)
	}
	return buf.String(), nil
}

func (g *Generator) prepareTemplateData(bundle *analyzer.Bundle) *templateData {
	summary := bundle.ExecutiveSummary
	return &templateData{
		ReportTitle: "OSINT Assessment - " + summary.ScanTarget,
		Target:      summary.ScanTarget,
		ScanDate:    formatDisplayDate(parseScanDate(summary.ScanDate)),
		ReportDate:  formatDisplayDate(timeNow()),
		Author:      g.cfg.Author,
		CompanyName: g.cfg.CompanyName,
		LogoPath:    g.logoPath(),

		Branding: *g.branding,
		Sections: g.branding.Sections,

		Summary:          summary,
		CriticalFindings: bundle.CriticalFindings,
		DomainIntel:      bundle.DomainIntelligence,
		TechnologyStack:  bundle.TechnologyStack,
		NetworkIntel:     bundle.NetworkIntelligence,
		Contacts:         bundle.ContactInformation,
		SecurityFindings: bundle.SecurityFindings,
		Timeline:         bundle.Timeline,
		ModuleEfficiency: bundle.ModuleEfficiency,
	}
}
