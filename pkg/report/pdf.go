package report

import (
	"bytes"
	"context"
	"fmt"

	gofpdf "github.com/go-pdf/fpdf"

	"github.com/osintment/osintment/pkg/analyzer"
)

// PDF engine names accepted by Config.PDFEngine.
const (
	EngineNative = "native"
	EngineChrome = "chrome"
)

// Document carries everything a PDF engine needs to render a report.
// The chrome engine prints the HTML body; the native engine draws the
// bundle directly.
type Document struct {
	HTML        string
	Bundle      *analyzer.Bundle
	Title       string
	Target      string
	ScanDate    string
	ReportDate  string
	CompanyName string
	Author      string
}

// PDFEngine renders a report document to PDF bytes.
type PDFEngine interface {
	Name() string
	Render(ctx context.Context, doc *Document) ([]byte, error)
}

// PDFError reports a failed PDF render. The HTML body is written next to
// where the PDF would have gone so the report is not lost.
type PDFError struct {
	Err          error
	FallbackPath string
}

func (e *PDFError) Error() string {
	return fmt.Sprintf("pdf generation failed: %v; html report saved to: %s", e.Err, e.FallbackPath)
}

func (e *PDFError) Unwrap() error { return e.Err }

func newPDFEngine(name string) (PDFEngine, error) {
	switch name {
	case "", EngineNative:
		return &nativeEngine{}, nil
	case EngineChrome:
		return &chromeEngine{}, nil
	default:
		return nil, fmt.Errorf("unknown pdf engine: %s (native, chrome)", name)
	}
}

// nativeEngine draws the report with fpdf. It needs no external processes
// and is the default engine.
type nativeEngine struct {
	noCompress bool // tests disable stream compression so text is searchable
}

func (*nativeEngine) Name() string { return EngineNative }

func (e *nativeEngine) Render(ctx context.Context, doc *Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	if e.noCompress {
		pdf.SetCompression(false)
	}
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Author, true)
	pdf.SetCreator(doc.CompanyName, true)
	pdf.SetAutoPageBreak(true, 15)

	e.addCoverPage(pdf, doc)
	e.addExecutiveSummary(pdf, doc.Bundle)
	e.addCriticalFindings(pdf, doc.Bundle)
	e.addDomainIntelligence(pdf, doc.Bundle)
	e.addTechnologyStack(pdf, doc.Bundle)
	e.addNetworkIntelligence(pdf, doc.Bundle)
	e.addContactInformation(pdf, doc.Bundle)
	e.addSecurityFindings(pdf, doc.Bundle)
	e.addTimeline(pdf, doc.Bundle)
	e.addModuleEfficiency(pdf, doc.Bundle)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *nativeEngine) addCoverPage(pdf *gofpdf.Fpdf, doc *Document) {
	pdf.AddPage()
	pdf.Ln(60)

	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 14, "OSINT Assessment Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 10, doc.Target, "", 1, "C", false, 0, "")
	pdf.Ln(40)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(100, 100, 100)
	for _, line := range []string{
		"Scan Date: " + doc.ScanDate,
		"Report Date: " + doc.ReportDate,
		"Prepared by: " + doc.Author,
		doc.CompanyName,
	} {
		pdf.CellFormat(0, 7, line, "", 1, "C", false, 0, "")
	}
}

func (e *nativeEngine) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 10, "  "+title, "", 1, "L", true, 0, "")
	pdf.Ln(4)
}

func (e *nativeEngine) addExecutiveSummary(pdf *gofpdf.Fpdf, b *analyzer.Bundle) {
	pdf.AddPage()
	e.addSectionHeader(pdf, "Executive Summary")

	s := b.ExecutiveSummary
	d := b.DomainIntelligence

	metrics := []struct {
		label string
		value int
	}{
		{"Total Findings", s.TotalFindings},
		{"Unique Data Types", s.UniqueDataTypes},
		{"Domains Discovered", d.TotalDomains},
		{"Subdomains Found", d.TotalSubdomains},
		{"IP Addresses", d.TotalIPs},
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(90, 7, "Metric", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Value", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, m := range metrics {
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(90, 7, m.label, "1", 0, "L", true, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", m.value), "1", 1, "C", true, 0, "")
	}

	if len(s.TopCategories) == 0 {
		return
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 9, "Top Discovery Categories", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(90, 7, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Findings", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Share", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, c := range s.TopCategories {
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		share := 0.0
		if s.TotalFindings > 0 {
			share = float64(c.Count) / float64(s.TotalFindings) * 100
		}
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(90, 7, truncateString(c.Category, 52), "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", c.Count), "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.1f%%", share), "1", 1, "C", true, 0, "")
	}
}

func (e *nativeEngine) addCriticalFindings(pdf *gofpdf.Fpdf, b *analyzer.Bundle) {
	if len(b.CriticalFindings) == 0 {
		return
	}

	pdf.AddPage()
	e.addSectionHeader(pdf, "Critical Findings")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.MultiCell(0, 5, "High-priority discoveries that warrant immediate review. Each data "+
		"type is capped at its most relevant entries.", "", "L", false)
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(185, 28, 28)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(45, 7, "Type", "1", 0, "L", true, 0, "")
	pdf.CellFormat(85, 7, "Data", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Module", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Conf.", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for i, f := range b.CriticalFindings {
		if i%2 == 0 {
			pdf.SetFillColor(254, 247, 247)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(45, 6, truncateString(f.Type, 28), "1", 0, "L", true, 0, "")
		pdf.CellFormat(85, 6, truncateString(f.Data, 55), "1", 0, "L", true, 0, "")
		pdf.CellFormat(40, 6, truncateString(f.Module, 24), "1", 0, "L", true, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d%%", f.Confidence), "1", 1, "C", true, 0, "")
	}
}

func (e *nativeEngine) addDomainIntelligence(pdf *gofpdf.Fpdf, b *analyzer.Bundle) {
	d := b.DomainIntelligence
	if d.TotalDomains == 0 && d.TotalSubdomains == 0 && d.TotalIPs == 0 {
		return
	}

	pdf.AddPage()
	e.addSectionHeader(pdf, "Domain Intelligence")

	e.addListBlock(pdf, "Domains", d.Domains, 40)
	e.addListBlock(pdf, "Subdomains", d.Subdomains, 40)
	e.addListBlock(pdf, "IP Addresses", d.IPAddresses, 40)
}

func (e *nativeEngine) addTechnologyStack(pdf *gofpdf.Fpdf, b *analyzer.Bundle) {
	if len(b.TechnologyStack) == 0 {
		return
	}

	pdf.AddPage()
	e.addSectionHeader(pdf, "Technology Stack")

	// Fixed bucket order so repeated renders are identical.
	for _, bucket := range []string{"Web Servers", "Server Banners", "Software", "Operating Systems"} {
		e.addListBlock(pdf, bucket, b.TechnologyStack[bucket], 25)
	}
}

func (e *nativeEngine) addNetworkIntelligence(pdf *gofpdf.Fpdf, b *analyzer.Bundle) {
	n := b.NetworkIntelligence
	if len(n.IPAddresses) == 0 && len(n.Netblocks) == 0 && len(n.ASNInfo) == 0 && len(n.BGPInfo) == 0 {
		return
	}

	pdf.AddPage()
	e.addSectionHeader(pdf, "Network Intelligence")

	e.addListBlock(pdf, "IP Addresses", n.IPAddresses, 40)
	e.addListBlock(pdf, "Netblocks", n.Netblocks, 25)
	e.addListBlock(pdf, "ASN Information", n.ASNInfo, 25)
	e.addListBlock(pdf, "BGP Information", n.BGPInfo, 25)
}

func (e *nativeEngine) addContactInformation(pdf *gofpdf.Fpdf, b *analyzer.Bundle) {
	c := b.ContactInformation
	if len(c.Emails) == 0 && len(c.PhoneNumbers) == 0 && len(c.PhysicalAddresses) == 0 && len(c.SocialProfiles) == 0 {
		return
	}

	pdf.AddPage()
	e.addSectionHeader(pdf, "Contact Information")

	e.addListBlock(pdf, "Email Addresses", c.Emails, 40)
	e.addListBlock(pdf, "Phone Numbers", c.PhoneNumbers, 25)
	e.addListBlock(pdf, "Physical Addresses", c.PhysicalAddresses, 25)
	e.addListBlock(pdf, "Social Media Profiles", c.SocialProfiles, 25)
}

func (e *nativeEngine) addSecurityFindings(pdf *gofpdf.Fpdf, b *analyzer.Bundle) {
	s := b.SecurityFindings
	if len(s.Vulnerabilities) == 0 && len(s.MaliciousIndicators) == 0 && len(s.LeakedData) == 0 && len(s.SSLIssues) == 0 {
		return
	}

	pdf.AddPage()
	e.addSectionHeader(pdf, "Security Findings")

	e.addFindingTable(pdf, "Vulnerabilities", s.Vulnerabilities)
	e.addFindingTable(pdf, "Malicious Indicators", s.MaliciousIndicators)
	e.addFindingTable(pdf, "Leaked Data", s.LeakedData)
	e.addFindingTable(pdf, "SSL Certificate Issues", s.SSLIssues)
}

func (e *nativeEngine) addFindingTable(pdf *gofpdf.Fpdf, title string, rows []analyzer.SecurityFinding) {
	if len(rows) == 0 {
		return
	}

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+30 > pageH-20 {
		pdf.AddPage()
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(45, 7, "Type", "1", 0, "L", true, 0, "")
	pdf.CellFormat(95, 7, "Data", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 7, "Module", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for i, r := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(45, 6, truncateString(r.Type, 28), "1", 0, "L", true, 0, "")
		pdf.CellFormat(95, 6, truncateString(r.Data, 62), "1", 0, "L", true, 0, "")
		pdf.CellFormat(50, 6, truncateString(r.Module, 30), "1", 1, "L", true, 0, "")
	}
	pdf.Ln(4)
}

func (e *nativeEngine) addTimeline(pdf *gofpdf.Fpdf, b *analyzer.Bundle) {
	if len(b.Timeline) == 0 {
		return
	}

	pdf.AddPage()
	e.addSectionHeader(pdf, "Discovery Timeline")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(40, 7, "Timestamp", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Type", "1", 0, "L", true, 0, "")
	pdf.CellFormat(75, 7, "Data", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 7, "Module", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for i, ev := range b.Timeline {
		if i >= 50 {
			break // cap displayed rows
		}
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(40, 6, truncateString(ev.Timestamp, 24), "1", 0, "L", true, 0, "")
		pdf.CellFormat(40, 6, truncateString(ev.Type, 24), "1", 0, "L", true, 0, "")
		pdf.CellFormat(75, 6, truncateString(ev.Data, 48), "1", 0, "L", true, 0, "")
		pdf.CellFormat(35, 6, truncateString(ev.Module, 20), "1", 1, "L", true, 0, "")
	}

	if len(b.Timeline) > 50 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 5, fmt.Sprintf("Showing 50 of %d timeline events. The JSON export contains the full set.", len(b.Timeline)), "", 1, "L", false, 0, "")
	}
}

func (e *nativeEngine) addModuleEfficiency(pdf *gofpdf.Fpdf, b *analyzer.Bundle) {
	if len(b.ModuleEfficiency) == 0 {
		return
	}

	pdf.AddPage()
	e.addSectionHeader(pdf, "Module Efficiency")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.MultiCell(0, 5, "Reconnaissance modules ranked by the number of findings they produced.", "", "L", false)
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(110, 7, "Module", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Findings", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, m := range b.ModuleEfficiency {
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(110, 7, truncateString(m.Module, 64), "1", 0, "L", true, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", m.Findings), "1", 1, "C", true, 0, "")
	}
}

// addListBlock renders a titled bullet list with a count, capped at limit
// entries with an overflow note.
func (e *nativeEngine) addListBlock(pdf *gofpdf.Fpdf, title string, values []string, limit int) {
	if len(values) == 0 {
		return
	}

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+25 > pageH-20 {
		pdf.AddPage()
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 9, fmt.Sprintf("%s (%d)", title, len(values)), "", 1, "L", false, 0, "")

	shown := values
	more := 0
	if limit > 0 && len(shown) > limit {
		more = len(shown) - limit
		shown = shown[:limit]
	}

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	for _, v := range shown {
		pdf.CellFormat(0, 5, "  - "+truncateString(v, 105), "", 1, "L", false, 0, "")
	}
	if more > 0 {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 5, fmt.Sprintf("  ... and %d more", more), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

// truncateString shortens s to at most maxLen characters, appending "..."
// when content is cut. Rune aware so multibyte text is never split.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
