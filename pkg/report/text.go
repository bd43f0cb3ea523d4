package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/osintment/osintment/pkg/analyzer"
)

// executiveSummaryText renders the plain-text executive summary that is
// printed to the terminal after report generation. The scan date is shown
// exactly as the scanner reported it.
func executiveSummaryText(bundle *analyzer.Bundle) string {
	var buf bytes.Buffer
	s := bundle.ExecutiveSummary
	d := bundle.DomainIntelligence

	rule := strings.Repeat("=", 60)

	buf.WriteString("\n")
	buf.WriteString("OSINT INTELLIGENCE REPORT - EXECUTIVE SUMMARY\n")
	buf.WriteString(rule + "\n\n")
	fmt.Fprintf(&buf, "Target: %s\n", s.ScanTarget)
	fmt.Fprintf(&buf, "Scan Date: %s\n", s.ScanDate)
	fmt.Fprintf(&buf, "Report Generated: %s\n\n", timeNow().Format("2006-01-02 15:04:05"))

	buf.WriteString("KEY METRICS\n")
	buf.WriteString("-----------\n")
	fmt.Fprintf(&buf, "Total Findings: %d\n", s.TotalFindings)
	fmt.Fprintf(&buf, "Unique Data Types: %d\n", s.UniqueDataTypes)
	fmt.Fprintf(&buf, "Domains Discovered: %d\n", d.TotalDomains)
	fmt.Fprintf(&buf, "Subdomains Found: %d\n", d.TotalSubdomains)
	fmt.Fprintf(&buf, "IP Addresses: %d\n\n", d.TotalIPs)

	buf.WriteString("TOP DISCOVERY CATEGORIES\n")
	buf.WriteString("------------------------\n")
	for i, c := range s.TopCategories {
		if i >= 5 {
			break
		}
		pct := float64(c.Count) / float64(s.TotalFindings) * 100
		fmt.Fprintf(&buf, "%-40s %6d (%5.1f%%)\n", c.Category, c.Count, pct)
	}

	buf.WriteString("\n" + rule + "\n")
	buf.WriteString("For detailed findings, please refer to the full HTML/PDF report.\n")

	return buf.String()
}
