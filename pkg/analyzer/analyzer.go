// Package analyzer turns a flat list of raw findings into the categorized
// index and the nine derived intelligence views the report renderer
// consumes. Everything here is a pure transformation: no I/O, no retained
// state, and the caller's finding slice is never mutated.
package analyzer

import (
	"sort"
	"time"

	"github.com/osintment/osintment/pkg/finding"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// Analyzer derives intelligence views for one scan's findings. The
// categorized index is built once in New and read-only afterwards.
type Analyzer struct {
	findings []finding.Finding
	info     finding.ScanInfo

	index map[string][]finding.Record

	// First-seen orders, used as stable tie-breaks in ranked views.
	typeOrder   []string
	moduleOrder []string
}

// New categorizes the findings and returns an analyzer over them.
// An empty finding list is valid: every view degrades to empty/zero.
func New(findings []finding.Finding, info finding.ScanInfo) *Analyzer {
	a := &Analyzer{
		findings: findings,
		info:     info,
		index:    make(map[string][]finding.Record),
	}

	seenModules := make(map[string]bool)
	for _, f := range findings {
		label := f.TypeLabel()
		if _, ok := a.index[label]; !ok {
			a.typeOrder = append(a.typeOrder, label)
		}
		a.index[label] = append(a.index[label], f.Record())

		module := f.ModuleLabel()
		if !seenModules[module] {
			seenModules[module] = true
			a.moduleOrder = append(a.moduleOrder, module)
		}
	}
	return a
}

// Categorized returns the type-label index. Callers must treat it as
// read-only; it is shared with the analyzer.
func (a *Analyzer) Categorized() map[string][]finding.Record {
	return a.index
}

// Bundle is the complete analysis package handed to the renderer and the
// JSON exporter. Field names are part of the export format.
type Bundle struct {
	ExecutiveSummary    ExecutiveSummary            `json:"executive_summary"`
	CriticalFindings    []CriticalFinding           `json:"critical_findings"`
	DomainIntelligence  DomainIntelligence          `json:"domain_intelligence"`
	TechnologyStack     map[string][]string         `json:"technology_stack"`
	NetworkIntelligence NetworkIntelligence         `json:"network_intelligence"`
	ContactInformation  ContactInformation          `json:"contact_information"`
	SecurityFindings    SecurityFindings            `json:"security_findings"`
	Timeline            []TimelineEvent             `json:"timeline"`
	ModuleEfficiency    []ModuleEfficiency          `json:"module_efficiency"`
	CategorizedData     map[string][]finding.Record `json:"categorized_data"`
}

// Bundle assembles all nine views plus the categorized index.
func (a *Analyzer) Bundle() *Bundle {
	return &Bundle{
		ExecutiveSummary:    a.ExecutiveSummary(),
		CriticalFindings:    a.CriticalFindings(),
		DomainIntelligence:  a.DomainIntelligence(),
		TechnologyStack:     a.TechnologyStack(),
		NetworkIntelligence: a.NetworkIntelligence(),
		ContactInformation:  a.ContactInformation(),
		SecurityFindings:    a.SecurityFindings(),
		Timeline:            a.Timeline(),
		ModuleEfficiency:    a.ModuleEfficiency(),
		CategorizedData:     a.index,
	}
}

// Analyze is the one-shot form: categorize and derive everything.
func Analyze(findings []finding.Finding, info finding.ScanInfo) *Bundle {
	return New(findings, info).Bundle()
}

// stableRankDesc sorts keys by count descending, preserving the given
// first-seen order among equal counts.
func stableRankDesc(keys []string, counts map[string]int) []string {
	ranked := make([]string, len(keys))
	copy(ranked, keys)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	return ranked
}
