package analyzer

import (
	"sort"
	"time"

	"github.com/osintment/osintment/pkg/finding"
)

// topN caps the ranked lists in the executive summary.
const topN = 10

// criticalPerType caps how many records each critical type contributes.
const criticalPerType = 5

// timelineDataLimit truncates long data values in timeline entries.
const timelineDataLimit = 100

// CategoryCount is one entry of the ranked category list.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ModuleCount is one entry of the ranked module list.
type ModuleCount struct {
	Module string `json:"module"`
	Count  int    `json:"count"`
}

// ExecutiveSummary is the headline statistics view.
type ExecutiveSummary struct {
	TotalFindings   int             `json:"total_findings"`
	UniqueDataTypes int             `json:"unique_data_types"`
	CategoryCounts  map[string]int  `json:"category_counts"`
	TopCategories   []CategoryCount `json:"top_categories"`
	ModuleStats     []ModuleCount   `json:"module_stats"`
	ScanTarget      string          `json:"scan_target"`
	ScanName        string          `json:"scan_name"`
	ScanDate        string          `json:"scan_date"`
}

// ExecutiveSummary computes totals, per-type counts, and the top-10
// category and module rankings. Rankings sort by count descending with
// first-seen order breaking ties.
func (a *Analyzer) ExecutiveSummary() ExecutiveSummary {
	categoryCounts := make(map[string]int, len(a.index))
	for label, records := range a.index {
		categoryCounts[label] = len(records)
	}

	topCategories := make([]CategoryCount, 0, topN)
	for _, label := range stableRankDesc(a.typeOrder, categoryCounts) {
		if len(topCategories) == topN {
			break
		}
		topCategories = append(topCategories, CategoryCount{Category: label, Count: categoryCounts[label]})
	}

	moduleCounts := make(map[string]int, len(a.moduleOrder))
	for _, f := range a.findings {
		moduleCounts[f.ModuleLabel()]++
	}
	moduleStats := make([]ModuleCount, 0, topN)
	for _, module := range stableRankDesc(a.moduleOrder, moduleCounts) {
		if len(moduleStats) == topN {
			break
		}
		moduleStats = append(moduleStats, ModuleCount{Module: module, Count: moduleCounts[module]})
	}

	scanDate := a.info.Created
	if scanDate == "" {
		scanDate = timeNow().Format(time.RFC3339)
	}

	return ExecutiveSummary{
		TotalFindings:   len(a.findings),
		UniqueDataTypes: len(a.index),
		CategoryCounts:  categoryCounts,
		TopCategories:   topCategories,
		ModuleStats:     moduleStats,
		ScanTarget:      a.info.TargetLabel(),
		ScanName:        a.info.NameLabel(),
		ScanDate:        scanDate,
	}
}

// CriticalFinding is one high-priority record, tagged with its type.
type CriticalFinding struct {
	Type       string `json:"type"`
	Data       string `json:"data"`
	Module     string `json:"module"`
	Confidence int    `json:"confidence"`
}

// CriticalFindings walks the fixed priority list and takes at most the
// first five records of each critical type, in index order.
func (a *Analyzer) CriticalFindings() []CriticalFinding {
	critical := make([]CriticalFinding, 0)
	for _, label := range finding.CriticalTypes {
		records, ok := a.index[label]
		if !ok {
			continue
		}
		if len(records) > criticalPerType {
			records = records[:criticalPerType]
		}
		for _, r := range records {
			critical = append(critical, CriticalFinding{
				Type:       label,
				Data:       r.Data,
				Module:     r.Module,
				Confidence: r.Confidence,
			})
		}
	}
	return critical
}

// DomainIntelligence aggregates naming and addressing discoveries.
type DomainIntelligence struct {
	Domains         []string `json:"domains"`
	Subdomains      []string `json:"subdomains"`
	IPAddresses     []string `json:"ip_addresses"`
	TotalDomains    int      `json:"total_domains"`
	TotalSubdomains int      `json:"total_subdomains"`
	TotalIPs        int      `json:"total_ips"`
}

// DomainIntelligence deduplicates and sorts the domain, subdomain, and IP
// findings.
func (a *Analyzer) DomainIntelligence() DomainIntelligence {
	domains := a.distinctSorted(finding.TypeInternetName)
	subdomains := a.distinctSorted(finding.TypeAffiliateInternetName)
	ips := a.distinctSorted(finding.TypeIPAddress)

	return DomainIntelligence{
		Domains:         domains,
		Subdomains:      subdomains,
		IPAddresses:     ips,
		TotalDomains:    len(domains),
		TotalSubdomains: len(subdomains),
		TotalIPs:        len(ips),
	}
}

// TechnologyStack maps report headings to sorted distinct data values.
// Only headings with at least one finding appear in the map.
func (a *Analyzer) TechnologyStack() map[string][]string {
	stack := make(map[string][]string)
	for _, tb := range finding.TechnologyTypes {
		values := a.distinctSorted(tb.Type)
		if len(values) > 0 {
			stack[tb.Bucket] = values
		}
	}
	return stack
}

// NetworkIntelligence carries addressing and routing findings. Buckets
// keep finding order and are not deduplicated; repeated observations are
// signal here.
type NetworkIntelligence struct {
	IPAddresses []string `json:"ip_addresses"`
	Netblocks   []string `json:"netblocks"`
	ASNInfo     []string `json:"asn_info"`
	BGPInfo     []string `json:"bgp_info"`
}

// NetworkIntelligence fills the four network buckets in finding order.
func (a *Analyzer) NetworkIntelligence() NetworkIntelligence {
	return NetworkIntelligence{
		IPAddresses: a.dataValues(finding.TypeIPAddress),
		Netblocks:   a.dataValues(finding.TypeNetblockOwner),
		ASNInfo:     a.dataValues(finding.TypeBGPASOwner),
		BGPInfo:     a.dataValues(finding.TypeBGPASMember),
	}
}

// ContactInformation carries deduplicated people-facing discoveries.
// Bucket order is not guaranteed (set semantics).
type ContactInformation struct {
	Emails            []string `json:"emails"`
	PhoneNumbers      []string `json:"phone_numbers"`
	PhysicalAddresses []string `json:"physical_addresses"`
	SocialProfiles    []string `json:"social_profiles"`
}

// ContactInformation deduplicates each contact bucket.
func (a *Analyzer) ContactInformation() ContactInformation {
	return ContactInformation{
		Emails:            a.distinct(finding.TypeEmailAddr),
		PhoneNumbers:      a.distinct(finding.TypePhoneNumber),
		PhysicalAddresses: a.distinct(finding.TypePhysicalAddress),
		SocialProfiles:    a.distinct(finding.TypeSocialMedia),
	}
}

// SecurityFinding is one security-relevant record tagged with the raw
// type it came from, so merged buckets stay attributable.
type SecurityFinding struct {
	Type   string `json:"type"`
	Data   string `json:"data"`
	Module string `json:"module"`
	Source string `json:"source"`
}

// SecurityFindings groups the security-relevant types. The malicious and
// SSL buckets each merge two raw types, in table order.
type SecurityFindings struct {
	Vulnerabilities     []SecurityFinding `json:"vulnerabilities"`
	MaliciousIndicators []SecurityFinding `json:"malicious_indicators"`
	LeakedData          []SecurityFinding `json:"leaked_data"`
	SSLIssues           []SecurityFinding `json:"ssl_issues"`
}

// SecurityFindings fills the four security buckets from the type table.
func (a *Analyzer) SecurityFindings() SecurityFindings {
	buckets := map[string][]SecurityFinding{
		"vulnerabilities":      make([]SecurityFinding, 0),
		"malicious_indicators": make([]SecurityFinding, 0),
		"leaked_data":          make([]SecurityFinding, 0),
		"ssl_issues":           make([]SecurityFinding, 0),
	}
	for _, tb := range finding.SecurityTypes {
		for _, r := range a.index[tb.Type] {
			buckets[tb.Bucket] = append(buckets[tb.Bucket], SecurityFinding{
				Type:   tb.Type,
				Data:   r.Data,
				Module: r.Module,
				Source: r.Source,
			})
		}
	}
	return SecurityFindings{
		Vulnerabilities:     buckets["vulnerabilities"],
		MaliciousIndicators: buckets["malicious_indicators"],
		LeakedData:          buckets["leaked_data"],
		SSLIssues:           buckets["ssl_issues"],
	}
}

// TimelineEvent is one discovery with a known observation time.
type TimelineEvent struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Data      string `json:"data"`
	Module    string `json:"module"`
}

// Timeline projects every finding with a non-empty timestamp and sorts
// ascending by the raw timestamp string. Ordering is lexicographic, not
// temporal: correct for the service's fixed-width epoch strings, wrong
// for mixed formats.
func (a *Analyzer) Timeline() []TimelineEvent {
	timeline := make([]TimelineEvent, 0)
	for _, f := range a.findings {
		if f.Timestamp == "" {
			continue
		}
		timeline = append(timeline, TimelineEvent{
			Timestamp: f.Timestamp,
			Type:      f.TypeLabel(),
			Data:      truncate(f.Data, timelineDataLimit),
			Module:    f.Module,
		})
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Timestamp < timeline[j].Timestamp
	})
	return timeline
}

// ModuleEfficiency is a per-module finding count.
type ModuleEfficiency struct {
	Module   string `json:"module"`
	Findings int    `json:"findings"`
}

// ModuleEfficiency counts findings per module, sorted descending with
// first-seen order breaking ties.
func (a *Analyzer) ModuleEfficiency() []ModuleEfficiency {
	counts := make(map[string]int, len(a.moduleOrder))
	for _, f := range a.findings {
		counts[f.ModuleLabel()]++
	}

	efficiency := make([]ModuleEfficiency, 0, len(a.moduleOrder))
	for _, module := range stableRankDesc(a.moduleOrder, counts) {
		efficiency = append(efficiency, ModuleEfficiency{Module: module, Findings: counts[module]})
	}
	return efficiency
}

// dataValues returns the data field of every record of a type, in order.
func (a *Analyzer) dataValues(label string) []string {
	records := a.index[label]
	values := make([]string, 0, len(records))
	for _, r := range records {
		values = append(values, r.Data)
	}
	return values
}

// distinct returns the deduplicated data values of a type. Order follows
// map iteration and is deliberately unspecified.
func (a *Analyzer) distinct(label string) []string {
	set := make(map[string]struct{})
	for _, r := range a.index[label] {
		set[r.Data] = struct{}{}
	}
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	return values
}

// distinctSorted returns the deduplicated data values of a type in
// alphabetical order.
func (a *Analyzer) distinctSorted(label string) []string {
	values := a.distinct(label)
	sort.Strings(values)
	return values
}

// truncate cuts s to at most limit runes, keeping multi-byte characters
// intact.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
