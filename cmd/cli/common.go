package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/osintment/osintment/pkg/config"
	"github.com/osintment/osintment/pkg/filter"
	"github.com/osintment/osintment/pkg/httpclient"
	"github.com/osintment/osintment/pkg/report"
	"github.com/osintment/osintment/pkg/spiderfoot"
	"github.com/osintment/osintment/pkg/ui"
)

// CommonFlags are the connection and display options shared by every
// command that talks to the scanning service. Defaults come from the
// environment via pkg/config; flags overlay them.
type CommonFlags struct {
	URL      string
	APIKey   string
	Proxy    string
	Insecure bool
	Silent   bool
	NoColor  bool
}

func registerCommonFlags(fs *flag.FlagSet, cfg *config.Config) *CommonFlags {
	cf := &CommonFlags{}
	fs.StringVar(&cf.URL, "url", cfg.SpiderFootURL, "SpiderFoot base URL")
	fs.StringVar(&cf.APIKey, "api-key", cfg.APIKey, "SpiderFoot API key (sent as a bearer token)")
	fs.StringVar(&cf.Proxy, "proxy", cfg.Proxy, "Proxy URL (http, https, socks5, socks5h)")
	fs.BoolVar(&cf.Insecure, "insecure", false, "Skip TLS certificate verification")
	fs.BoolVar(&cf.Silent, "silent", false, "Suppress banner and progress output")
	fs.BoolVar(&cf.NoColor, "no-color", false, "Disable colored output")
	return cf
}

// apply pushes the display flags into pkg/ui. Call right after Parse.
func (cf *CommonFlags) apply() {
	ui.SetSilent(cf.Silent)
	ui.SetNoColor(cf.NoColor)
}

// client builds the scanning-service client. The shared pooled
// transport is used unless proxy or TLS options force a custom one.
func (cf *CommonFlags) client() *spiderfoot.Client {
	var hc *http.Client
	if cf.Proxy != "" || cf.Insecure {
		hcfg := httpclient.DefaultConfig()
		hcfg.Proxy = cf.Proxy
		hcfg.InsecureSkipVerify = cf.Insecure
		hc = httpclient.New(hcfg)
	}
	return spiderfoot.New(spiderfoot.Config{
		BaseURL:    cf.URL,
		APIKey:     cf.APIKey,
		HTTPClient: hc,
	})
}

// ReportFlags are the artifact and branding options shared by the scan
// and report commands.
type ReportFlags struct {
	Output    string
	PDFEngine string
	Branding  string
	Logo      string
	Company   string
	Author    string
}

func registerReportFlags(fs *flag.FlagSet, cfg *config.Config) *ReportFlags {
	rf := &ReportFlags{}
	fs.StringVar(&rf.Output, "output", cfg.OutputDir, "Report output directory")
	fs.StringVar(&rf.PDFEngine, "pdf-engine", "", "PDF engine: native or chrome")
	fs.StringVar(&rf.Branding, "branding", "", "YAML branding file overriding company fields")
	fs.StringVar(&rf.Logo, "logo", cfg.LogoPath, "Logo image embedded in HTML reports")
	fs.StringVar(&rf.Company, "company", cfg.CompanyName, "Company name on report headers")
	fs.StringVar(&rf.Author, "author", cfg.Author, "Report author")
	return rf
}

// generator builds the report generator, loading the branding file
// when one was named.
func (rf *ReportFlags) generator() (*report.Generator, error) {
	var branding *report.BrandingConfig
	if rf.Branding != "" {
		b, err := report.LoadBrandingConfig(rf.Branding)
		if err != nil {
			return nil, err
		}
		branding = b
	}
	return report.NewGenerator(report.Config{
		OutputDir:   rf.Output,
		CompanyName: rf.Company,
		Author:      rf.Author,
		LogoPath:    rf.Logo,
		PDFEngine:   rf.PDFEngine,
		Branding:    branding,
	})
}

// FilterFlags narrow the finding set before analysis and reporting.
type FilterFlags struct {
	Types          string
	ExcludeTypes   string
	Modules        string
	ExcludeModules string
	MinConfidence  int
	DataContains   string
	Script         string
}

func registerFilterFlags(fs *flag.FlagSet) *FilterFlags {
	ff := &FilterFlags{}
	fs.StringVar(&ff.Types, "filter-types", "", "Keep only these event types (comma-separated)")
	fs.StringVar(&ff.ExcludeTypes, "exclude-types", "", "Drop these event types (comma-separated)")
	fs.StringVar(&ff.Modules, "filter-modules", "", "Keep only findings from these modules (comma-separated)")
	fs.StringVar(&ff.ExcludeModules, "exclude-modules", "", "Drop findings from these modules (comma-separated)")
	fs.IntVar(&ff.MinConfidence, "min-confidence", 0, "Drop findings below this confidence (0-100)")
	fs.StringVar(&ff.DataContains, "filter-data", "", "Keep only findings whose data contains this substring")
	fs.StringVar(&ff.Script, "filter-script", "", "Tengo script with a keep(finding) function")
	return ff
}

func (ff *FilterFlags) build() (*filter.Filter, error) {
	return filter.New(filter.Config{
		Types:          splitCSV(ff.Types),
		ExcludeTypes:   splitCSV(ff.ExcludeTypes),
		Modules:        splitCSV(ff.Modules),
		ExcludeModules: splitCSV(ff.ExcludeModules),
		MinConfidence:  ff.MinConfidence,
		DataContains:   ff.DataContains,
		ScriptPath:     ff.Script,
	})
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// fatal prints the error and exits with the given code.
func fatal(code int, format string, args ...any) {
	ui.PrintError(fmt.Sprintf(format, args...))
	os.Exit(code)
}

// stringField reads a string-ish value out of a service row.
func stringField(row map[string]any, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}
