package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var sectionHeadings = []string{
	"Executive Summary",
	"Critical Findings",
	"Domain Intelligence",
	"Technology Stack",
	"Network Intelligence",
	"Contact Information",
	"Security Findings",
	"Discovery Timeline",
	"Module Efficiency",
}

func TestRenderHTMLAllSections(t *testing.T) {
	g := newTestGenerator(t)

	html, err := g.renderHTML(sampleBundle())
	if err != nil {
		t.Fatalf("renderHTML: %v", err)
	}
	for _, heading := range sectionHeadings {
		if !strings.Contains(html, heading) {
			t.Errorf("html missing section %q", heading)
		}
	}
	if !strings.Contains(html, "OSINT Assessment - example.com") {
		t.Error("html missing report title")
	}
}

func TestRenderHTMLSectionToggles(t *testing.T) {
	sections := DefaultBrandingConfig().Sections
	sections.Timeline = false
	sections.ContactInformation = false

	g, err := NewGenerator(Config{
		OutputDir: t.TempDir(),
		Branding:  &BrandingConfig{Sections: sections},
	})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	html, err := g.renderHTML(sampleBundle())
	if err != nil {
		t.Fatalf("renderHTML: %v", err)
	}
	if strings.Contains(html, "Discovery Timeline") {
		t.Error("disabled timeline section still rendered")
	}
	if strings.Contains(html, "Contact Information") {
		t.Error("disabled contacts section still rendered")
	}
	if !strings.Contains(html, "Executive Summary") {
		t.Error("enabled section missing")
	}
}

func TestRenderHTMLBrandingColors(t *testing.T) {
	g, err := NewGenerator(Config{
		OutputDir: t.TempDir(),
		Branding:  &BrandingConfig{AccentColor: "#ff0066", Theme: "dark"},
	})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	html, err := g.renderHTML(sampleBundle())
	if err != nil {
		t.Fatalf("renderHTML: %v", err)
	}
	if !strings.Contains(html, "--accent: #ff0066") {
		t.Error("accent color not injected into styles")
	}
	if !strings.Contains(html, `data-theme="dark"`) {
		t.Error("theme attribute not set")
	}
}

func TestRenderHTMLSkipsMissingLogo(t *testing.T) {
	g, err := NewGenerator(Config{
		OutputDir: t.TempDir(),
		LogoPath:  "/nonexistent/logo.png",
	})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	html, err := g.renderHTML(sampleBundle())
	if err != nil {
		t.Fatalf("renderHTML: %v", err)
	}
	if strings.Contains(html, "<img class=\"logo\"") {
		t.Error("logo img rendered for a missing file")
	}
}

func TestRenderHTMLIncludesExistingLogo(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(logo, []byte("png"), 0o644); err != nil {
		t.Fatalf("write logo: %v", err)
	}

	g, err := NewGenerator(Config{OutputDir: dir, LogoPath: logo})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	html, err := g.renderHTML(sampleBundle())
	if err != nil {
		t.Fatalf("renderHTML: %v", err)
	}
	if !strings.Contains(html, "<img class=\"logo\"") {
		t.Error("logo img missing for an existing file")
	}
}

func TestRenderHTMLEscapesFindingData(t *testing.T) {
	g := newTestGenerator(t)

	results := []map[string]any{
		{"type": "INTERNET_NAME", "data": "<script>alert(1)</script>", "module": "m1"},
	}
	bundle := analyzedBundle(t, results)

	html, err := g.renderHTML(bundle)
	if err != nil {
		t.Fatalf("renderHTML: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("finding data not escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("escaped finding data missing entirely")
	}
}

func TestRenderHTMLPercentages(t *testing.T) {
	g := newTestGenerator(t)

	html, err := g.renderHTML(sampleBundle())
	if err != nil {
		t.Fatalf("renderHTML: %v", err)
	}
	// Five categories at one finding each.
	if !strings.Contains(html, "20.0%") {
		t.Error("category share percentage missing")
	}
}
