package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// BrandingConfig controls the visual identity of generated reports.
type BrandingConfig struct {
	CompanyName    string        `yaml:"company_name" json:"company_name"`
	Author         string        `yaml:"author" json:"author"`
	LogoPath       string        `yaml:"logo_path" json:"logo_path"`
	AccentColor    string        `yaml:"accent_color" json:"accent_color"`
	SecondaryColor string        `yaml:"secondary_color" json:"secondary_color"`
	FooterText     string        `yaml:"footer_text" json:"footer_text"`
	Copyright      string        `yaml:"copyright" json:"copyright"`
	ContactEmail   string        `yaml:"contact_email" json:"contact_email"`
	Theme          string        `yaml:"theme" json:"theme"`
	Sections       SectionConfig `yaml:"sections" json:"sections"`
}

// SectionConfig toggles individual report sections on or off.
type SectionConfig struct {
	ExecutiveSummary    bool `yaml:"executive_summary" json:"executive_summary"`
	CriticalFindings    bool `yaml:"critical_findings" json:"critical_findings"`
	DomainIntelligence  bool `yaml:"domain_intelligence" json:"domain_intelligence"`
	TechnologyStack     bool `yaml:"technology_stack" json:"technology_stack"`
	NetworkIntelligence bool `yaml:"network_intelligence" json:"network_intelligence"`
	ContactInformation  bool `yaml:"contact_information" json:"contact_information"`
	SecurityFindings    bool `yaml:"security_findings" json:"security_findings"`
	Timeline            bool `yaml:"timeline" json:"timeline"`
	ModuleEfficiency    bool `yaml:"module_efficiency" json:"module_efficiency"`
}

// DefaultBrandingConfig returns the stock branding with every section enabled.
func DefaultBrandingConfig() *BrandingConfig {
	return &BrandingConfig{
		CompanyName:    DefaultCompanyName,
		Author:         DefaultAuthor,
		AccentColor:    "#0066cc",
		SecondaryColor: "#004999",
		Theme:          "light",
		Sections: SectionConfig{
			ExecutiveSummary:    true,
			CriticalFindings:    true,
			DomainIntelligence:  true,
			TechnologyStack:     true,
			NetworkIntelligence: true,
			ContactInformation:  true,
			SecurityFindings:    true,
			Timeline:            true,
			ModuleEfficiency:    true,
		},
	}
}

// LoadBrandingConfig reads a YAML branding file. Fields absent from the file
// keep their default values.
func LoadBrandingConfig(path string) (*BrandingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read branding config: %w", err)
	}

	cfg := DefaultBrandingConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse branding config: %w", err)
	}

	if err := ValidateBranding(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveBrandingConfig writes the branding to a YAML file, creating parent
// directories as needed.
func SaveBrandingConfig(cfg *BrandingConfig, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal branding config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write branding config: %w", err)
	}
	return nil
}

// MergeBranding overlays the non-empty fields of override onto base and
// returns the result. Neither argument is modified. A zero-value Sections
// block in the override is treated as unset so that an override file which
// only restyles colors does not silently disable every section.
func MergeBranding(base, override *BrandingConfig) *BrandingConfig {
	if base == nil {
		base = DefaultBrandingConfig()
	}
	merged := *base
	if override == nil {
		return &merged
	}

	if override.CompanyName != "" {
		merged.CompanyName = override.CompanyName
	}
	if override.Author != "" {
		merged.Author = override.Author
	}
	if override.LogoPath != "" {
		merged.LogoPath = override.LogoPath
	}
	if override.AccentColor != "" {
		merged.AccentColor = override.AccentColor
	}
	if override.SecondaryColor != "" {
		merged.SecondaryColor = override.SecondaryColor
	}
	if override.FooterText != "" {
		merged.FooterText = override.FooterText
	}
	if override.Copyright != "" {
		merged.Copyright = override.Copyright
	}
	if override.ContactEmail != "" {
		merged.ContactEmail = override.ContactEmail
	}
	if override.Theme != "" {
		merged.Theme = override.Theme
	}
	if override.Sections != (SectionConfig{}) {
		merged.Sections = override.Sections
	}
	return &merged
}

// ValidateBranding checks enum fields and color formats. All problems are
// reported in a single error.
func ValidateBranding(cfg *BrandingConfig) error {
	var errs []string

	switch cfg.Theme {
	case "", "light", "dark", "auto":
	default:
		errs = append(errs, fmt.Sprintf("invalid theme %q (light, dark, auto)", cfg.Theme))
	}

	if cfg.AccentColor != "" && !strings.HasPrefix(cfg.AccentColor, "#") {
		errs = append(errs, fmt.Sprintf("accent_color %q must be a hex color", cfg.AccentColor))
	}
	if cfg.SecondaryColor != "" && !strings.HasPrefix(cfg.SecondaryColor, "#") {
		errs = append(errs, fmt.Sprintf("secondary_color %q must be a hex color", cfg.SecondaryColor))
	}

	if len(errs) > 0 {
		return fmt.Errorf("branding config: %s", strings.Join(errs, "; "))
	}
	return nil
}
