// Package filter narrows finding sets before analysis and reporting.
//
// Criteria compose with AND semantics: a finding survives only when it
// passes every configured one. The zero Config keeps everything, so
// callers can build a Filter unconditionally and apply it blindly.
package filter

import (
	"fmt"
	"strings"

	"github.com/osintment/osintment/pkg/finding"
)

// Config selects which findings survive. All criteria are optional;
// empty slices and zero values match everything.
type Config struct {
	// Types keeps only findings whose event type is listed
	// (e.g. IP_ADDRESS, EMAILADDR). Case-insensitive.
	Types []string

	// ExcludeTypes drops findings whose event type is listed.
	ExcludeTypes []string

	// Modules keeps only findings produced by the listed modules
	// (e.g. sfp_dnsresolve). Case-insensitive.
	Modules []string

	// ExcludeModules drops findings produced by the listed modules.
	ExcludeModules []string

	// MinConfidence drops findings below this confidence (0-100).
	MinConfidence int

	// DataContains keeps only findings whose data payload contains
	// the substring, case-insensitively.
	DataContains string

	// ScriptPath names a Tengo script defining a keep(finding)
	// function, evaluated after the literal criteria.
	ScriptPath string
}

// Filter applies a compiled Config to findings.
type Filter struct {
	cfg       Config
	types     map[string]bool
	exTypes   map[string]bool
	modules   map[string]bool
	exModules map[string]bool
	contains  string
	script    *Script
}

// New compiles the configuration. Loading the Tengo script is the only
// step that can fail.
func New(cfg Config) (*Filter, error) {
	f := &Filter{
		cfg:       cfg,
		types:     toSet(cfg.Types, strings.ToUpper),
		exTypes:   toSet(cfg.ExcludeTypes, strings.ToUpper),
		modules:   toSet(cfg.Modules, strings.ToLower),
		exModules: toSet(cfg.ExcludeModules, strings.ToLower),
		contains:  strings.ToLower(cfg.DataContains),
	}
	if cfg.ScriptPath != "" {
		s, err := LoadScript(cfg.ScriptPath)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		f.script = s
	}
	return f, nil
}

// Empty reports whether the filter matches every finding.
func (f *Filter) Empty() bool {
	return len(f.types) == 0 && len(f.exTypes) == 0 &&
		len(f.modules) == 0 && len(f.exModules) == 0 &&
		f.cfg.MinConfidence <= 0 && f.contains == "" && f.script == nil
}

// Script returns the loaded Tengo script, or nil.
func (f *Filter) Script() *Script { return f.script }

// Keep reports whether the finding passes every criterion.
func (f *Filter) Keep(fd finding.Finding) bool {
	typ := strings.ToUpper(fd.Type)
	if len(f.types) > 0 && !f.types[typ] {
		return false
	}
	if f.exTypes[typ] {
		return false
	}

	mod := strings.ToLower(fd.Module)
	if len(f.modules) > 0 && !f.modules[mod] {
		return false
	}
	if f.exModules[mod] {
		return false
	}

	if fd.Confidence < f.cfg.MinConfidence {
		return false
	}
	if f.contains != "" && !strings.Contains(strings.ToLower(fd.Data), f.contains) {
		return false
	}
	if f.script != nil && !f.script.Keep(fd) {
		return false
	}
	return true
}

// Apply filters raw result rows, returning the survivors. Rows pass
// through untouched so downstream consumers see the original fields.
func (f *Filter) Apply(results []map[string]any) []map[string]any {
	if f.Empty() {
		return results
	}
	kept := make([]map[string]any, 0, len(results))
	for _, row := range results {
		if f.Keep(finding.FromMap(row)) {
			kept = append(kept, row)
		}
	}
	return kept
}

func toSet(vals []string, norm func(string) string) map[string]bool {
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		set[norm(v)] = true
	}
	return set
}
