package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintment/osintment/pkg/finding"
)

func fd(typ, data, module string, confidence int) finding.Finding {
	return finding.Finding{
		Type:       typ,
		Data:       data,
		Module:     module,
		Source:     "example.com",
		Confidence: confidence,
	}
}

func TestEmptyConfigKeepsEverything(t *testing.T) {
	f, err := New(Config{})
	require.NoError(t, err)

	assert.True(t, f.Empty())
	assert.True(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 100)))
	assert.True(t, f.Keep(fd("", "", "", 0)))
}

func TestTypeCriteria(t *testing.T) {
	f, err := New(Config{Types: []string{"ip_address", "EMAILADDR"}})
	require.NoError(t, err)

	assert.True(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 100)))
	assert.True(t, f.Keep(fd("EMAILADDR", "a@example.com", "sfp_email", 100)))
	assert.False(t, f.Keep(fd("DOMAIN_NAME", "example.com", "sfp_dnsresolve", 100)))

	f, err = New(Config{ExcludeTypes: []string{"RAW_RIR_DATA"}})
	require.NoError(t, err)
	assert.False(t, f.Keep(fd("RAW_RIR_DATA", "...", "sfp_ripe", 100)))
	assert.True(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 100)))
}

func TestModuleCriteria(t *testing.T) {
	f, err := New(Config{Modules: []string{"SFP_DNSRESOLVE"}})
	require.NoError(t, err)

	assert.True(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 100)))
	assert.False(t, f.Keep(fd("IP_ADDRESS", "192.0.2.2", "sfp_shodan", 100)))

	f, err = New(Config{ExcludeModules: []string{"sfp_shodan"}})
	require.NoError(t, err)
	assert.False(t, f.Keep(fd("IP_ADDRESS", "192.0.2.2", "sfp_shodan", 100)))
	assert.True(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 100)))
}

func TestConfidenceAndDataCriteria(t *testing.T) {
	f, err := New(Config{MinConfidence: 80})
	require.NoError(t, err)
	assert.True(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 80)))
	assert.False(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 79)))

	f, err = New(Config{DataContains: "Example.COM"})
	require.NoError(t, err)
	assert.True(t, f.Keep(fd("EMAILADDR", "admin@example.com", "sfp_email", 100)))
	assert.False(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 100)))
}

func TestCriteriaCompose(t *testing.T) {
	f, err := New(Config{
		Types:         []string{"IP_ADDRESS"},
		MinConfidence: 50,
	})
	require.NoError(t, err)

	assert.True(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 50)))
	assert.False(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 49)))
	assert.False(t, f.Keep(fd("EMAILADDR", "a@example.com", "sfp_email", 100)))
}

func TestApplyPreservesRows(t *testing.T) {
	rows := []map[string]any{
		{"type": "IP_ADDRESS", "data": "192.0.2.1", "module": "sfp_dnsresolve", "confidence": 100.0, "extra": "kept"},
		{"type": "EMAILADDR", "data": "a@example.com", "module": "sfp_email", "confidence": 100.0},
	}

	f, err := New(Config{Types: []string{"IP_ADDRESS"}})
	require.NoError(t, err)

	out := f.Apply(rows)
	require.Len(t, out, 1)
	assert.Equal(t, "kept", out[0]["extra"])
}

func TestApplyEmptyFilterReturnsInput(t *testing.T) {
	rows := []map[string]any{{"type": "IP_ADDRESS", "data": "192.0.2.1"}}

	f, err := New(Config{})
	require.NoError(t, err)

	assert.Equal(t, rows, f.Apply(rows))
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filter.tengo")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestScriptKeep(t *testing.T) {
	path := writeScript(t, `
text := import("text")
name := "internal-only"
description := "keeps findings that mention example.com"

keep := func(f) {
    return text.contains(f.data, "example.com")
}
`)

	s, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "internal-only", s.Name())
	assert.Equal(t, "keeps findings that mention example.com", s.Description())

	assert.True(t, s.Keep(fd("EMAILADDR", "admin@example.com", "sfp_email", 100)))
	assert.False(t, s.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 100)))
}

func TestScriptFieldAccess(t *testing.T) {
	path := writeScript(t, `
keep := func(f) {
    return f.type == "IP_ADDRESS" && f.module == "sfp_dnsresolve" && f.confidence >= 90
}
`)

	s, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "filter.tengo", s.Name())

	assert.True(t, s.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 90)))
	assert.False(t, s.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 89)))
	assert.False(t, s.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_shodan", 100)))
}

func TestScriptMissingKeep(t *testing.T) {
	path := writeScript(t, `name := "broken"`)

	_, err := LoadScript(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing 'keep' function")
}

func TestScriptCompileError(t *testing.T) {
	path := writeScript(t, `keep := func(`)

	_, err := LoadScript(path)
	require.Error(t, err)
}

func TestScriptRuntimeErrorKeepsFinding(t *testing.T) {
	path := writeScript(t, `
keep := func(f) {
    f.missing()
    return false
}
`)

	s, err := LoadScript(path)
	require.NoError(t, err)

	assert.True(t, s.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 100)))
}

func TestFilterWithScript(t *testing.T) {
	path := writeScript(t, `
keep := func(f) {
    return f.confidence > 50
}
`)

	f, err := New(Config{Types: []string{"IP_ADDRESS"}, ScriptPath: path})
	require.NoError(t, err)
	require.NotNil(t, f.Script())
	assert.False(t, f.Empty())

	assert.True(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 100)))
	assert.False(t, f.Keep(fd("IP_ADDRESS", "192.0.2.1", "sfp_dnsresolve", 50)))
	assert.False(t, f.Keep(fd("EMAILADDR", "a@example.com", "sfp_email", 100)))
}

func TestFilterScriptNotFound(t *testing.T) {
	_, err := New(Config{ScriptPath: filepath.Join(t.TempDir(), "missing.tengo")})
	require.Error(t, err)
}
