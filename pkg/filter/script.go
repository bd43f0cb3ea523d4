// Tengo-based filter script loader. Lets users express keep/drop logic
// too specific for the literal criteria in plain scripts. Scripts run
// in a sandboxed VM with only safe stdlib modules.
package filter

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/osintment/osintment/pkg/finding"
)

// safeModules are the only Tengo stdlib modules available to scripts.
// No file I/O, no network, no OS access.
var safeModules = stdlib.GetModuleMap("text", "fmt", "math", "times")

// Script wraps a compiled Tengo filter script.
//
// The script must define a keep function taking one argument, the
// finding as a map with type, data, module, source and confidence
// keys, and returning truthy to retain it. Optional name and
// description variables label the script in logs.
type Script struct {
	name        string
	description string
	compiled    *tengo.Compiled // pre-compiled wrapper for Clone()-based execution
}

// LoadScript compiles a .tengo filter file and extracts its metadata.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter script %s: %w", path, err)
	}

	probe := tengo.NewScript(data)
	probe.SetImports(safeModules)
	probe.SetMaxAllocs(10_000_000)

	compiled, err := probe.Run()
	if err != nil {
		return nil, fmt.Errorf("compile filter script %s: %w", path, err)
	}
	if compiled.Get("keep").IsUndefined() {
		return nil, fmt.Errorf("filter script %s: missing 'keep' function", path)
	}

	s := &Script{name: filepath.Base(path)}
	if v := compiled.Get("name"); !v.IsUndefined() {
		s.name = v.String()
	}
	if v := compiled.Get("description"); !v.IsUndefined() {
		s.description = v.String()
	}

	if err := s.precompile(data); err != nil {
		return nil, err
	}
	return s, nil
}

// precompile creates the wrapper script and compiles it once.
// Uses Compile() (not Run()) so keep isn't invoked at load time; the
// compiled result is cloned per call, avoiding recompilation.
func (s *Script) precompile(src []byte) error {
	wrapper := fmt.Sprintf(`%s
__result__ := keep(__finding__)
`, string(src))

	script := tengo.NewScript([]byte(wrapper))
	script.SetImports(safeModules)
	script.SetMaxAllocs(10_000_000)
	_ = script.Add("__finding__", map[string]interface{}{})

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("precompile filter %s: %w", s.name, err)
	}
	s.compiled = compiled
	return nil
}

// Name returns the script's label for logs.
func (s *Script) Name() string { return s.name }

// Description returns the script's self-description, if any.
func (s *Script) Description() string { return s.description }

// Keep evaluates the script against one finding. Script failures keep
// the finding; dropping intelligence on a broken script would be worse
// than over-reporting.
func (s *Script) Keep(fd finding.Finding) (keep bool) {
	keep = true

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[filter] panic in script %s: %v", s.name, r)
			keep = true
		}
	}()

	c := s.compiled.Clone()
	if err := c.Set("__finding__", map[string]interface{}{
		"type":       fd.Type,
		"data":       fd.Data,
		"module":     fd.Module,
		"source":     fd.Source,
		"confidence": fd.Confidence,
	}); err != nil {
		return true
	}
	if err := c.Run(); err != nil {
		log.Printf("[filter] script %s: %v", s.name, err)
		return true
	}

	result := c.Get("__result__")
	if result.IsUndefined() {
		return true
	}
	return result.Bool()
}
