package report

import (
	"fmt"
	"os"

	"github.com/osintment/osintment/pkg/analyzer"
	"github.com/osintment/osintment/pkg/jsonutil"
)

// WriteJSONFile writes the full intelligence bundle as indented JSON.
func WriteJSONFile(path string, bundle *analyzer.Bundle) error {
	data, err := jsonutil.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}
