package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
)

// UTF-8 BOM for Excel compatibility.
const utf8BOM = "\xEF\xBB\xBF"

// CSVOptions configures the CSV export behavior.
type CSVOptions struct {
	// Delimiter sets the field delimiter. Default is comma when zero value.
	Delimiter rune

	// ExcelCompatible adds a UTF-8 BOM so Excel renders Unicode correctly.
	ExcelCompatible bool

	// SanitizeFormulas prefixes cells starting with = + - @ TAB CR to
	// prevent formula execution in spreadsheets.
	SanitizeFormulas bool
}

// DefaultCSVOptions returns the options used by WriteCSVFile.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{SanitizeFormulas: true}
}

// WriteCSV writes raw scan export rows as CSV. The header is the sorted
// union of every key present across all rows, so ragged exports from
// different module sets still line up. Missing cells are left empty.
func WriteCSV(w io.Writer, results []map[string]any, opts CSVOptions) error {
	if len(results) == 0 {
		return nil
	}

	if opts.ExcelCompatible {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return fmt.Errorf("csv: write bom: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	columns := unionKeys(results)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	row := make([]string, len(columns))
	for _, rec := range results {
		for i, col := range columns {
			val := csvValue(rec[col])
			if opts.SanitizeFormulas {
				val = sanitizeForCSV(val)
			}
			row[i] = val
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return nil
}

// WriteCSVFile writes results to path with default options. An empty result
// set produces no file; written reports whether one was created.
func WriteCSVFile(path string, results []map[string]any) (written bool, err error) {
	if len(results) == 0 {
		return false, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("csv: create %s: %w", path, err)
	}
	if err := WriteCSV(f, results, DefaultCSVOptions()); err != nil {
		f.Close()
		return false, err
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("csv: close: %w", err)
	}
	return true, nil
}

// unionKeys returns the sorted union of keys across all rows.
func unionKeys(results []map[string]any) []string {
	seen := make(map[string]struct{})
	for _, rec := range results {
		for k := range rec {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func csvValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// sanitizeForCSV prevents CSV injection by prefixing dangerous characters.
// This is a SECURITY feature to prevent formula execution in spreadsheets.
func sanitizeForCSV(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
