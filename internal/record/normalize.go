// Package record converts raw bioRxiv API payloads into positional rows
// and then into a typed table ready for entity construction.
package record

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// doiPattern matches the registrant/suffix shape of a DOI.
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// CheckDOI trims and validates a DOI string. Downstream identity mapping
// keys on the DOI, so a malformed one is rejected here rather than interned.
func CheckDOI(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !doiPattern.MatchString(s) {
		return "", fmt.Errorf("invalid doi: %q", s)
	}
	return s, nil
}

// Extract pulls the records under sectionKey out of a parsed JSON payload
// and returns one positional row per record: [offset+i, value(key1),
// value(key2), ...] in input order. A missing section or a record missing
// any expected key is a hard error; reconciliation depends on complete
// records, so nothing is defaulted silently.
func Extract(payload map[string]any, sectionKey string, keys []string, offset int) ([][]any, error) {
	section, ok := payload[sectionKey]
	if !ok {
		return nil, fmt.Errorf("payload has no %q section", sectionKey)
	}
	records, ok := section.([]any)
	if !ok {
		return nil, fmt.Errorf("section %q is not a list", sectionKey)
	}

	rows := make([][]any, 0, len(records))
	for i, raw := range records {
		rec, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d in %q is not an object", i, sectionKey)
		}

		row := make([]any, 0, len(keys)+1)
		row = append(row, offset+i)
		for _, key := range keys {
			value, ok := rec[key]
			if !ok {
				return nil, fmt.Errorf("record %d missing key %q", offset+i, key)
			}
			row = append(row, value)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Flatten merges per-page row blocks into a single slice ordered by the
// row index in position 0, restoring record order after concurrent fetches.
func Flatten(blocks [][][]any) [][]any {
	var merged [][]any
	for _, block := range blocks {
		merged = append(merged, block...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return rowIndex(merged[i]) < rowIndex(merged[j])
	})
	return merged
}

// rowIndex reads the leading index cell of a row.
func rowIndex(row []any) int {
	if len(row) == 0 {
		return 0
	}
	switch v := row[0].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
