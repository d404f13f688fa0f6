package record

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// Canonical column names for the bioRxiv details endpoint, in the order
// the corresponding JSON keys are requested.
var (
	// DefaultKeys are the JSON keys expected in each collection record.
	DefaultKeys = []string{
		"doi", "title", "authors", "author_corresponding",
		"author_corresponding_institution", "date", "version", "type",
		"category", "jatsxml", "published",
	}

	// DefaultColumns are the table column names, positionally matching
	// DefaultKeys.
	DefaultColumns = []string{
		"DOI", "Title", "Authors", "Corresponding_Authors", "Institution",
		"Date", "Version", "Type", "Category", "Xml", "Published",
	}
)

// Row is one typed record of the bioRxiv details table.
type Row struct {
	Index                int
	DOI                  string
	Title                string
	Authors              string
	CorrespondingAuthors string
	Institution          string
	Date                 time.Time // zero when the raw date failed to parse
	Version              int
	Type                 string
	Category             string
	XML                  string
	Published            string // published DOI, or "NA"
	NumAuthors           int
}

// Table is the typed form of a normalized page, indexed by row number.
type Table struct {
	Columns []string
	Rows    []Row
}

// Tabularize converts positional rows plus their column names into a typed
// table. Per-cell coercions are best effort: a cell that fails to coerce is
// logged and left at its sentinel (zero time for dates, 0 for version), and
// the partially transformed table is still returned. The column list must
// positionally match the rows' value cells.
func Tabularize(rows [][]any, columns []string) (*Table, error) {
	table := &Table{Columns: columns}

	for _, raw := range rows {
		if len(raw) != len(columns)+1 {
			return nil, fmt.Errorf("row %v has %d cells, want %d", rowIndex(raw), len(raw), len(columns)+1)
		}

		row := Row{Index: rowIndex(raw)}
		for i, col := range columns {
			coerce(&row, col, raw[i+1])
		}
		row.NumAuthors = countAuthors(row.Authors)
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// coerce applies the per-column transformation for one cell.
func coerce(row *Row, column string, value any) {
	s := asString(value)

	switch column {
	case "DOI":
		row.DOI = strings.TrimSpace(s)
	case "Title":
		row.Title = strings.TrimSpace(s)
	case "Authors":
		row.Authors = strings.TrimSpace(s)
	case "Corresponding_Authors":
		row.CorrespondingAuthors = strings.TrimSpace(s)
	case "Institution":
		row.Institution = strings.ToUpper(strings.TrimSpace(s))
	case "Date":
		t, err := ParseDate(s)
		if err != nil {
			log.Printf("record: row %d: %v", row.Index, err)
		}
		row.Date = t
	case "Version":
		v, err := parseVersion(value)
		if err != nil {
			log.Printf("record: row %d: %v", row.Index, err)
		}
		row.Version = v
	case "Type":
		row.Type = strings.ToLower(strings.TrimSpace(s))
	case "Category":
		row.Category = titleCase(strings.TrimSpace(s))
	case "Xml":
		row.XML = s
	case "Published":
		row.Published = strings.TrimSpace(s)
	default:
		log.Printf("record: row %d: unknown column %q", row.Index, column)
	}
}

// ParseDate parses a bioRxiv date of the form YYYY-MM-DD, ignoring any
// trailing ":"-separated time component. On failure it returns the zero
// time, the table's not-a-time sentinel.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// parseVersion coerces a version cell, which arrives as a JSON string or
// number, into a positive integer.
func parseVersion(value any) (int, error) {
	switch v := value.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("parsing version %q: %w", v, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("parsing version: unexpected type %T", value)
	}
}

// countAuthors counts the entries of a semicolon-delimited author string.
func countAuthors(authors string) int {
	if strings.TrimSpace(authors) == "" {
		return 0
	}
	count := 0
	for _, part := range strings.Split(authors, ";") {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}

// asString renders a JSON cell value as a string.
func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
