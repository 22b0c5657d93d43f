package parse

import "strings"

// Columns resolves logical fields to actual header names once per workbook.
// Exported column names drift across tool versions ("Vertical" vs
// "[LCT] Vertical (L)"), so lookups are case- and whitespace-tolerant
// substring matches against a small set of accepted aliases per field.
type Columns struct {
	headers []string
}

// NewColumns builds a resolver from the sheet's ordered header row. When
// an alias matches more than one header, the leftmost column wins.
func NewColumns(headers []string) *Columns {
	kept := make([]string, 0, len(headers))
	for _, header := range headers {
		if header == "" {
			continue
		}
		kept = append(kept, header)
	}
	return &Columns{headers: kept}
}

// Find returns the first header containing any of the aliases
// (case-insensitive), or "" when none match. Aliases are tried in order so
// more specific aliases should come first; within one alias, headers are
// tried in sheet column order.
func (c *Columns) Find(aliases ...string) string {
	for _, alias := range aliases {
		lowered := strings.ToLower(alias)
		for _, header := range c.headers {
			if strings.Contains(strings.ToLower(strings.TrimSpace(header)), lowered) {
				return header
			}
		}
	}
	return ""
}

// Value resolves a field's header and returns the row's cell under it.
func (c *Columns) Value(row Row, aliases ...string) string {
	header := c.Find(aliases...)
	if header == "" {
		return ""
	}
	return row.Get(header)
}
