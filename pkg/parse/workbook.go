package parse

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/smartcharts/coursetrack-engine/pkg/apperrors"
)

var hyperlinkRe = regexp.MustCompile(`(?i)=HYPERLINK\([^,]+,\s*"([^"]+)"\)`)

// Row is one spreadsheet row keyed by header cell text. Unset cells read as
// empty strings.
type Row map[string]string

// Get returns the cell under the given header, or "" when the column is
// absent.
func (r Row) Get(header string) string {
	return r[header]
}

// Sheet is the parsed first worksheet: the header row in sheet column
// order plus the data rows keyed by header text. Column resolution must go
// through Headers so ties break by sheet position, not map order.
type Sheet struct {
	Headers []string
	Rows    []Row
}

// ReadSheet opens a workbook and parses its first sheet. The header row is
// the first row; trailing unset cells are filled with empty strings. A
// sheet with no data rows parses to an empty Sheet, not an error.
func ReadSheet(reader io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ErrEmptyWorkbook
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(raw) == 0 {
		return &Sheet{}, nil
	}

	headers := raw[0]
	rows := make([]Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(Row, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(cells) {
				row[header] = CleanCell(cells[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return &Sheet{Headers: headers, Rows: rows}, nil
}

// CleanCell trims a cell value and unwraps Wrike hyperlink formulas, which
// render as `=HYPERLINK(url, "Title")` in some exports.
func CleanCell(value string) string {
	trimmed := strings.TrimSpace(value)
	if m := hyperlinkRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}
