package parse

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/smartcharts/coursetrack-engine/pkg/models"
)

var usDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// ExtractTimeSpent parses a granular time-spent log workbook. The source
// CSV misspells the course-name header as "Cousre name" in some exports,
// so that alias is checked alongside the correct spelling.
func ExtractTimeSpent(reader io.Reader) ([]models.TimeSpentRecord, error) {
	sheet, err := ReadSheet(reader)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	cols := NewColumns(sheet.Headers)
	records := make([]models.TimeSpentRecord, 0, len(sheet.Rows))

	for _, row := range sheet.Rows {
		courseName := NormalizeWhitespace(cols.Value(row, "cousre name", "course name"))
		if courseName == "" {
			continue
		}

		records = append(records, models.TimeSpentRecord{
			CourseName: courseName,
			Category:   NormalizeWhitespace(cols.Value(row, "category")),
			Date:       NormalizeEntryDate(cols.Value(row, "date")),
			Hours:      parseSimpleHours(CleanCell(cols.Value(row, "time spent"))),
			UserName:   NormalizeWhitespace(cols.Value(row, "user")),
		})
	}
	return records, nil
}

// NormalizeEntryDate converts a raw date cell to an ISO date string.
// Accepted forms: ISO prefix passthrough, M/D/YYYY, and Excel date serials
// bounded to a plausible range so small non-date numbers are not
// misread as dates. Anything else passes through verbatim - a bad date
// never fails the row.
func NormalizeEntryDate(raw string) string {
	trimmed := CleanCell(raw)
	if trimmed == "" {
		return ""
	}

	if m := usDateRe.FindStringSubmatch(trimmed); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
	}

	if isoDateRe.MatchString(trimmed) {
		return trimmed[:10]
	}

	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil && serial > 30000 && serial < 60000 {
		// Excel serial day 25569 is the Unix epoch.
		t := time.Unix(int64((serial-25569)*86400), 0).UTC()
		return t.Format("2006-01-02")
	}

	return trimmed
}
