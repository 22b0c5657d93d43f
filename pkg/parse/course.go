package parse

import (
	"io"
	"strconv"
	"strings"

	"github.com/smartcharts/coursetrack-engine/pkg/models"
)

// courseAliases maps logical course fields to accepted header aliases for
// one export variant. Aliases are substring-matched; the suffixed forms
// come first so a sheet carrying both variants resolves to its own era.
type courseAliases struct {
	reporting     []string
	idAssigned    []string
	sme           []string
	legalReviewer []string
	vertical      []string
	courseType    []string
	authoringTool []string
	courseStyle   []string
	courseLength  []string
	interactions  []string
}

var legacyAliases = courseAliases{
	reporting:     []string{"reporting (l)", "reporting"},
	idAssigned:    []string{"id assigned (l)", "id assigned"},
	sme:           []string{"sme (l)", "sme"},
	legalReviewer: []string{"legal reviewer (l)", "legal reviewer"},
	vertical:      []string{"vertical (l)", "vertical"},
	courseType:    []string{"course type (l)", "course type"},
	authoringTool: []string{"authoring tool (l)", "authoring tool"},
	courseStyle:   []string{"course style (l)", "course style"},
	courseLength:  []string{"course length (l)", "course length"},
	interactions:  []string{"interaction count (l)", "interaction"},
}

var modernAliases = courseAliases{
	reporting:     []string{"reporting (m)", "reporting"},
	idAssigned:    []string{"id assigned (m)", "id assigned"},
	sme:           []string{"sme (m)", "sme"},
	legalReviewer: []string{"legal reviewer (m)", "legal reviewer"},
	vertical:      []string{"vertical (m)", "vertical"},
	courseType:    []string{"course type (m)", "course type"},
	authoringTool: []string{"authoring tool (m)", "authoring tool"},
	courseStyle:   []string{"course style (m)", "course style"},
	courseLength:  []string{"course length (m)", "course length"},
	interactions:  []string{"interaction count (m)", "interaction"},
}

// ExtractLegacyCourses parses a legacy-era course export workbook.
func ExtractLegacyCourses(reader io.Reader) ([]models.CourseRecord, error) {
	return extractCourses(reader, legacyAliases)
}

// ExtractModernCourses parses a modern-era course export workbook.
func ExtractModernCourses(reader io.Reader) ([]models.CourseRecord, error) {
	return extractCourses(reader, modernAliases)
}

func extractCourses(reader io.Reader, aliases courseAliases) ([]models.CourseRecord, error) {
	sheet, err := ReadSheet(reader)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	cols := NewColumns(sheet.Headers)
	records := make([]models.CourseRecord, 0, len(sheet.Rows))

	for _, row := range sheet.Rows {
		courseName := NormalizeWhitespace(cols.Value(row, "course name"))
		if !keepCourseRow(courseName) {
			continue
		}

		records = append(records, models.CourseRecord{
			CourseName:       courseName,
			TotalHours:       NormalizeDuration(cols.Value(row, "time spent")),
			Status:           NormalizeStatus(cols.Value(row, "status"), models.StatusInProgress),
			ReportingYear:    NormalizeReportingYear(cols.Value(row, aliases.reporting...)),
			IDAssigned:       NormalizeWhitespace(cols.Value(row, aliases.idAssigned...)),
			SME:              NormalizeWhitespace(cols.Value(row, aliases.sme...)),
			LegalReviewer:    NormalizeWhitespace(cols.Value(row, aliases.legalReviewer...)),
			Vertical:         NormalizeWhitespace(cols.Value(row, aliases.vertical...)),
			CourseType:       NormalizeWhitespace(cols.Value(row, aliases.courseType...)),
			AuthoringTool:    NormalizeWhitespace(cols.Value(row, aliases.authoringTool...)),
			CourseStyle:      NormalizeWhitespace(cols.Value(row, aliases.courseStyle...)),
			CourseLength:     NormalizeWhitespace(cols.Value(row, aliases.courseLength...)),
			InteractionCount: parseOptionalCount(cols.Value(row, aliases.interactions...)),
		})
	}
	return records, nil
}

// keepCourseRow filters out footer/summary rows: empty names and
// "Total: ..." lines are headers, not course records.
func keepCourseRow(courseName string) bool {
	if courseName == "" {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(courseName), "total:")
}

// parseOptionalCount parses an interaction count. Empty, unparseable, and
// zero values all yield nil, matching how blank spreadsheet counts behave.
func parseOptionalCount(raw string) *int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		if f, ferr := strconv.ParseFloat(trimmed, 64); ferr == nil {
			n = int(f)
		} else {
			return nil
		}
	}
	if n == 0 {
		return nil
	}
	return &n
}
