package parse

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes the given rows into an in-memory xlsx and returns a
// reader over it. The first row is the header row.
func buildWorkbook(t *testing.T, rows [][]interface{}) io.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadSheet(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		{"Name", "Hours"},
		{"Course A", "1:30"},
		{"  Course B  ", "2.5", "ignored"},
	})

	sheet, err := ReadSheet(reader)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, []string{"Name", "Hours"}, sheet.Headers)

	assert.Equal(t, "Course A", sheet.Rows[0].Get("Name"))
	assert.Equal(t, "1:30", sheet.Rows[0].Get("Hours"))
	assert.Equal(t, "", sheet.Rows[0].Get("Missing"))

	// Cells are trimmed; cells past the header row are dropped.
	assert.Equal(t, "Course B", sheet.Rows[1].Get("Name"))
	assert.Equal(t, "2.5", sheet.Rows[1].Get("Hours"))
}

func TestReadSheet_HeaderOnly(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{{"Name", "Hours"}})

	sheet, err := ReadSheet(reader)
	require.NoError(t, err)
	assert.Empty(t, sheet.Rows)
	assert.Equal(t, []string{"Name", "Hours"}, sheet.Headers)
}

func TestReadSheet_NotAWorkbook(t *testing.T) {
	_, err := ReadSheet(strings.NewReader("not a zip archive"))
	assert.Error(t, err)
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain value trimmed", input: "  hello  ", expected: "hello"},
		{name: "hyperlink formula unwrapped", input: `=HYPERLINK("https://example.com/task/1", "Course A")`, expected: "Course A"},
		{name: "hyperlink case insensitive", input: `=hyperlink("https://x", "Title")`, expected: "Title"},
		{name: "non formula kept", input: "Course (B)", expected: "Course (B)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanCell(tt.input))
		})
	}
}

func TestColumns_Find(t *testing.T) {
	cols := NewColumns([]string{"[LCT] Vertical (L)", "Course Name", "", "Reporting (M)"})

	assert.Equal(t, "[LCT] Vertical (L)", cols.Find("vertical (l)", "vertical"))
	assert.Equal(t, "Course Name", cols.Find("course name"))
	assert.Equal(t, "Reporting (M)", cols.Find("reporting (m)", "reporting"))
	assert.Equal(t, "", cols.Find("status"))
}

func TestColumns_Find_TiesBreakBySheetOrder(t *testing.T) {
	cols := NewColumns([]string{"Old Course Name", "Course Name"})

	// Two headers contain the alias; resolution must be stable and follow
	// sheet column order on every call.
	for i := 0; i < 200; i++ {
		assert.Equal(t, "Old Course Name", cols.Find("course name"))
	}
}
