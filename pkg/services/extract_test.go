package services

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func sheetReader(t *testing.T, rows [][]interface{}) io.Reader {
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

func TestBuildImportInput(t *testing.T) {
	files := []InputFile{
		{
			Kind: SourceKindLegacy,
			Name: "legacy.xlsx",
			Reader: sheetReader(t, [][]interface{}{
				{"Course Name", "Time Spent", "Status", "Reporting (L)"},
				{"Course A", "10:30", "Completed", "2022 Courses"},
			}),
		},
		{
			Kind: SourceKindTimeSpent,
			Name: "timespent.xlsx",
			Reader: sheetReader(t, [][]interface{}{
				{"Cousre name", "Category", "Date", "Time Spent", "User"},
				{"Course A", "Build", "3/5/2022", "2:00", "pat"},
			}),
		},
		{
			Kind: SourceKindHierarchical,
			Name: "wrike.xlsx",
			Reader: sheetReader(t, [][]interface{}{
				{"Task Name", "Time Spent"},
				{"Course B (2)", "3:00"},
				{"Course B", "2:00"},
				{"Odd subtask", "1:00"},
			}),
		},
	}

	input, fileErrors, guesses := BuildImportInput(files, zap.NewNop())
	assert.Empty(t, fileErrors)
	assert.Equal(t, 1, guesses)

	require.Len(t, input.LegacyRecords, 1)
	assert.Equal(t, "Course A", input.LegacyRecords[0].CourseName)
	require.Len(t, input.TimeRecords, 1)
	assert.Equal(t, "2022-03-05", input.TimeRecords[0].Date)
	require.Len(t, input.HierarchicalEntries, 2)
	assert.Equal(t, []string{"legacy.xlsx", "timespent.xlsx", "wrike.xlsx"}, input.FileLabels)
}

func TestBuildImportInput_BadFileSkipped(t *testing.T) {
	files := []InputFile{
		{Kind: SourceKindLegacy, Name: "broken.xlsx", Reader: strings.NewReader("not an xlsx")},
		{
			Kind: SourceKindModern,
			Name: "modern.xlsx",
			Reader: sheetReader(t, [][]interface{}{
				{"Course Name", "Time Spent", "Status", "Reporting (M)"},
				{"Course C", "12", "Published", "2024"},
			}),
		},
	}

	input, fileErrors, _ := BuildImportInput(files, zap.NewNop())
	require.Len(t, fileErrors, 1)
	assert.Contains(t, fileErrors[0], "broken.xlsx")

	require.Len(t, input.ModernRecords, 1)
	assert.Equal(t, []string{"modern.xlsx"}, input.FileLabels, "failed file is not labeled")
}

func TestBuildImportInput_UnknownKind(t *testing.T) {
	input, fileErrors, _ := BuildImportInput([]InputFile{
		{Kind: SourceKind("csv"), Name: "data.csv", Reader: strings.NewReader("")},
	}, zap.NewNop())

	require.Len(t, fileErrors, 1)
	assert.Contains(t, fileErrors[0], "unknown source kind")
	assert.Zero(t, input.rowCount())
}
