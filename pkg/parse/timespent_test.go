package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTimeSpent(t *testing.T) {
	// The export's course column is misspelled "Cousre name"; the extractor
	// accepts both spellings.
	reader := buildWorkbook(t, [][]interface{}{
		{"Cousre name", "Category", "Date", "Time Spent", "User"},
		{"Intro to Safety", "Storyboarding", "3/5/2024", "2:00", "pat"},
		{"Intro to Safety", "Review", "2024-03-06T09:30:00", "0.25", "pat"},
		{"", "Review", "3/7/2024", "1:00", "sam"},
		{"Data Handling", "Build", "45000", "10:30", "sam"},
	})

	records, err := ExtractTimeSpent(reader)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Intro to Safety", records[0].CourseName)
	assert.Equal(t, "Storyboarding", records[0].Category)
	assert.Equal(t, "2024-03-05", records[0].Date)
	assert.InDelta(t, 2, records[0].Hours, 1e-9)
	assert.Equal(t, "pat", records[0].UserName)

	assert.Equal(t, "2024-03-06", records[1].Date)
	assert.InDelta(t, 0.25, records[1].Hours, 1e-9, "log entries carry decimal hours verbatim")

	assert.Equal(t, "Data Handling", records[2].CourseName)
	assert.InDelta(t, 10.5, records[2].Hours, 1e-9)
}

func TestExtractTimeSpent_ShortEntriesAreNotDayFractions(t *testing.T) {
	// Course totals treat small decimals as Excel day fractions; granular
	// log entries must not. Half an hour stays half an hour.
	reader := buildWorkbook(t, [][]interface{}{
		{"Course name", "Category", "Date", "Time Spent", "User"},
		{"Course A", "Review", "3/5/2024", "0.5", "pat"},
	})

	records, err := ExtractTimeSpent(reader)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 0.5, records[0].Hours, 1e-9)
}

func TestNormalizeEntryDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "us date zero padded", input: "3/5/2024", expected: "2024-03-05"},
		{name: "us date already padded", input: "12/25/2023", expected: "2023-12-25"},
		{name: "iso passthrough", input: "2024-03-05", expected: "2024-03-05"},
		{name: "iso timestamp truncated", input: "2024-03-05T14:30:00Z", expected: "2024-03-05"},
		{name: "excel serial", input: "45000", expected: "2023-03-15"},
		{name: "small number not a date", input: "42", expected: "42"},
		{name: "huge number not a date", input: "99999", expected: "99999"},
		{name: "free text passthrough", input: "last Tuesday", expected: "last Tuesday"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeEntryDate(tt.input))
		})
	}
}
