package services

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/parse"
)

// SourceKind identifies which extractor handles an input file.
type SourceKind string

const (
	SourceKindLegacy       SourceKind = "legacy"
	SourceKindModern       SourceKind = "modern"
	SourceKindTimeSpent    SourceKind = "timespent"
	SourceKindHierarchical SourceKind = "hierarchical"
)

// InputFile is one uploaded workbook awaiting extraction.
type InputFile struct {
	Kind   SourceKind
	Name   string
	Reader io.Reader
}

// BuildImportInput runs each file through its extractor. A file that fails
// to parse contributes nothing to the batch and is reported in the
// returned error strings; other files still process. The returned
// GuessCount sums the hierarchical extractor's heuristic guesses.
func BuildImportInput(files []InputFile, logger *zap.Logger) (*ImportInput, []string, int) {
	input := &ImportInput{}
	var fileErrors []string
	guesses := 0

	for _, file := range files {
		var err error
		switch file.Kind {
		case SourceKindLegacy:
			records, extractErr := parse.ExtractLegacyCourses(file.Reader)
			input.LegacyRecords = append(input.LegacyRecords, records...)
			err = extractErr
		case SourceKindModern:
			records, extractErr := parse.ExtractModernCourses(file.Reader)
			input.ModernRecords = append(input.ModernRecords, records...)
			err = extractErr
		case SourceKindTimeSpent:
			records, extractErr := parse.ExtractTimeSpent(file.Reader)
			input.TimeRecords = append(input.TimeRecords, records...)
			err = extractErr
		case SourceKindHierarchical:
			result, extractErr := parse.ExtractHierarchical(file.Reader)
			if result != nil {
				input.HierarchicalEntries = append(input.HierarchicalEntries, result.Entries...)
				guesses += result.GuessCount
			}
			err = extractErr
		default:
			err = fmt.Errorf("unknown source kind %q", file.Kind)
		}

		if err != nil {
			logger.Warn("File failed to parse; skipping",
				zap.String("file", file.Name),
				zap.String("kind", string(file.Kind)),
				zap.Error(err))
			fileErrors = append(fileErrors, fmt.Sprintf("%s: %v", file.Name, err))
			continue
		}
		input.FileLabels = append(input.FileLabels, file.Name)
	}

	return input, fileErrors, guesses
}
