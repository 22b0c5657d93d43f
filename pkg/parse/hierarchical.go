package parse

import (
	"io"
	"math"
	"regexp"

	"github.com/smartcharts/coursetrack-engine/pkg/models"
)

// headerSuffixRe matches header rows like "Project Name (12)": the trailing
// (N) is the rolled-up child count Wrike appends to grouping rows.
var headerSuffixRe = regexp.MustCompile(`^(.+?)\s*\(\d+\)$`)

// hierarchicalState is the position of the state machine within the
// nested export.
type hierarchicalState int

const (
	awaitingProject hierarchicalState = iota
	inProject
)

// ExtractHierarchical parses a Wrike-style hierarchical export. The format
// is positional: rows with a "(N)" suffix are grouping headers, rows
// without are leaf time entries belonging to the headers above them. The
// first header opens a project; subsequent headers with a different name
// are phase headers under that project. This ordering heuristic is
// inherently ambiguous for leaves whose name differs from the current
// project header; such rows are attributed to the current project anyway
// and counted in GuessCount so callers can see how often the parser
// guessed.
func ExtractHierarchical(reader io.Reader) (*models.HierarchicalResult, error) {
	sheet, err := ReadSheet(reader)
	if err != nil {
		return nil, err
	}

	result := &models.HierarchicalResult{}
	if len(sheet.Rows) == 0 {
		return result, nil
	}

	cols := NewColumns(sheet.Headers)

	state := awaitingProject
	currentProject := ""
	currentPhase := ""

	for _, row := range sheet.Rows {
		taskName := CleanCell(cols.Value(row, "task name"))
		timeSpent := CleanCell(cols.Value(row, "time spent"))
		if taskName == "" {
			continue
		}

		if base, ok := headerName(taskName); ok {
			// Header rows hold rolled-up totals, never individual entries.
			switch state {
			case awaitingProject:
				currentProject = base
				currentPhase = ""
				state = inProject
			case inProject:
				if base != currentProject {
					currentPhase = base
				}
			}
			continue
		}

		hours := parseSimpleHours(timeSpent)
		if hours == 0 {
			continue
		}

		project := currentProject
		if project == "" {
			// Leaf before any header: the entry stands for itself.
			project = taskName
		} else if taskName != currentProject {
			result.GuessCount++
		}

		phase := currentPhase
		if phase == "" {
			phase = "Uncategorized"
		}

		result.Entries = append(result.Entries, models.HierarchicalEntry{
			Project:      project,
			Phase:        phase,
			Hours:        math.Round(hours*100) / 100,
			RawTaskName:  taskName,
			RawTimeSpent: timeSpent,
		})
	}

	return result, nil
}

func headerName(taskName string) (string, bool) {
	if m := headerSuffixRe.FindStringSubmatch(taskName); m != nil {
		return NormalizeWhitespace(m[1]), true
	}
	return "", false
}
