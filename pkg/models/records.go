package models

// CourseRecord is the typed output of the legacy and modern course
// extractors, one per non-empty, non-total spreadsheet row.
type CourseRecord struct {
	CourseName       string
	TotalHours       float64
	Status           string
	ReportingYear    string
	IDAssigned       string
	SME              string
	LegalReviewer    string
	Vertical         string
	CourseType       string
	AuthoringTool    string
	CourseStyle      string
	CourseLength     string
	InteractionCount *int
}

// TimeSpentRecord is the typed output of the time-spent extractor, one per
// row with a non-empty course name.
type TimeSpentRecord struct {
	CourseName string
	Category   string
	Date       string // ISO date string, or "" / verbatim when unparseable
	Hours      float64
	UserName   string
}

// HierarchicalEntry is one leaf time entry from a Wrike-style hierarchical
// export, attributed to the project and phase headers above it.
type HierarchicalEntry struct {
	Project      string
	Phase        string
	Hours        float64
	RawTaskName  string
	RawTimeSpent string
}

// HierarchicalResult carries the extracted entries plus a count of rows
// where the positional heuristic had to guess (entry name differing from
// the current project header).
type HierarchicalResult struct {
	Entries    []HierarchicalEntry
	GuessCount int
}
