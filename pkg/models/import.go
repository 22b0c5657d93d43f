package models

// ResolutionReason records which disambiguation rule assigned a time entry
// to a project.
type ResolutionReason string

const (
	ResolutionNoCandidate    ResolutionReason = "no_candidate"
	ResolutionSingle         ResolutionReason = "single"
	ResolutionExactYear      ResolutionReason = "exact_year"
	ResolutionSourceHint     ResolutionReason = "source_hint"
	ResolutionFallbackLatest ResolutionReason = "fallback_latest"
)

// AmbiguousName describes one course name that maps to more than one
// distinct (source, reportingYear) project variant.
type AmbiguousName struct {
	Name           string   `json:"name"`
	Variants       []string `json:"variants"` // "source/year" pairs
	EntryCount     int      `json:"entry_count"`
	UndatedEntries int      `json:"undated_entries"`
	DistinctYears  []string `json:"distinct_years"`
}

// AmbiguityReport is the advisory pre-import transparency report. It never
// blocks an import.
type AmbiguityReport struct {
	Names []AmbiguousName `json:"names"`
}

// ImportSummary is returned by the import coordinator after a batch.
type ImportSummary struct {
	ProjectsCreated int                      `json:"projects_created"`
	ProjectsUpdated int                      `json:"projects_updated"`
	EntriesInserted int                      `json:"entries_inserted"`
	ResolvedCounts  map[ResolutionReason]int `json:"resolved_counts"`
	UnresolvedCount int                      `json:"unresolved_count"`
	FallbackCount   int                      `json:"fallback_count"`
	SourceHintCount int                      `json:"source_hint_count"`
	AmbiguityReport AmbiguityReport          `json:"ambiguity_report"`
	Warnings        []string                 `json:"warnings"`
	FileErrors      []string                 `json:"file_errors,omitempty"`
}
