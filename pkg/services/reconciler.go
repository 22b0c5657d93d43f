// Package services contains the import pipeline and supporting services.
package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/models"
	"github.com/smartcharts/coursetrack-engine/pkg/parse"
	"github.com/smartcharts/coursetrack-engine/pkg/repositories"
)

// Candidate is one project sharing a course name with a time entry, prior
// to year/source disambiguation.
type Candidate struct {
	Key           string
	ProjectID     uuid.UUID
	ReportingYear string
	DataSource    string
}

// NameIndex maps a normalized course name to its candidate projects. It is
// the secondary index that makes disambiguation possible when one name
// exists across several reporting years.
type NameIndex map[string][]Candidate

// Resolution is the outcome of matching one time entry to a project.
type Resolution struct {
	ProjectID *uuid.UUID
	Reason    models.ResolutionReason
}

// UpsertResult summarizes the project merge step.
type UpsertResult struct {
	Created   int
	Updated   int
	ByKey     map[string]uuid.UUID
	NameIndex NameIndex
}

// Reconciler merges legacy and modern course records into project upserts
// and resolves time entries to projects. All project upserts complete and
// are index-visible before any entry is resolved; resolving against a
// partial index is a correctness bug, not a performance concern.
type Reconciler struct {
	projects   repositories.ProjectRepository
	cutoffYear int
	logger     *zap.Logger
}

// NewReconciler creates a reconciler. cutoffYear is the source-era hint
// boundary: entry years at or below it prefer legacy candidates, later
// years prefer modern ones.
func NewReconciler(projects repositories.ProjectRepository, cutoffYear int, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		projects:   projects,
		cutoffYear: cutoffYear,
		logger:     logger.Named("reconciler"),
	}
}

// CompositeKey builds the unique identity of a project from its course
// name and reporting year.
func CompositeKey(name, year string) string {
	return normalizeName(name) + "::" + normalizeName(year)
}

func normalizeName(s string) string {
	return strings.ToLower(parse.NormalizeWhitespace(s))
}

// UpsertProjects merges course records into the store. Legacy and modern
// records with the same composite key are not expected to coexist; if they
// do, the modern record wins and a warning is logged. Course names that
// appear only in time records are synthesized as time_only projects so
// their entries have something to resolve against.
func (r *Reconciler) UpsertProjects(
	ctx context.Context,
	legacy, modern []models.CourseRecord,
	timeNames []string,
) (*UpsertResult, error) {
	desired := make(map[string]*models.Project)
	order := make([]string, 0, len(legacy)+len(modern))

	put := func(rec models.CourseRecord, source string) {
		key := CompositeKey(rec.CourseName, rec.ReportingYear)
		if existing, ok := desired[key]; ok {
			r.logger.Warn("Legacy and modern records share a composite key; modern wins",
				zap.String("course", rec.CourseName),
				zap.String("year", rec.ReportingYear),
				zap.String("previous_source", existing.DataSource))
		} else {
			order = append(order, key)
		}
		desired[key] = &models.Project{
			Name:             rec.CourseName,
			Status:           rec.Status,
			TotalHours:       rec.TotalHours,
			DataSource:       source,
			ReportingYear:    rec.ReportingYear,
			IDAssigned:       rec.IDAssigned,
			SME:              rec.SME,
			LegalReviewer:    rec.LegalReviewer,
			Vertical:         rec.Vertical,
			CourseType:       rec.CourseType,
			AuthoringTool:    rec.AuthoringTool,
			CourseStyle:      rec.CourseStyle,
			CourseLength:     rec.CourseLength,
			InteractionCount: rec.InteractionCount,
		}
	}

	for _, rec := range legacy {
		put(rec, models.SourceLegacy)
	}
	for _, rec := range modern {
		put(rec, models.SourceModern)
	}

	existing, err := r.projects.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list existing projects: %w", err)
	}
	existingByKey := make(map[string]*models.Project, len(existing))
	for _, p := range existing {
		existingByKey[CompositeKey(p.Name, p.ReportingYear)] = p
	}

	// Names seen only in time records become time_only projects. A name the
	// store already knows, from this batch or an earlier import, must not
	// spawn a duplicate.
	known := make(map[string]bool, len(desired)+len(existing))
	for _, p := range desired {
		known[normalizeName(p.Name)] = true
	}
	for _, p := range existing {
		known[normalizeName(p.Name)] = true
	}
	for _, name := range timeNames {
		norm := normalizeName(name)
		if norm == "" || known[norm] {
			continue
		}
		known[norm] = true
		key := CompositeKey(name, "")
		desired[key] = &models.Project{
			Name:       parse.NormalizeWhitespace(name),
			Status:     models.StatusInProgress,
			DataSource: models.SourceTimeOnly,
		}
		order = append(order, key)
	}

	result := &UpsertResult{
		ByKey:     make(map[string]uuid.UUID, len(desired)),
		NameIndex: make(NameIndex),
	}

	for _, key := range order {
		want := desired[key]
		if match, ok := existingByKey[key]; ok {
			want.ID = match.ID
			want.CreatedAt = match.CreatedAt
			if err := r.projects.Update(ctx, want); err != nil {
				return nil, fmt.Errorf("update project %q: %w", want.Name, err)
			}
			result.Updated++
		} else {
			if err := r.projects.Create(ctx, want); err != nil {
				return nil, fmt.Errorf("create project %q: %w", want.Name, err)
			}
			result.Created++
		}
		result.ByKey[key] = want.ID
		appendCandidate(result.NameIndex, want)
	}

	// Projects already in the store but absent from this batch still count
	// as candidates: a time-spent file can arrive alone.
	for key, p := range existingByKey {
		if _, inBatch := result.ByKey[key]; !inBatch {
			appendCandidate(result.NameIndex, p)
		}
	}

	sortCandidates(result.NameIndex)
	return result, nil
}

func appendCandidate(index NameIndex, p *models.Project) {
	norm := normalizeName(p.Name)
	index[norm] = append(index[norm], Candidate{
		Key:           CompositeKey(p.Name, p.ReportingYear),
		ProjectID:     p.ID,
		ReportingYear: p.ReportingYear,
		DataSource:    p.DataSource,
	})
}

// sortCandidates orders each bucket by reporting year descending so the
// fallback pick and same-source preferences are deterministic.
func sortCandidates(index NameIndex) {
	for _, candidates := range index {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].ReportingYear > candidates[j].ReportingYear
		})
	}
}

// Resolve matches one time entry to a project. Priority order for multiple
// candidates: exact reporting-year match, then the source-era hint, then
// the candidate with the latest reporting year as an explicit logged
// compromise.
func (r *Reconciler) Resolve(index NameIndex, courseName, entryDate string) Resolution {
	candidates := index[normalizeName(courseName)]

	switch len(candidates) {
	case 0:
		return Resolution{Reason: models.ResolutionNoCandidate}
	case 1:
		id := candidates[0].ProjectID
		return Resolution{ProjectID: &id, Reason: models.ResolutionSingle}
	}

	entryYear, hasYear := entryDateYear(entryDate)

	if hasYear {
		yearText := strconv.Itoa(entryYear)
		for _, c := range candidates {
			if c.ReportingYear == yearText {
				id := c.ProjectID
				return Resolution{ProjectID: &id, Reason: models.ResolutionExactYear}
			}
		}

		preferred := models.SourceModern
		if entryYear <= r.cutoffYear {
			preferred = models.SourceLegacy
		}
		for _, c := range candidates {
			if c.DataSource == preferred {
				id := c.ProjectID
				return Resolution{ProjectID: &id, Reason: models.ResolutionSourceHint}
			}
		}
	}

	// Candidates are sorted by reporting year descending.
	latest := candidates[0]
	r.logger.Debug("Falling back to latest reporting year",
		zap.String("course", courseName),
		zap.String("picked_year", latest.ReportingYear))
	id := latest.ProjectID
	return Resolution{ProjectID: &id, Reason: models.ResolutionFallbackLatest}
}

// entryDateYear extracts the 4-digit year from an ISO-ish date string.
func entryDateYear(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year < 1900 || year > 3000 {
		return 0, false
	}
	return year, true
}

// BuildAmbiguityReport computes the advisory pre-import transparency
// report: every course name with more than one distinct (source, year)
// variant, with counts of the time entries referencing it. Import proceeds
// regardless of its contents.
func BuildAmbiguityReport(index NameIndex, timeRecords []models.TimeSpentRecord) models.AmbiguityReport {
	type nameStats struct {
		entryCount int
		undated    int
		years      map[string]bool
	}
	stats := make(map[string]*nameStats)
	for _, rec := range timeRecords {
		norm := normalizeName(rec.CourseName)
		s, ok := stats[norm]
		if !ok {
			s = &nameStats{years: make(map[string]bool)}
			stats[norm] = s
		}
		s.entryCount++
		if year, ok := entryDateYear(rec.Date); ok {
			s.years[strconv.Itoa(year)] = true
		} else {
			s.undated++
		}
	}

	var report models.AmbiguityReport
	for norm, candidates := range index {
		variants := make(map[string]bool, len(candidates))
		for _, c := range candidates {
			variants[c.DataSource+"/"+c.ReportingYear] = true
		}
		if len(variants) < 2 {
			continue
		}

		name := norm
		variantList := make([]string, 0, len(variants))
		for v := range variants {
			variantList = append(variantList, v)
		}
		sort.Strings(variantList)

		ambiguous := models.AmbiguousName{
			Name:     name,
			Variants: variantList,
		}
		if s, ok := stats[norm]; ok {
			ambiguous.EntryCount = s.entryCount
			ambiguous.UndatedEntries = s.undated
			for y := range s.years {
				ambiguous.DistinctYears = append(ambiguous.DistinctYears, y)
			}
			sort.Strings(ambiguous.DistinctYears)
		}
		report.Names = append(report.Names, ambiguous)
	}

	sort.Slice(report.Names, func(i, j int) bool {
		return report.Names[i].Name < report.Names[j].Name
	})
	return report
}
