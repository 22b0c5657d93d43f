package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/models"
	"github.com/smartcharts/coursetrack-engine/pkg/repositories"
)

// ImportInput is one batch of extracted records plus the labels of the
// files they came from.
type ImportInput struct {
	LegacyRecords       []models.CourseRecord
	ModernRecords       []models.CourseRecord
	TimeRecords         []models.TimeSpentRecord
	HierarchicalEntries []models.HierarchicalEntry
	FileLabels          []string
}

func (in *ImportInput) rowCount() int {
	return len(in.LegacyRecords) + len(in.ModernRecords) + len(in.TimeRecords) + len(in.HierarchicalEntries)
}

// ImportService orchestrates extraction output through reconciliation and
// persistence, producing a summary and one audit row per batch.
type ImportService interface {
	ImportBatch(ctx context.Context, input *ImportInput) (*models.ImportSummary, error)
}

type importService struct {
	reconciler *Reconciler
	entries    repositories.TimeEntryRepository
	uploads    repositories.UploadRepository
	batchSize  int
	logger     *zap.Logger
}

// NewImportService creates an import coordinator. batchSize bounds the
// number of time entries written per store round trip.
func NewImportService(
	reconciler *Reconciler,
	entries repositories.TimeEntryRepository,
	uploads repositories.UploadRepository,
	batchSize int,
	logger *zap.Logger,
) ImportService {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &importService{
		reconciler: reconciler,
		entries:    entries,
		uploads:    uploads,
		batchSize:  batchSize,
		logger:     logger.Named("import"),
	}
}

// ImportBatch runs one import: project upserts first, then time entry
// resolution against the completed candidate index, then chunked entry
// inserts, then the audit row. Chunks are written sequentially; a store
// failure aborts the remaining chunks and surfaces the underlying error,
// but chunks already committed are not rolled back. A zero-row input is a
// no-op, not an error.
func (s *importService) ImportBatch(ctx context.Context, input *ImportInput) (*models.ImportSummary, error) {
	summary := &models.ImportSummary{
		ResolvedCounts: make(map[models.ResolutionReason]int),
	}

	totalRows := input.rowCount()
	if totalRows == 0 {
		s.logger.Info("No parseable rows in batch; nothing to import")
		return summary, nil
	}

	timeNames := make([]string, 0, len(input.TimeRecords)+len(input.HierarchicalEntries))
	for _, rec := range input.TimeRecords {
		timeNames = append(timeNames, rec.CourseName)
	}
	for _, entry := range input.HierarchicalEntries {
		timeNames = append(timeNames, entry.Project)
	}

	upserts, err := s.reconciler.UpsertProjects(ctx, input.LegacyRecords, input.ModernRecords, timeNames)
	if err != nil {
		s.writeAudit(ctx, input, totalRows, models.UploadFailed)
		return nil, fmt.Errorf("upsert projects: %w", err)
	}
	summary.ProjectsCreated = upserts.Created
	summary.ProjectsUpdated = upserts.Updated

	summary.AmbiguityReport = BuildAmbiguityReport(upserts.NameIndex, input.TimeRecords)

	uploadID := uuid.New()
	entryRows := s.resolveEntries(input, upserts.NameIndex, uploadID, summary)

	for start := 0; start < len(entryRows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(entryRows) {
			end = len(entryRows)
		}
		if err := s.entries.InsertBatch(ctx, entryRows[start:end]); err != nil {
			s.writeAudit(ctx, input, totalRows, models.UploadFailed)
			return nil, fmt.Errorf("insert time entries (first %d rows already committed): %w", start, err)
		}
	}
	summary.EntriesInserted = len(entryRows)

	s.addWarnings(summary, upserts, entryRows)

	audit := &models.UploadRecord{
		ID:       uploadID,
		FileName: strings.Join(input.FileLabels, ", "),
		RowCount: totalRows,
		Status:   models.UploadCompleted,
	}
	if err := s.uploads.Create(ctx, audit); err != nil {
		return nil, fmt.Errorf("record upload audit: %w", err)
	}

	s.logger.Info("Import completed",
		zap.Int("rows", totalRows),
		zap.Int("projects_created", summary.ProjectsCreated),
		zap.Int("projects_updated", summary.ProjectsUpdated),
		zap.Int("entries", summary.EntriesInserted),
		zap.Int("unresolved", summary.UnresolvedCount),
		zap.Int("fallback", summary.FallbackCount))

	return summary, nil
}

// resolveEntries turns time-spent and hierarchical records into entry rows,
// resolving each against the name index and tallying reason codes.
func (s *importService) resolveEntries(
	input *ImportInput,
	index NameIndex,
	uploadID uuid.UUID,
	summary *models.ImportSummary,
) []*models.TimeEntry {
	rows := make([]*models.TimeEntry, 0, len(input.TimeRecords)+len(input.HierarchicalEntries))

	record := func(res Resolution) {
		summary.ResolvedCounts[res.Reason]++
		switch res.Reason {
		case models.ResolutionNoCandidate:
			summary.UnresolvedCount++
		case models.ResolutionSourceHint:
			summary.SourceHintCount++
		case models.ResolutionFallbackLatest:
			summary.FallbackCount++
		}
	}

	for _, rec := range input.TimeRecords {
		res := s.reconciler.Resolve(index, rec.CourseName, rec.Date)
		record(res)

		entry := &models.TimeEntry{
			ProjectID: res.ProjectID,
			Category:  rec.Category,
			Hours:     rec.Hours,
			UserName:  rec.UserName,
			UploadID:  uploadID,
		}
		if date := rec.Date; len(date) == 10 && date[4] == '-' {
			entry.EntryDate = &date
		}
		rows = append(rows, entry)
	}

	for _, h := range input.HierarchicalEntries {
		res := s.reconciler.Resolve(index, h.Project, "")
		record(res)

		rows = append(rows, &models.TimeEntry{
			ProjectID: res.ProjectID,
			Phase:     h.Phase,
			Hours:     h.Hours,
			UploadID:  uploadID,
		})
	}

	return rows
}

// addWarnings attaches advisory, non-blocking data-quality notes.
func (s *importService) addWarnings(summary *models.ImportSummary, upserts *UpsertResult, rows []*models.TimeEntry) {
	zeroHours := 0
	referenced := make(map[uuid.UUID]bool)
	for _, row := range rows {
		if row.Hours == 0 {
			zeroHours++
		}
		if row.ProjectID != nil {
			referenced[*row.ProjectID] = true
		}
	}
	if zeroHours > 0 {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("%d time entries with zero hours", zeroHours))
	}

	noEntries := 0
	for _, id := range upserts.ByKey {
		if !referenced[id] {
			noEntries++
		}
	}
	if noEntries > 0 && len(rows) > 0 {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("%d courses with no time entries", noEntries))
	}
	if summary.UnresolvedCount > 0 {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("%d time entries could not be matched to a project", summary.UnresolvedCount))
	}
}

// writeAudit records a failed batch; best-effort, the original error wins.
func (s *importService) writeAudit(ctx context.Context, input *ImportInput, rows int, status string) {
	audit := &models.UploadRecord{
		FileName: strings.Join(input.FileLabels, ", "),
		RowCount: rows,
		Status:   status,
	}
	if err := s.uploads.Create(ctx, audit); err != nil {
		s.logger.Warn("Failed to record upload audit", zap.Error(err))
	}
}
