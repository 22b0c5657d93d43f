package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/models"
	"github.com/smartcharts/coursetrack-engine/pkg/repositories"
)

func newTestImporter(t *testing.T, batchSize int) (ImportService, *repositories.MemoryStore) {
	t.Helper()
	store := repositories.NewMemoryStore()
	reconciler := NewReconciler(store.Projects(), 2025, zap.NewNop())
	svc := NewImportService(reconciler, store.TimeEntries(), store.Uploads(), batchSize, zap.NewNop())
	return svc, store
}

func TestImportBatch_EndToEnd(t *testing.T) {
	svc, store := newTestImporter(t, 0)
	ctx := context.Background()

	input := &ImportInput{
		LegacyRecords: []models.CourseRecord{
			{CourseName: "Course A", ReportingYear: "2023", Status: models.StatusCompleted, TotalHours: 10.5},
		},
		TimeRecords: []models.TimeSpentRecord{
			{CourseName: "Course A", Category: "Build", Date: "2023-04-01", Hours: 2, UserName: "pat"},
		},
		FileLabels: []string{"legacy.xlsx", "timespent.xlsx"},
	}

	summary, err := svc.ImportBatch(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ProjectsCreated)
	assert.Equal(t, 0, summary.ProjectsUpdated)
	assert.Equal(t, 1, summary.EntriesInserted)
	assert.Equal(t, 0, summary.UnresolvedCount)
	assert.Equal(t, 1, summary.ResolvedCounts[models.ResolutionSingle])

	projects, err := store.Projects().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.InDelta(t, 10.5, projects[0].TotalHours, 1e-9)

	entries, err := store.TimeEntries().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].ProjectID)
	assert.Equal(t, projects[0].ID, *entries[0].ProjectID)
	assert.Equal(t, "Course A", entries[0].ProjectName)
	assert.Equal(t, "Build", entries[0].Category)
	require.NotNil(t, entries[0].EntryDate)
	assert.Equal(t, "2023-04-01", *entries[0].EntryDate)

	uploads, err := store.Uploads().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, models.UploadCompleted, uploads[0].Status)
	assert.Equal(t, "legacy.xlsx, timespent.xlsx", uploads[0].FileName)
	assert.Equal(t, 2, uploads[0].RowCount)
	assert.Equal(t, uploads[0].ID, entries[0].UploadID, "entries reference their audit row")
}

func TestImportBatch_EmptyInputIsNoOp(t *testing.T) {
	svc, store := newTestImporter(t, 0)
	ctx := context.Background()

	summary, err := svc.ImportBatch(ctx, &ImportInput{FileLabels: []string{"empty.xlsx"}})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ProjectsCreated)
	assert.Equal(t, 0, summary.EntriesInserted)

	uploads, err := store.Uploads().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, uploads, "no audit row for an empty batch")
}

func TestImportBatch_ReimportDoesNotDuplicateProjects(t *testing.T) {
	svc, store := newTestImporter(t, 0)
	ctx := context.Background()

	input := &ImportInput{
		LegacyRecords: []models.CourseRecord{
			{CourseName: "Course A", ReportingYear: "2022", Status: models.StatusCompleted, TotalHours: 4},
			{CourseName: "Course B", ReportingYear: "2022", Status: models.StatusInProgress, TotalHours: 1},
		},
		FileLabels: []string{"legacy.xlsx"},
	}

	first, err := svc.ImportBatch(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 2, first.ProjectsCreated)

	second, err := svc.ImportBatch(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ProjectsCreated)
	assert.Equal(t, 2, second.ProjectsUpdated)

	projects, err := store.Projects().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	uploads, err := store.Uploads().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, uploads, 2, "every batch gets its own audit row")
}

func TestImportBatch_UnresolvedEntriesArePreserved(t *testing.T) {
	svc, store := newTestImporter(t, 0)
	ctx := context.Background()

	// Hierarchical entries resolve by project name with no date; an unknown
	// name has no candidate, but the hours are kept.
	input := &ImportInput{
		LegacyRecords: []models.CourseRecord{
			{CourseName: "Course A", ReportingYear: "2022", Status: models.StatusCompleted},
		},
		HierarchicalEntries: []models.HierarchicalEntry{
			{Project: "Course A", Phase: "Build", Hours: 3},
		},
		TimeRecords: []models.TimeSpentRecord{
			{CourseName: "Course A", Date: "2022-01-01", Hours: 1},
		},
		FileLabels: []string{"mixed.xlsx"},
	}

	summary, err := svc.ImportBatch(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.EntriesInserted)
	assert.Zero(t, summary.UnresolvedCount)

	entries, err := store.TimeEntries().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var phased *models.TimeEntry
	for _, e := range entries {
		if e.Phase == "Build" {
			phased = e
		}
	}
	require.NotNil(t, phased)
	require.NotNil(t, phased.ProjectID)
	assert.Nil(t, phased.EntryDate)
}

func TestImportBatch_UnmatchedEntryKeepsHours(t *testing.T) {
	store := repositories.NewMemoryStore()
	reconciler := NewReconciler(store.Projects(), 2025, zap.NewNop())
	ctx := context.Background()

	upserts, err := reconciler.UpsertProjects(ctx, nil, nil, nil)
	require.NoError(t, err)
	res := reconciler.Resolve(upserts.NameIndex, "Ghost Course", "2024-01-01")
	assert.Nil(t, res.ProjectID)
	assert.Equal(t, models.ResolutionNoCandidate, res.Reason)

	// An entry row with no project still lands in the store.
	err = store.TimeEntries().InsertBatch(ctx, []*models.TimeEntry{
		{ProjectID: res.ProjectID, Hours: 2.5, UploadID: uuid.New()},
	})
	require.NoError(t, err)

	entries, err := store.TimeEntries().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].ProjectID)
	assert.InDelta(t, 2.5, entries[0].Hours, 1e-9)
	assert.Equal(t, "", entries[0].ProjectName)
}

func TestImportBatch_Warnings(t *testing.T) {
	svc, _ := newTestImporter(t, 0)
	ctx := context.Background()

	input := &ImportInput{
		LegacyRecords: []models.CourseRecord{
			{CourseName: "Course A", ReportingYear: "2022", Status: models.StatusCompleted},
			{CourseName: "Idle Course", ReportingYear: "2022", Status: models.StatusInProgress},
		},
		TimeRecords: []models.TimeSpentRecord{
			{CourseName: "Course A", Date: "2022-01-01", Hours: 0},
		},
		FileLabels: []string{"legacy.xlsx"},
	}

	summary, err := svc.ImportBatch(ctx, input)
	require.NoError(t, err)
	assert.Contains(t, summary.Warnings, "1 time entries with zero hours")
	assert.Contains(t, summary.Warnings, "1 courses with no time entries")
}

func TestImportBatch_ChunkFailureWritesFailedAudit(t *testing.T) {
	store := repositories.NewMemoryStore()
	reconciler := NewReconciler(store.Projects(), 2025, zap.NewNop())
	entries := &flakyEntries{inner: store.TimeEntries(), failAfter: 1}
	svc := NewImportService(reconciler, entries, store.Uploads(), 2, zap.NewNop())
	ctx := context.Background()

	input := &ImportInput{
		TimeRecords: []models.TimeSpentRecord{
			{CourseName: "Course A", Date: "2022-01-01", Hours: 1},
			{CourseName: "Course A", Date: "2022-01-02", Hours: 2},
			{CourseName: "Course A", Date: "2022-01-03", Hours: 3},
		},
		FileLabels: []string{"timespent.xlsx"},
	}

	_, err := svc.ImportBatch(ctx, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first 2 rows already committed")

	// The first chunk stays committed, the batch is marked failed.
	count, err := store.TimeEntries().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	uploads, err := store.Uploads().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, models.UploadFailed, uploads[0].Status)
}

// flakyEntries passes through to the real store for the first failAfter
// InsertBatch calls, then errors.
type flakyEntries struct {
	inner     repositories.TimeEntryRepository
	failAfter int
	calls     int
}

func (f *flakyEntries) InsertBatch(ctx context.Context, entries []*models.TimeEntry) error {
	f.calls++
	if f.calls > f.failAfter {
		return errors.New("connection reset")
	}
	return f.inner.InsertBatch(ctx, entries)
}

func (f *flakyEntries) ListAll(ctx context.Context) ([]*models.TimeEntry, error) {
	return f.inner.ListAll(ctx)
}

func (f *flakyEntries) Count(ctx context.Context) (int, error) {
	return f.inner.Count(ctx)
}
