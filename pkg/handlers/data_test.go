package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/models"
	"github.com/smartcharts/coursetrack-engine/pkg/repositories"
)

func seedDataStore(t *testing.T) *repositories.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	project := &models.Project{Name: "Course A", Status: models.StatusCompleted, DataSource: models.SourceLegacy, ReportingYear: "2022"}
	require.NoError(t, store.Projects().Create(ctx, project))

	uploadID := uuid.New()
	require.NoError(t, store.TimeEntries().InsertBatch(ctx, []*models.TimeEntry{
		{ProjectID: &project.ID, Category: "Build", Hours: 3, UploadID: uploadID},
	}))
	require.NoError(t, store.Uploads().Create(ctx, &models.UploadRecord{
		ID: uploadID, FileName: "legacy.xlsx", RowCount: 1, Status: models.UploadCompleted,
	}))
	return store
}

func newDataHandler(t *testing.T) *DataHandler {
	t.Helper()
	store := seedDataStore(t)
	return NewDataHandler(store.Projects(), store.TimeEntries(), store.Uploads(), zap.NewNop())
}

func TestDataHandler_ListProjects(t *testing.T) {
	handler := newDataHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	handler.ListProjects(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var projects []*models.Project
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "Course A", projects[0].Name)
	assert.Equal(t, "2022", projects[0].ReportingYear)
}

func TestDataHandler_ListTimeEntries(t *testing.T) {
	handler := newDataHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/time-entries", nil)
	rec := httptest.NewRecorder()
	handler.ListTimeEntries(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var entries []*models.TimeEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Course A", entries[0].ProjectName)
	assert.InDelta(t, 3, entries[0].Hours, 1e-9)
}

func TestDataHandler_ListUploads(t *testing.T) {
	handler := newDataHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/uploads", nil)
	rec := httptest.NewRecorder()
	handler.ListUploads(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var uploads []*models.UploadRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&uploads))
	require.Len(t, uploads, 1)
	assert.Equal(t, "legacy.xlsx", uploads[0].FileName)
}
