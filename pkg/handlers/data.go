package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/repositories"
)

// DataHandler exposes the read models the dashboard consumes: projects,
// time entries, and upload history. Grouping and aggregation happen in the
// consumer, not here.
type DataHandler struct {
	projects repositories.ProjectRepository
	entries  repositories.TimeEntryRepository
	uploads  repositories.UploadRepository
	logger   *zap.Logger
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(
	projects repositories.ProjectRepository,
	entries repositories.TimeEntryRepository,
	uploads repositories.UploadRepository,
	logger *zap.Logger,
) *DataHandler {
	return &DataHandler{
		projects: projects,
		entries:  entries,
		uploads:  uploads,
		logger:   logger.Named("data-handler"),
	}
}

// RegisterRoutes registers the read-model routes on the given mux.
func (h *DataHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects", h.ListProjects)
	mux.HandleFunc("GET /api/time-entries", h.ListTimeEntries)
	mux.HandleFunc("GET /api/uploads", h.ListUploads)
}

// ListProjects handles GET /api/projects, ordered by name.
func (h *DataHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list projects", zap.Error(err))
		_ = writeError(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	_ = writeJSON(w, http.StatusOK, projects)
}

// ListTimeEntries handles GET /api/time-entries, newest first with the
// owning project's name joined in.
func (h *DataHandler) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entries.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list time entries", zap.Error(err))
		_ = writeError(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	_ = writeJSON(w, http.StatusOK, entries)
}

// ListUploads handles GET /api/uploads, newest first.
func (h *DataHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.uploads.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list uploads", zap.Error(err))
		_ = writeError(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	_ = writeJSON(w, http.StatusOK, uploads)
}
