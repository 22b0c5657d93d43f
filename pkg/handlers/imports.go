package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/services"
)

// maxUploadBytes bounds one multipart import request.
const maxUploadBytes = 64 << 20

// importFields maps multipart form field names to extractor kinds.
var importFields = map[string]services.SourceKind{
	"legacy":       services.SourceKindLegacy,
	"modern":       services.SourceKindModern,
	"timespent":    services.SourceKindTimeSpent,
	"hierarchical": services.SourceKindHierarchical,
}

// ImportHandler accepts spreadsheet uploads and runs the import pipeline.
type ImportHandler struct {
	importer services.ImportService
	logger   *zap.Logger
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importer services.ImportService, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{importer: importer, logger: logger.Named("import-handler")}
}

// RegisterRoutes registers the import routes on the given mux.
func (h *ImportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/imports", h.Import)
}

// Import handles POST /api/imports. The multipart form may carry any
// combination of "legacy", "modern", "timespent", and "hierarchical"
// files; a file that fails to parse is reported in the summary without
// failing the batch.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		_ = writeError(w, http.StatusBadRequest, "invalid_request", "expected multipart form upload")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	var files []services.InputFile
	var openErrs []string
	for field, kind := range importFields {
		for _, header := range r.MultipartForm.File[field] {
			f, err := header.Open()
			if err != nil {
				h.logger.Warn("Failed to open uploaded file",
					zap.String("file", header.Filename), zap.Error(err))
				openErrs = append(openErrs, header.Filename+": "+err.Error())
				continue
			}
			defer func(f multipart.File) { _ = f.Close() }(f)
			files = append(files, services.InputFile{
				Kind:   kind,
				Name:   header.Filename,
				Reader: f,
			})
		}
	}

	if len(files) == 0 && len(openErrs) == 0 {
		_ = writeError(w, http.StatusBadRequest, "no_files",
			"provide at least one of: legacy, modern, timespent, hierarchical")
		return
	}

	input, fileErrors, guesses := services.BuildImportInput(files, h.logger)
	fileErrors = append(openErrs, fileErrors...)

	summary, err := h.importer.ImportBatch(r.Context(), input)
	if err != nil {
		h.logger.Error("Import failed", zap.Error(err))
		_ = writeError(w, http.StatusInternalServerError, "import_failed", err.Error())
		return
	}
	summary.FileErrors = fileErrors
	if guesses > 0 {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("%d hierarchical rows attributed by position rather than name", guesses))
	}

	if err := writeJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("Failed to encode import summary", zap.Error(err))
	}
}
