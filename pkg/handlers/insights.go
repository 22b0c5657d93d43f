package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/llm"
	"github.com/smartcharts/coursetrack-engine/pkg/services"
)

// ChatRequest is the insights chat request body.
type ChatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history"`
}

// InsightsHandler streams AI answers about the imported data.
type InsightsHandler struct {
	insights services.InsightsService
	logger   *zap.Logger
}

// NewInsightsHandler creates a new InsightsHandler. insights may be nil
// when no AI provider is configured; the route then returns 503.
func NewInsightsHandler(insights services.InsightsService, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{insights: insights, logger: logger.Named("insights-handler")}
}

// RegisterRoutes registers the insights routes on the given mux.
func (h *InsightsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/insights/chat", h.Chat)
}

// Chat handles POST /api/insights/chat. The response is a Server-Sent
// Events stream of text deltas followed by a "done" event.
func (h *InsightsHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.insights == nil {
		_ = writeError(w, http.StatusServiceUnavailable, "ai_not_configured",
			"no AI provider is configured")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Message == "" {
		_ = writeError(w, http.StatusBadRequest, "invalid_request", "no message provided")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		_ = writeError(w, http.StatusInternalServerError, "streaming_unsupported",
			"response writer does not support streaming")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		_, _ = w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n"))
		flusher.Flush()
	}

	_, err := h.insights.Chat(r.Context(), req.Message, req.History, func(delta string) {
		writeEvent("delta", map[string]string{"text": delta})
	})
	if err != nil {
		h.logger.Error("Insights chat failed", zap.Error(err))
		writeEvent("error", map[string]string{"message": err.Error()})
		return
	}

	writeEvent("done", map[string]string{})
}
