package handlers

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON encodes data as the response body. The encoding error is
// returned for logging; the status line has already been sent by then.
func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeError emits the standard error envelope with a machine-readable
// code and a human-readable message.
func writeError(w http.ResponseWriter, status int, code, message string) error {
	return writeJSON(w, status, errorBody{Error: code, Message: message})
}
