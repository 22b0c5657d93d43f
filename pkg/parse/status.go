package parse

import (
	"strings"

	"github.com/smartcharts/coursetrack-engine/pkg/models"
)

// NormalizeStatus maps a free-text status to the canonical set. Asterisks
// are stripped and whitespace collapsed; empty input returns fallback.
// Unrecognized statuses pass through whitespace-normalized so no data is
// lost.
func NormalizeStatus(raw, fallback string) string {
	cleaned := NormalizeWhitespace(strings.ReplaceAll(raw, "*", ""))
	if cleaned == "" {
		return fallback
	}

	switch strings.ToLower(cleaned) {
	case "completed", "complete":
		return models.StatusCompleted
	case "published":
		return models.StatusPublished
	case "in progress", "in-progress":
		return models.StatusInProgress
	}
	return cleaned
}

// IsCompletedStatus reports whether a status counts as done for
// completion-rate metrics. Published counts as done.
func IsCompletedStatus(raw string) bool {
	switch NormalizeStatus(raw, "") {
	case models.StatusCompleted, models.StatusPublished:
		return true
	}
	return false
}

// NormalizeWhitespace trims and collapses internal runs of whitespace to a
// single space.
func NormalizeWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
