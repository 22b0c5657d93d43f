// Package models contains domain types for coursetrack-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Canonical project statuses. Free-text statuses outside this set pass
// through whitespace-normalized (see parse.NormalizeStatus).
const (
	StatusCompleted  = "Completed"
	StatusPublished  = "Published"
	StatusInProgress = "In Progress"
)

// DataSource identifies which export era a project record came from.
const (
	SourceLegacy   = "legacy"
	SourceModern   = "modern"
	SourceTimeOnly = "time_only"
)

// Project represents one trackable unit of course production, uniquely
// identified by (normalized name, reporting year). Re-importing the same
// key updates the existing row rather than duplicating it.
type Project struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Status           string    `json:"status"`
	TotalHours       float64   `json:"total_hours"`
	DataSource       string    `json:"data_source"`
	ReportingYear    string    `json:"reporting_year"`
	IDAssigned       string    `json:"id_assigned"`
	SME              string    `json:"sme"`
	LegalReviewer    string    `json:"legal_reviewer"`
	Vertical         string    `json:"vertical"`
	CourseType       string    `json:"course_type"`
	AuthoringTool    string    `json:"authoring_tool"`
	CourseStyle      string    `json:"course_style"`
	CourseLength     string    `json:"course_length"`
	InteractionCount *int      `json:"interaction_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
