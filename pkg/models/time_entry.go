package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntry is one granular logged-hours row tied to a course name. Entries
// are append-only: every import inserts new rows and never merges, so
// per-project totals must always be computed by summing entries, not read
// from a stored counter.
//
// ProjectID is a weak reference. An entry whose course name resolved to no
// project is persisted with ProjectID nil and stays visible as unresolved.
type TimeEntry struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   *uuid.UUID `json:"project_id"`
	ProjectName string     `json:"project_name,omitempty"` // joined for read models, not stored
	Phase       string     `json:"phase"`
	Category    string     `json:"category"`
	Hours       float64    `json:"hours"`
	EntryDate   *string    `json:"entry_date"` // ISO date string, nil when unparseable/absent
	UserName    string     `json:"user_name"`
	UploadID    uuid.UUID  `json:"upload_id"`
	CreatedAt   time.Time  `json:"created_at"`
}
