package models

import (
	"time"

	"github.com/google/uuid"
)

// Upload statuses.
const (
	UploadCompleted = "completed"
	UploadFailed    = "failed"
)

// UploadRecord is the append-only audit row written once per import
// invocation.
type UploadRecord struct {
	ID        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	RowCount  int       `json:"row_count"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
