package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smartcharts/coursetrack-engine/pkg/database"
	"github.com/smartcharts/coursetrack-engine/pkg/models"
)

// UploadRepository defines data access for the append-only upload audit log.
type UploadRepository interface {
	// Create appends one audit row.
	Create(ctx context.Context, upload *models.UploadRecord) error

	// ListAll returns the audit log newest-first.
	ListAll(ctx context.Context) ([]*models.UploadRecord, error)
}

type uploadRepository struct {
	db *database.DB
}

// NewUploadRepository creates a PostgreSQL-backed upload repository.
func NewUploadRepository(db *database.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *models.UploadRecord) error {
	if upload.ID == uuid.Nil {
		upload.ID = uuid.New()
	}
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = time.Now()
	}
	if upload.Status == "" {
		upload.Status = models.UploadCompleted
	}

	query := `
		INSERT INTO upload_history (id, file_name, row_count, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		upload.ID, upload.FileName, upload.RowCount, upload.Status, upload.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create upload record: %w", err)
	}
	return nil
}

func (r *uploadRepository) ListAll(ctx context.Context) ([]*models.UploadRecord, error) {
	query := `
		SELECT id, file_name, row_count, status, created_at
		FROM upload_history
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*models.UploadRecord
	for rows.Next() {
		var u models.UploadRecord
		if err := rows.Scan(&u.ID, &u.FileName, &u.RowCount, &u.Status, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload record: %w", err)
		}
		uploads = append(uploads, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate uploads: %w", err)
	}
	return uploads, nil
}
