package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/smartcharts/coursetrack-engine/pkg/database"
	"github.com/smartcharts/coursetrack-engine/pkg/models"
)

// listPageSize bounds one read round trip; ListAll pages internally and
// returns the full set.
const listPageSize = 1000

// TimeEntryRepository defines data access for time entries. Entries are
// append-only; there is no update or delete.
type TimeEntryRepository interface {
	// InsertBatch inserts the given entries in one round trip.
	InsertBatch(ctx context.Context, entries []*models.TimeEntry) error

	// ListAll returns every entry newest-first with the owning project's
	// name joined in.
	ListAll(ctx context.Context) ([]*models.TimeEntry, error)

	// Count returns the total number of entries.
	Count(ctx context.Context) (int, error)
}

type timeEntryRepository struct {
	db *database.DB
}

// NewTimeEntryRepository creates a PostgreSQL-backed time entry repository.
func NewTimeEntryRepository(db *database.DB) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

func (r *timeEntryRepository) InsertBatch(ctx context.Context, entries []*models.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, entry := range entries {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now()
		}

		var entryDate *time.Time
		if entry.EntryDate != nil {
			if t, err := time.Parse("2006-01-02", *entry.EntryDate); err == nil {
				entryDate = &t
			}
		}

		batch.Queue(`
			INSERT INTO time_entries (id, project_id, phase, category, hours, entry_date, user_name, upload_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			entry.ID, entry.ProjectID, entry.Phase, entry.Category, entry.Hours,
			entryDate, entry.UserName, entry.UploadID, entry.CreatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert time entries: %w", err)
		}
	}
	return nil
}

func (r *timeEntryRepository) ListAll(ctx context.Context) ([]*models.TimeEntry, error) {
	query := `
		SELECT te.id, te.project_id, COALESCE(p.name, ''), te.phase, te.category,
		       te.hours, te.entry_date, te.user_name, te.upload_id, te.created_at
		FROM time_entries te
		LEFT JOIN projects p ON p.id = te.project_id
		ORDER BY te.created_at DESC, te.id
		LIMIT $1 OFFSET $2`

	var all []*models.TimeEntry
	for offset := 0; ; offset += listPageSize {
		page, err := r.listPage(ctx, query, listPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < listPageSize {
			break
		}
	}
	return all, nil
}

func (r *timeEntryRepository) listPage(ctx context.Context, query string, limit, offset int) ([]*models.TimeEntry, error) {
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.TimeEntry
	for rows.Next() {
		var e models.TimeEntry
		var entryDate *time.Time
		if err := rows.Scan(
			&e.ID, &e.ProjectID, &e.ProjectName, &e.Phase, &e.Category,
			&e.Hours, &entryDate, &e.UserName, &e.UploadID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		if entryDate != nil {
			iso := entryDate.Format("2006-01-02")
			e.EntryDate = &iso
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate time entries: %w", err)
	}
	return entries, nil
}

func (r *timeEntryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM time_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count time entries: %w", err)
	}
	return count, nil
}
