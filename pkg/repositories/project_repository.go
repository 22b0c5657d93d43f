// Package repositories provides data access for coursetrack-engine
// entities. Each repository is an interface with a PostgreSQL
// implementation; pkg/repositories/memory.go provides in-memory
// implementations of the same interfaces for offline operation and tests.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smartcharts/coursetrack-engine/pkg/apperrors"
	"github.com/smartcharts/coursetrack-engine/pkg/database"
	"github.com/smartcharts/coursetrack-engine/pkg/models"
)

// ProjectRepository defines data access for projects.
type ProjectRepository interface {
	// ListAll returns every project ordered by name.
	ListAll(ctx context.Context) ([]*models.Project, error)

	// Create inserts a new project. A nil ID is generated.
	Create(ctx context.Context, project *models.Project) error

	// Update overwrites a project's mutable fields and refreshes UpdatedAt.
	Update(ctx context.Context, project *models.Project) error
}

type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a PostgreSQL-backed project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, name, status, total_hours, data_source, reporting_year,
	id_assigned, sme, legal_reviewer, vertical, course_type, authoring_tool,
	course_style, course_length, interaction_count, created_at, updated_at`

func (r *projectRepository) ListAll(ctx context.Context) ([]*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects ORDER BY name`, projectColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Status, &p.TotalHours, &p.DataSource, &p.ReportingYear,
			&p.IDAssigned, &p.SME, &p.LegalReviewer, &p.Vertical, &p.CourseType,
			&p.AuthoringTool, &p.CourseStyle, &p.CourseLength, &p.InteractionCount,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO projects (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		projectColumns)

	_, err := r.db.Exec(ctx, query,
		project.ID, project.Name, project.Status, project.TotalHours,
		project.DataSource, project.ReportingYear, project.IDAssigned, project.SME,
		project.LegalReviewer, project.Vertical, project.CourseType,
		project.AuthoringTool, project.CourseStyle, project.CourseLength,
		project.InteractionCount, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()

	query := `
		UPDATE projects
		SET name = $2, status = $3, total_hours = $4, data_source = $5,
		    reporting_year = $6, id_assigned = $7, sme = $8, legal_reviewer = $9,
		    vertical = $10, course_type = $11, authoring_tool = $12,
		    course_style = $13, course_length = $14, interaction_count = $15,
		    updated_at = $16
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		project.ID, project.Name, project.Status, project.TotalHours,
		project.DataSource, project.ReportingYear, project.IDAssigned, project.SME,
		project.LegalReviewer, project.Vertical, project.CourseType,
		project.AuthoringTool, project.CourseStyle, project.CourseLength,
		project.InteractionCount, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", project.ID, apperrors.ErrNotFound)
	}
	return nil
}
