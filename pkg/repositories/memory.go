package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartcharts/coursetrack-engine/pkg/apperrors"
	"github.com/smartcharts/coursetrack-engine/pkg/models"
)

// MemoryStore holds projects, time entries, and upload history in process
// memory. It backs disconnected/offline operation and unit tests: the
// pipeline sees the same repository contract regardless of which store is
// wired in. Projects(), TimeEntries(), and Uploads() return views
// implementing the respective repository interfaces over the shared data.
type MemoryStore struct {
	mu       sync.RWMutex
	projects []*models.Project
	entries  []*models.TimeEntry
	uploads  []*models.UploadRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Projects returns the project repository view.
func (s *MemoryStore) Projects() ProjectRepository { return &memoryProjects{s} }

// TimeEntries returns the time entry repository view.
func (s *MemoryStore) TimeEntries() TimeEntryRepository { return &memoryTimeEntries{s} }

// Uploads returns the upload repository view.
func (s *MemoryStore) Uploads() UploadRepository { return &memoryUploads{s} }

type memoryProjects struct{ store *MemoryStore }

var _ ProjectRepository = (*memoryProjects)(nil)

func (r *memoryProjects) ListAll(ctx context.Context) ([]*models.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*models.Project, len(r.store.projects))
	for i, p := range r.store.projects {
		cp := *p
		out[i] = &cp
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryProjects) Create(ctx context.Context, project *models.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	cp := *project
	r.store.projects = append(r.store.projects, &cp)
	return nil
}

func (r *memoryProjects) Update(ctx context.Context, project *models.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, existing := range r.store.projects {
		if existing.ID == project.ID {
			project.CreatedAt = existing.CreatedAt
			project.UpdatedAt = time.Now()
			cp := *project
			r.store.projects[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("project %s: %w", project.ID, apperrors.ErrNotFound)
}

type memoryTimeEntries struct{ store *MemoryStore }

var _ TimeEntryRepository = (*memoryTimeEntries)(nil)

func (r *memoryTimeEntries) InsertBatch(ctx context.Context, entries []*models.TimeEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, entry := range entries {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now()
		}
		cp := *entry
		r.store.entries = append(r.store.entries, &cp)
	}
	return nil
}

func (r *memoryTimeEntries) ListAll(ctx context.Context) ([]*models.TimeEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	names := make(map[uuid.UUID]string, len(r.store.projects))
	for _, p := range r.store.projects {
		names[p.ID] = p.Name
	}

	out := make([]*models.TimeEntry, len(r.store.entries))
	for i, e := range r.store.entries {
		cp := *e
		if cp.ProjectID != nil {
			cp.ProjectName = names[*cp.ProjectID]
		}
		out[i] = &cp
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryTimeEntries) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.entries), nil
}

type memoryUploads struct{ store *MemoryStore }

var _ UploadRepository = (*memoryUploads)(nil)

func (r *memoryUploads) Create(ctx context.Context, upload *models.UploadRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if upload.ID == uuid.Nil {
		upload.ID = uuid.New()
	}
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = time.Now()
	}
	if upload.Status == "" {
		upload.Status = models.UploadCompleted
	}
	cp := *upload
	r.store.uploads = append(r.store.uploads, &cp)
	return nil
}

func (r *memoryUploads) ListAll(ctx context.Context) ([]*models.UploadRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*models.UploadRecord, len(r.store.uploads))
	for i, u := range r.store.uploads {
		cp := *u
		out[i] = &cp
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
