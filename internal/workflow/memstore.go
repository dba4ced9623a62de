package workflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"product-studio-backend/internal/models"
)

// Compile-time check that MemoryStore satisfies ProjectStore.
var _ ProjectStore = (*MemoryStore)(nil)

// MemoryStore is an in-process ProjectStore for tests and local runs without
// a database. Each call is atomic.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]models.ProjectRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[uuid.UUID]models.ProjectRecord)}
}

// Put inserts or replaces a record verbatim. It exists for seeding.
func (s *MemoryStore) Put(rec models.ProjectRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[rec.ID] = rec.Clone()
}

func (s *MemoryStore) Create(ctx context.Context, userID uuid.UUID, name string) (*models.ProjectRecord, error) {
	rec := models.NewProjectRecord(userID, name)
	s.Put(rec)
	out := rec.Clone()
	return &out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*models.ProjectRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.projects[id]
	if !ok || rec.DeletedAt != nil {
		return nil, NotFoundf("project %s not found", id)
	}
	out := rec.Clone()
	return &out, nil
}

func (s *MemoryStore) Patch(ctx context.Context, id uuid.UUID, patch *models.Patch) (*models.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[id]
	if !ok || rec.DeletedAt != nil {
		return nil, NotFoundf("project %s not found", id)
	}
	if v, ok := patch.ExpectedVersion(); ok && v != rec.Version {
		return nil, StaleVersionError(id, v)
	}
	rec = rec.Clone()
	patch.Apply(&rec)
	rec.Version++
	rec.UpdatedAt = time.Now().UTC()
	s.projects[id] = rec
	out := rec.Clone()
	return &out, nil
}

// List returns live projects, newest first. A nil userID lists everyone's.
func (s *MemoryStore) List(ctx context.Context, userID *uuid.UUID) ([]models.ProjectRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ProjectRecord, 0, len(s.projects))
	for _, rec := range s.projects {
		if rec.DeletedAt != nil {
			continue
		}
		if userID != nil && rec.UserID != *userID {
			continue
		}
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[id]
	if !ok || rec.DeletedAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	rec.DeletedAt = &now
	rec.UpdatedAt = now
	s.projects[id] = rec
	return true, nil
}
