// Package store persists public bodies. InMemory for tests and
// single-process runs, Postgres for deployments; both speak sentinel errors.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"foicore/internal/publicbody/models"
	"foicore/pkg/sentinel"
)

// InMemory keeps public bodies in process memory.
type InMemory struct {
	mu     sync.RWMutex
	bodies map[uuid.UUID]*models.PublicBody
}

func NewInMemory() *InMemory {
	return &InMemory{bodies: make(map[uuid.UUID]*models.PublicBody)}
}

func (s *InMemory) Create(_ context.Context, b *models.PublicBody) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.bodies {
		if strings.EqualFold(existing.Slug, b.Slug) {
			return sentinel.ErrConflict
		}
	}
	s.bodies[b.ID] = copyBody(b)
	return nil
}

func (s *InMemory) Save(_ context.Context, b *models.PublicBody) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bodies[b.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.bodies[b.ID] = copyBody(b)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.PublicBody, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bodies[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyBody(b), nil
}

// FindByParent returns the direct children of a body in name order.
func (s *InMemory) FindByParent(_ context.Context, parentID uuid.UUID) ([]*models.PublicBody, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.PublicBody
	for _, b := range s.bodies {
		if b.ParentID != nil && *b.ParentID == parentID {
			out = append(out, copyBody(b))
		}
	}
	sortByName(out)
	return out, nil
}

// CountByParent is a live scan; child counts are never cached.
func (s *InMemory) CountByParent(_ context.Context, parentID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.bodies {
		if b.ParentID != nil && *b.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

func sortByName(bodies []*models.PublicBody) {
	sort.SliceStable(bodies, func(i, j int) bool {
		return bodies[i].Name < bodies[j].Name
	})
}

func copyBody(b *models.PublicBody) *models.PublicBody {
	cp := *b
	if b.ParentID != nil {
		v := *b.ParentID
		cp.ParentID = &v
	}
	if b.RootID != nil {
		v := *b.RootID
		cp.RootID = &v
	}
	if b.JurisdictionID != nil {
		v := *b.JurisdictionID
		cp.JurisdictionID = &v
	}
	if b.LawIDs != nil {
		cp.LawIDs = append([]uuid.UUID(nil), b.LawIDs...)
	}
	return &cp
}
