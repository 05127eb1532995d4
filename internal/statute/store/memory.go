// Package store persists statutes and jurisdictions. Implementations come in
// pairs: InMemory for tests and single-process runs, Postgres for
// deployments. Both speak sentinel errors; the service layer translates.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"foicore/internal/statute/models"
	"foicore/pkg/sentinel"
)

// InMemory keeps statutes and jurisdictions in process memory.
type InMemory struct {
	mu            sync.RWMutex
	statutes      map[uuid.UUID]*models.Statute
	jurisdictions map[uuid.UUID]*models.Jurisdiction
}

func NewInMemory() *InMemory {
	return &InMemory{
		statutes:      make(map[uuid.UUID]*models.Statute),
		jurisdictions: make(map[uuid.UUID]*models.Jurisdiction),
	}
}

func (s *InMemory) CreateJurisdiction(_ context.Context, j *models.Jurisdiction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.jurisdictions {
		if strings.EqualFold(existing.Name, j.Name) {
			return sentinel.ErrConflict
		}
	}
	cp := *j
	s.jurisdictions[j.ID] = &cp
	return nil
}

func (s *InMemory) FindJurisdictionByID(_ context.Context, id uuid.UUID) (*models.Jurisdiction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jurisdictions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

// ListVisibleJurisdictions returns non-hidden jurisdictions in (rank, name)
// order.
func (s *InMemory) ListVisibleJurisdictions(_ context.Context) ([]*models.Jurisdiction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Jurisdiction
	for _, j := range s.jurisdictions {
		if j.Hidden {
			continue
		}
		cp := *j
		out = append(out, &cp)
	}
	models.SortJurisdictions(out)
	return out, nil
}

func (s *InMemory) CreateStatute(_ context.Context, st *models.Statute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.statutes {
		if strings.EqualFold(existing.Name, st.Name) {
			return sentinel.ErrConflict
		}
	}
	s.statutes[st.ID] = copyStatute(st)
	return nil
}

func (s *InMemory) UpdateStatute(_ context.Context, st *models.Statute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.statutes[st.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.statutes[st.ID] = copyStatute(st)
	return nil
}

func (s *InMemory) FindStatuteByID(_ context.Context, id uuid.UUID) (*models.Statute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statutes[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyStatute(st), nil
}

// FindStatutesByIDs returns the statutes for the given ids, omitting unknown
// ids rather than failing; callers decide whether absence matters.
func (s *InMemory) FindStatutesByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Statute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Statute, 0, len(ids))
	for _, id := range ids {
		if st, ok := s.statutes[id]; ok {
			out = append(out, copyStatute(st))
		}
	}
	return out, nil
}

// ListStatutesByJurisdiction returns statutes of one jurisdiction ordered
// meta first, then by (priority, name).
func (s *InMemory) ListStatutesByJurisdiction(_ context.Context, jurisdictionID uuid.UUID) ([]*models.Statute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Statute
	for _, st := range s.statutes {
		if st.JurisdictionID != nil && *st.JurisdictionID == jurisdictionID {
			out = append(out, copyStatute(st))
		}
	}
	SortForResolution(out)
	return out, nil
}

// SortForResolution orders statutes meta descending, then priority
// ascending, then name ascending. This is the resolver's selection order and
// the menu's combined iteration order, shared so both stores agree.
func SortForResolution(sts []*models.Statute) {
	sort.SliceStable(sts, func(i, j int) bool {
		if sts[i].Meta != sts[j].Meta {
			return sts[i].Meta
		}
		if sts[i].Priority != sts[j].Priority {
			return sts[i].Priority < sts[j].Priority
		}
		return sts[i].Name < sts[j].Name
	})
}

func copyStatute(st *models.Statute) *models.Statute {
	cp := *st
	if st.CombinedIDs != nil {
		cp.CombinedIDs = append([]uuid.UUID(nil), st.CombinedIDs...)
	}
	if st.MaxResponseTime != nil {
		v := *st.MaxResponseTime
		cp.MaxResponseTime = &v
	}
	if st.JurisdictionID != nil {
		v := *st.JurisdictionID
		cp.JurisdictionID = &v
	}
	return &cp
}
