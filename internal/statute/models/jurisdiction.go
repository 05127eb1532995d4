package models

import (
	"sort"
	"time"

	"github.com/google/uuid"

	dErrors "foicore/pkg/domainerrors"
)

// Jurisdiction is a legal territory (federal level, a state, a municipality)
// that statutes belong to.
//
// Invariants:
//   - Name is non-empty and at most 255 characters
//   - Listing order is total by (Rank, Name)
//   - Hidden jurisdictions never appear in public listings
type Jurisdiction struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Rank        int       `json:"rank"`
	Hidden      bool      `json:"hidden"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewJurisdiction(id uuid.UUID, name string, rank int, now time.Time) (*Jurisdiction, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "jurisdiction name cannot be empty")
	}
	if len(name) > 255 {
		return nil, dErrors.New(dErrors.CodeValidation, "jurisdiction name must be 255 characters or less")
	}
	return &Jurisdiction{
		ID:        id,
		Name:      name,
		Slug:      Slugify(name),
		Rank:      rank,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SortJurisdictions orders by (rank, name), the caller-visible listing order.
func SortJurisdictions(js []*Jurisdiction) {
	sort.SliceStable(js, func(i, j int) bool {
		if js[i].Rank != js[j].Rank {
			return js[i].Rank < js[j].Rank
		}
		return js[i].Name < js[j].Name
	})
}
