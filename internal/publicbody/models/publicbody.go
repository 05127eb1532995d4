package models

import (
	"net/url"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	statuteModels "foicore/internal/statute/models"
	dErrors "foicore/pkg/domainerrors"
)

// PublicBody is an authority that can receive FOI requests.
//
// Invariants:
//   - Depth == 0 iff ParentID == nil iff RootID == nil
//   - RootID and Depth are denormalized caches maintained whenever ParentID
//     changes; they are never auto-repaired outside that path
//   - ParentID is a weak reference: deleting the parent nulls it, it never
//     owns the child
//   - children count is always a live store count, never cached here
type PublicBody struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description,omitempty"`
	Classification string     `json:"classification,omitempty"`
	JurisdictionID *uuid.UUID `json:"jurisdiction_id,omitempty"`

	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	RootID   *uuid.UUID `json:"root_id,omitempty"`
	Depth    int        `json:"depth"`

	LawIDs []uuid.UUID `json:"law_ids,omitempty"`

	Email   string `json:"email,omitempty"`
	URL     string `json:"url,omitempty"`
	Contact string `json:"contact,omitempty"`
	Address string `json:"address,omitempty"`

	Confirmed        bool `json:"confirmed"`
	NumberOfRequests int  `json:"number_of_requests"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate enforces write-time field invariants. Hierarchy invariants are
// the service's job since they need store access.
func (b *PublicBody) Validate() error {
	if b.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "public body name cannot be empty")
	}
	if len(b.Name) > 255 {
		return dErrors.New(dErrors.CodeValidation, "public body name must be 255 characters or less")
	}
	if b.Email != "" && !govalidator.IsEmail(b.Email) {
		return dErrors.Newf(dErrors.CodeValidation, "invalid email %q", b.Email)
	}
	if b.URL != "" && !govalidator.IsURL(b.URL) {
		return dErrors.Newf(dErrors.CodeValidation, "invalid url %q", b.URL)
	}
	return nil
}

// IsRoot reports whether the body sits at the top of its hierarchy.
func (b *PublicBody) IsRoot() bool {
	return b.ParentID == nil
}

// Domain returns the host part of the body's URL, or "" when no URL is set.
// Used for scoping bodies by web presence.
func (b *PublicBody) Domain() string {
	if b.URL == "" {
		return ""
	}
	u, err := url.Parse(b.URL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}

// Slugify is re-exported so callers creating bodies don't need the statute
// models package for it.
func Slugify(name string) string { return statuteModels.Slugify(name) }

// LawSummary is the per-law slice of a serialized public-body record,
// mirroring what the presentation layer needs to render request letters.
type LawSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	LetterStart string    `json:"letter_start,omitempty"`
	LetterEnd   string    `json:"letter_end,omitempty"`
}

// Record is the stable serializable form of a public body consumed by
// presentation and report layers. Field names and nested ordering are part
// of the contract.
type Record struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	Slug           string       `json:"slug"`
	Description    string       `json:"description"`
	Classification string       `json:"classification"`
	Email          string       `json:"email"`
	URL            string       `json:"url"`
	Contact        string       `json:"contact"`
	Address        string       `json:"address"`
	Domain         string       `json:"domain"`
	Depth          int          `json:"depth"`
	Confirmed      bool         `json:"confirmed"`
	ChildrenCount  int          `json:"children_count"`
	Laws           []LawSummary `json:"laws"`
}

// TrimContact normalizes whitespace-heavy admin input on contact fields.
func (b *PublicBody) TrimContact() {
	b.Email = strings.TrimSpace(b.Email)
	b.URL = strings.TrimSpace(b.URL)
	b.Contact = strings.TrimSpace(b.Contact)
	b.Address = strings.TrimSpace(b.Address)
}
