package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "foicore/pkg/domainerrors"
)

// ResponseTimeUnit selects the calendar semantics of a statute's response
// deadline.
type ResponseTimeUnit string

const (
	UnitCalendarDay ResponseTimeUnit = "calendar_day"
	UnitWorkingDay  ResponseTimeUnit = "working_day"
	// UnitMonthsEOM is the German "Ende des Monats" rule: month addition
	// with end-of-month clamping.
	UnitMonthsEOM ResponseTimeUnit = "month_de"
)

// Valid reports whether the unit is one of the supported semantics. Unknown
// units are a configuration defect and must fail loudly at the caller.
func (u ResponseTimeUnit) Valid() bool {
	switch u {
	case UnitCalendarDay, UnitWorkingDay, UnitMonthsEOM:
		return true
	}
	return false
}

// Statute is a freedom-of-information law: the refusal reasons it allows and
// the response deadline it imposes.
//
// Invariants:
//   - Name is non-empty and at most 255 characters
//   - MaxResponseTimeUnit is a known unit whenever MaxResponseTime is set
//   - Meta statutes aggregate refusal reasons from CombinedIDs; their own
//     RefusalReasons text is ignored
//   - A meta statute may not combine another meta statute (enforced at
//     write time; menu assembly additionally skips nested metas instead of
//     recursing, so out-of-band data cannot loop it)
//   - CombinedIDs is meaningless when Meta is false and dropped on write
type Statute struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description,omitempty"`
	JurisdictionID *uuid.UUID `json:"jurisdiction_id,omitempty"`

	Meta        bool        `json:"meta"`
	CombinedIDs []uuid.UUID `json:"combined_ids,omitempty"`

	// RefusalReasons holds one refusal code+description per line,
	// e.g. "§X.Y: Privacy Concerns".
	RefusalReasons string `json:"refusal_reasons,omitempty"`

	// Priority is the tie-break rank among statutes of one jurisdiction;
	// lower is preferred.
	Priority int `json:"priority"`

	// MaxResponseTime is the statutory response time in units of
	// MaxResponseTimeUnit. Nil means the statute imposes no deadline.
	MaxResponseTime     *int             `json:"max_response_time,omitempty"`
	MaxResponseTimeUnit ResponseTimeUnit `json:"max_response_time_unit"`

	// LetterStart and LetterEnd are opaque free text consumed by the letter
	// rendering layer; carried, never interpreted here.
	LetterStart string `json:"letter_start,omitempty"`
	LetterEnd   string `json:"letter_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefusalChoice is one selectable refusal reason. Code is the full statutory
// line; Label is the menu-friendly form.
type RefusalChoice struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// SentinelChoice is the "no statute applies" entry that leads every menu.
func SentinelChoice() RefusalChoice {
	return RefusalChoice{Code: "", Label: "No law applies"}
}

// Validate enforces write-time invariants. Combined statutes are passed in
// resolved form so the nested-meta rule can be checked without store access.
func (s *Statute) Validate(combined []*Statute) error {
	if s.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "statute name cannot be empty")
	}
	if len(s.Name) > 255 {
		return dErrors.New(dErrors.CodeValidation, "statute name must be 255 characters or less")
	}
	if s.MaxResponseTime != nil {
		if *s.MaxResponseTime < 0 {
			return dErrors.New(dErrors.CodeValidation, "max response time cannot be negative")
		}
		if !s.MaxResponseTimeUnit.Valid() {
			return dErrors.Newf(dErrors.CodeInvalidUnit, "unsupported response time unit %q", s.MaxResponseTimeUnit)
		}
	}
	if !s.Meta {
		if len(s.CombinedIDs) > 0 {
			return dErrors.New(dErrors.CodeValidation, "combined statutes require meta=true")
		}
		return nil
	}
	for _, c := range combined {
		if c.Meta {
			return dErrors.Newf(dErrors.CodeValidation, "meta statute cannot combine meta statute %q", c.Name)
		}
	}
	return nil
}

// OwnRefusalChoices parses the newline-delimited refusal reasons of a
// non-meta statute. Each non-empty line becomes one choice; the label is a
// 12-word preview of the line, never cut mid-word.
func (s *Statute) OwnRefusalChoices() []RefusalChoice {
	var choices []RefusalChoice
	for _, line := range strings.Split(s.RefusalReasons, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		choices = append(choices, RefusalChoice{Code: line, Label: TruncateWords(line, 12)})
	}
	return choices
}

// TruncateWords returns the first n whitespace-separated words of s, with a
// trailing ellipsis when anything was dropped. Deterministic: same input,
// same output.
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "…"
}

// Slugify lowercases and dashes a display name for URL use.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
