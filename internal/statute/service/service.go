// Package service implements statute resolution: which statute governs a
// request, which refusal reasons it allows, and when the response is due.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"foicore/internal/audit"
	"foicore/internal/calendar"
	"foicore/internal/platform/metrics"
	"foicore/internal/statute/models"
	"foicore/internal/statute/store"
	dErrors "foicore/pkg/domainerrors"
	"foicore/pkg/requestcontext"
	"foicore/pkg/sentinel"
)

// StatuteStore is the record-store surface this service consumes.
type StatuteStore interface {
	CreateJurisdiction(ctx context.Context, j *models.Jurisdiction) error
	FindJurisdictionByID(ctx context.Context, id uuid.UUID) (*models.Jurisdiction, error)
	ListVisibleJurisdictions(ctx context.Context) ([]*models.Jurisdiction, error)
	CreateStatute(ctx context.Context, st *models.Statute) error
	UpdateStatute(ctx context.Context, st *models.Statute) error
	FindStatuteByID(ctx context.Context, id uuid.UUID) (*models.Statute, error)
	FindStatutesByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Statute, error)
	ListStatutesByJurisdiction(ctx context.Context, jurisdictionID uuid.UUID) ([]*models.Statute, error)
}

// Service answers statute questions for the request-handling layers.
type Service struct {
	store StatuteStore

	// defaultStatuteID backs DefaultStatute when no jurisdiction hint is
	// given. Injected from config; uuid.Nil means not configured.
	defaultStatuteID uuid.UUID

	holidays calendar.Calendar
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    audit.Publisher
}

type Option func(s *Service)

func WithDefaultStatuteID(id uuid.UUID) Option {
	return func(s *Service) { s.defaultStatuteID = id }
}

func WithHolidayCalendar(cal calendar.Calendar) Option {
	return func(s *Service) {
		if cal != nil {
			s.holidays = cal
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// New constructs a Service. Without options it resolves against an empty
// holiday calendar and has no configured default statute.
func New(st StatuteStore, opts ...Option) *Service {
	s := &Service{
		store:    st,
		holidays: calendar.Empty{},
		logger:   slog.Default(),
		audit:    audit.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateJurisdiction registers a legal territory statutes can belong to.
func (s *Service) CreateJurisdiction(ctx context.Context, name string, rank int) (*models.Jurisdiction, error) {
	j, err := models.NewJurisdiction(uuid.New(), name, rank, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateJurisdiction(ctx, j); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "jurisdiction name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create jurisdiction")
	}
	return j, nil
}

// CreateStatute validates and persists an administrator-supplied statute.
func (s *Service) CreateStatute(ctx context.Context, st *models.Statute) (*models.Statute, error) {
	now := requestcontext.Now(ctx)
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	if st.Slug == "" {
		st.Slug = models.Slugify(st.Name)
	}
	st.CreatedAt = now
	st.UpdatedAt = now
	if !st.Meta {
		st.CombinedIDs = nil
	}

	combined, err := s.store.FindStatutesByIDs(ctx, st.CombinedIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load combined statutes")
	}
	if len(combined) != len(st.CombinedIDs) {
		return nil, dErrors.New(dErrors.CodeValidation, "combined statute does not exist")
	}
	if err := st.Validate(combined); err != nil {
		return nil, err
	}

	if err := s.store.CreateStatute(ctx, st); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "statute name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create statute")
	}
	s.audit.Emit(ctx, audit.Event{
		Kind:      audit.EventStatuteCreated,
		SubjectID: st.ID,
		At:        now,
	})
	return st, nil
}

// GetStatute fetches a single statute.
func (s *Service) GetStatute(ctx context.Context, id uuid.UUID) (*models.Statute, error) {
	st, err := s.store.FindStatuteByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "statute not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load statute")
	}
	return st, nil
}

// ListJurisdictions returns publicly listable jurisdictions in (rank, name)
// order.
func (s *Service) ListJurisdictions(ctx context.Context) ([]*models.Jurisdiction, error) {
	js, err := s.store.ListVisibleJurisdictions(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list jurisdictions")
	}
	return js, nil
}

// DefaultStatute picks the governing statute. With a jurisdiction hint the
// broadest statute of that jurisdiction wins: meta statutes first (an
// umbrella statute shows the widest refusal-reason menu), then lower
// priority value, then name. Without a hint the injected default applies.
func (s *Service) DefaultStatute(ctx context.Context, jurisdictionID *uuid.UUID) (*models.Statute, error) {
	if jurisdictionID == nil {
		if s.defaultStatuteID == uuid.Nil {
			return nil, dErrors.New(dErrors.CodeNotConfigured, "no default statute configured")
		}
		st, err := s.GetStatute(ctx, s.defaultStatuteID)
		if err != nil {
			return nil, err
		}
		s.metrics.IncrementStatutesResolved()
		return st, nil
	}

	sts, err := s.store.ListStatutesByJurisdiction(ctx, *jurisdictionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list statutes")
	}
	if len(sts) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no statute for jurisdiction")
	}
	store.SortForResolution(sts)
	s.metrics.IncrementStatutesResolved()
	return sts[0], nil
}

// RefusalReasonChoices assembles the refusal-reason menu for a statute.
//
// The menu always leads with the sentinel "no law applies" choice. For a
// meta statute the combined statutes contribute their own choices (minus
// their sentinels) in ascending (priority, name) order; each label is
// prefixed with the contributing statute's name so the origin stays visible.
// A combined statute that is itself meta is skipped, never recursed into.
func (s *Service) RefusalReasonChoices(ctx context.Context, st *models.Statute) ([]models.RefusalChoice, error) {
	choices := []models.RefusalChoice{models.SentinelChoice()}

	if !st.Meta {
		choices = append(choices, st.OwnRefusalChoices()...)
		s.metrics.IncrementRefusalMenusBuilt()
		return choices, nil
	}

	combined, err := s.store.FindStatutesByIDs(ctx, st.CombinedIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load combined statutes")
	}
	store.SortForResolution(combined)
	for _, sub := range combined {
		if sub.Meta {
			s.logger.WarnContext(ctx, "skipping nested meta statute in refusal menu",
				"statute_id", st.ID,
				"nested_id", sub.ID,
			)
			continue
		}
		for _, c := range sub.OwnRefusalChoices() {
			choices = append(choices, models.RefusalChoice{
				Code:  c.Code,
				Label: sub.Name + ": " + c.Code,
			})
		}
	}
	s.metrics.IncrementRefusalMenusBuilt()
	return choices, nil
}

// DueDate computes the statutory response deadline. A nil start defaults to
// the request-scoped now. A statute without a response time yields
// (nil, nil): a valid unbounded deadline, not an error.
func (s *Service) DueDate(ctx context.Context, st *models.Statute, start *time.Time) (*time.Time, error) {
	if st.MaxResponseTime == nil {
		return nil, nil
	}
	from := requestcontext.Now(ctx)
	if start != nil {
		from = *start
	}

	var due time.Time
	switch st.MaxResponseTimeUnit {
	case models.UnitCalendarDay:
		due = calendar.AddDays(from, *st.MaxResponseTime)
	case models.UnitWorkingDay:
		var err error
		due, err = calendar.AddWorkingDays(ctx, from, *st.MaxResponseTime, s.holidays)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "holiday calendar lookup failed")
		}
	case models.UnitMonthsEOM:
		due = calendar.AddMonthsEOM(from, *st.MaxResponseTime)
	default:
		return nil, dErrors.Newf(dErrors.CodeInvalidUnit, "unsupported response time unit %q", st.MaxResponseTimeUnit)
	}
	s.metrics.IncrementDueDatesComputed()
	return &due, nil
}
