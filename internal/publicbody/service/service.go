// Package service implements public-body hierarchy bookkeeping: parent and
// root pointers, depth, live child counts, and the confirmation transition.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"foicore/internal/audit"
	"foicore/internal/platform/metrics"
	"foicore/internal/publicbody/models"
	statuteModels "foicore/internal/statute/models"
	dErrors "foicore/pkg/domainerrors"
	"foicore/pkg/requestcontext"
	"foicore/pkg/sentinel"
)

// maxHierarchyDepth caps ancestor walks. Hierarchies in practice are a
// handful of levels deep; hitting the cap means a parent cycle slipped into
// the store and the walk reports it instead of looping.
const maxHierarchyDepth = 64

// BodyStore is the record-store surface this service consumes.
type BodyStore interface {
	Create(ctx context.Context, b *models.PublicBody) error
	Save(ctx context.Context, b *models.PublicBody) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PublicBody, error)
	FindByParent(ctx context.Context, parentID uuid.UUID) ([]*models.PublicBody, error)
	CountByParent(ctx context.Context, parentID uuid.UUID) (int, error)
}

// StatuteReader resolves law ids into statutes for serialized records.
type StatuteReader interface {
	FindStatutesByIDs(ctx context.Context, ids []uuid.UUID) ([]*statuteModels.Statute, error)
}

// RequestConfirmer applies the request-side effects of confirming a body and
// reports how many requests were affected. The confirmation itself stays
// idempotent regardless of this implementation.
type RequestConfirmer interface {
	ConfirmPending(ctx context.Context, bodyID uuid.UUID) (int, error)
}

// NoopConfirmer is the default RequestConfirmer: no request records exist in
// this deployment, so confirmation affects zero of them.
type NoopConfirmer struct{}

func (NoopConfirmer) ConfirmPending(context.Context, uuid.UUID) (int, error) { return 0, nil }

// Service orchestrates public-body management.
type Service struct {
	bodies   BodyStore
	statutes StatuteReader
	requests RequestConfirmer
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    audit.Publisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithRequestConfirmer(rc RequestConfirmer) Option {
	return func(s *Service) {
		if rc != nil {
			s.requests = rc
		}
	}
}

// New constructs a Service.
func New(bodies BodyStore, statutes StatuteReader, opts ...Option) *Service {
	s := &Service{
		bodies:   bodies,
		statutes: statutes,
		requests: NoopConfirmer{},
		logger:   slog.Default(),
		audit:    audit.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a new public body, deriving root and depth
// from the requested parent.
func (s *Service) Create(ctx context.Context, b *models.PublicBody) (*models.PublicBody, error) {
	now := requestcontext.Now(ctx)
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Slug == "" {
		b.Slug = models.Slugify(b.Name)
	}
	b.TrimContact()
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if b.ParentID == nil {
		b.RootID = nil
		b.Depth = 0
	} else {
		parent, err := s.getBody(ctx, *b.ParentID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return nil, dErrors.New(dErrors.CodeValidation, "parent public body does not exist")
			}
			return nil, err
		}
		root := rootOf(parent)
		b.RootID = &root
		b.Depth = parent.Depth + 1
	}

	if err := s.bodies.Create(ctx, b); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "public body slug must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create public body")
	}
	return b, nil
}

// Get fetches a single public body.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.PublicBody, error) {
	return s.getBody(ctx, id)
}

// ChildrenCount is always a fresh store count per the hierarchy contract.
func (s *Service) ChildrenCount(ctx context.Context, id uuid.UUID) (int, error) {
	n, err := s.bodies.CountByParent(ctx, id)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count children")
	}
	return n, nil
}

// Confirm flips the body's confirmed flag and applies request-side effects.
// Idempotent: confirming an already-confirmed body returns 0 and nil error,
// and never re-runs side effects.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (int, error) {
	b, err := s.getBody(ctx, id)
	if err != nil {
		return 0, err
	}
	if b.Confirmed {
		return 0, nil
	}
	b.Confirmed = true
	b.UpdatedAt = requestcontext.Now(ctx)
	if err := s.bodies.Save(ctx, b); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to confirm public body")
	}

	count, err := s.requests.ConfirmPending(ctx, id)
	if err != nil {
		// The flag is already persisted; side effects can be retried by the
		// request subsystem. Surface the partial failure.
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "public body confirmed but request side effects failed")
	}
	s.metrics.IncrementBodiesConfirmed()
	s.audit.Emit(ctx, audit.Event{
		Kind:      audit.EventPublicBodyConfirmed,
		SubjectID: id,
		At:        b.UpdatedAt,
		Details:   map[string]any{"confirmed_requests": count},
	})
	return count, nil
}

// Reparent moves a body under a new parent (nil for top level), rejecting
// moves that would create a cycle and recomputing the denormalized root and
// depth for the body and all its descendants.
func (s *Service) Reparent(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*models.PublicBody, error) {
	b, err := s.getBody(ctx, id)
	if err != nil {
		return nil, err
	}

	var parent *models.PublicBody
	if newParentID != nil {
		if *newParentID == id {
			return nil, dErrors.New(dErrors.CodeCycleDetected, "public body cannot be its own parent")
		}
		parent, err = s.getBody(ctx, *newParentID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return nil, dErrors.New(dErrors.CodeValidation, "new parent does not exist")
			}
			return nil, err
		}
		if err := s.ensureNoCycle(ctx, id, parent); err != nil {
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	b.ParentID = newParentID
	if parent == nil {
		b.RootID = nil
		b.Depth = 0
	} else {
		root := rootOf(parent)
		b.RootID = &root
		b.Depth = parent.Depth + 1
	}
	b.UpdatedAt = now
	if err := s.bodies.Save(ctx, b); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reparent public body")
	}

	if err := s.recomputeDescendants(ctx, b); err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, audit.Event{
		Kind:      audit.EventPublicBodyReparented,
		SubjectID: id,
		At:        now,
		Details:   map[string]any{"new_parent_id": newParentID},
	})
	return b, nil
}

// Record builds the stable serializable form of a body, including a live
// children count and the laws summary.
func (s *Service) Record(ctx context.Context, b *models.PublicBody) (*models.Record, error) {
	count, err := s.ChildrenCount(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	laws, err := s.statutes.FindStatutesByIDs(ctx, b.LawIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load body laws")
	}
	summaries := make([]models.LawSummary, 0, len(laws))
	for _, law := range laws {
		summaries = append(summaries, models.LawSummary{
			ID:          law.ID,
			Name:        law.Name,
			LetterStart: law.LetterStart,
			LetterEnd:   law.LetterEnd,
		})
	}
	return &models.Record{
		ID:             b.ID,
		Name:           b.Name,
		Slug:           b.Slug,
		Description:    b.Description,
		Classification: b.Classification,
		Email:          b.Email,
		URL:            b.URL,
		Contact:        b.Contact,
		Address:        b.Address,
		Domain:         b.Domain(),
		Depth:          b.Depth,
		Confirmed:      b.Confirmed,
		ChildrenCount:  count,
		Laws:           summaries,
	}, nil
}

// ensureNoCycle walks from the proposed parent toward the root. Meeting the
// moved body, or walking past the depth cap, rejects the move.
func (s *Service) ensureNoCycle(ctx context.Context, moved uuid.UUID, parent *models.PublicBody) error {
	current := parent
	for steps := 0; ; steps++ {
		if steps >= maxHierarchyDepth {
			return dErrors.New(dErrors.CodeCycleDetected, "hierarchy walk exceeded depth bound")
		}
		if current.ID == moved {
			return dErrors.New(dErrors.CodeCycleDetected, "reparenting would create a cycle")
		}
		if current.ParentID == nil {
			return nil
		}
		next, err := s.getBody(ctx, *current.ParentID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				// Dangling weak reference; the chain ends here.
				return nil
			}
			return err
		}
		current = next
	}
}

// recomputeDescendants refreshes root and depth below a moved body,
// breadth-first with the same depth cap as the cycle check.
func (s *Service) recomputeDescendants(ctx context.Context, moved *models.PublicBody) error {
	type frame struct {
		body  *models.PublicBody
		depth int
	}
	root := rootOf(moved)
	queue := []frame{{body: moved, depth: moved.Depth}}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if f.depth >= maxHierarchyDepth {
			return dErrors.New(dErrors.CodeCycleDetected, "hierarchy walk exceeded depth bound")
		}
		children, err := s.bodies.FindByParent(ctx, f.body.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to walk descendants")
		}
		for _, child := range children {
			child.RootID = &root
			child.Depth = f.depth + 1
			child.UpdatedAt = moved.UpdatedAt
			if err := s.bodies.Save(ctx, child); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update descendant")
			}
			queue = append(queue, frame{body: child, depth: child.Depth})
		}
	}
	return nil
}

func (s *Service) getBody(ctx context.Context, id uuid.UUID) (*models.PublicBody, error) {
	b, err := s.bodies.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "public body not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load public body")
	}
	return b, nil
}

// rootOf returns the hierarchy root id for a body: itself when it is a root,
// otherwise its cached root pointer.
func rootOf(b *models.PublicBody) uuid.UUID {
	if b.RootID != nil {
		return *b.RootID
	}
	return b.ID
}
