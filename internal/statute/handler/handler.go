// Package handler exposes the statute service over HTTP. It stays thin:
// parse, delegate, translate errors.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"foicore/internal/statute/models"
	"foicore/internal/transport/http/shared"
	dErrors "foicore/pkg/domainerrors"
)

// Service defines the statute operations the handler delegates to.
type Service interface {
	CreateJurisdiction(ctx context.Context, name string, rank int) (*models.Jurisdiction, error)
	CreateStatute(ctx context.Context, st *models.Statute) (*models.Statute, error)
	GetStatute(ctx context.Context, id uuid.UUID) (*models.Statute, error)
	ListJurisdictions(ctx context.Context) ([]*models.Jurisdiction, error)
	DefaultStatute(ctx context.Context, jurisdictionID *uuid.UUID) (*models.Statute, error)
	RefusalReasonChoices(ctx context.Context, st *models.Statute) ([]models.RefusalChoice, error)
	DueDate(ctx context.Context, st *models.Statute, start *time.Time) (*time.Time, error)
}

// Handler handles statute and jurisdiction endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a statute Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the statute routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/jurisdictions", h.handleListJurisdictions)
	r.Post("/jurisdictions", h.handleCreateJurisdiction)
	r.Get("/jurisdictions/{id}/default-statute", h.handleDefaultStatute)
	r.Post("/statutes", h.handleCreateStatute)
	r.Get("/statutes/{id}", h.handleGetStatute)
	r.Get("/statutes/{id}/refusal-reasons", h.handleRefusalReasons)
	r.Get("/statutes/{id}/due-date", h.handleDueDate)
}

func (h *Handler) handleListJurisdictions(w http.ResponseWriter, r *http.Request) {
	js, err := h.service.ListJurisdictions(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list jurisdictions", "error", err.Error())
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"jurisdictions": js})
}

type createJurisdictionRequest struct {
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

func (h *Handler) handleCreateJurisdiction(w http.ResponseWriter, r *http.Request) {
	var req createJurisdictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	j, err := h.service.CreateJurisdiction(r.Context(), req.Name, req.Rank)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, j)
}

func (h *Handler) handleDefaultStatute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid jurisdiction id"))
		return
	}
	st, err := h.service.DefaultStatute(r.Context(), &id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) handleCreateStatute(w http.ResponseWriter, r *http.Request) {
	var st models.Statute
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	created, err := h.service.CreateStatute(r.Context(), &st)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetStatute(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadStatute(w, r)
	if !ok {
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) handleRefusalReasons(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadStatute(w, r)
	if !ok {
		return
	}
	choices, err := h.service.RefusalReasonChoices(r.Context(), st)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"choices": choices})
}

// handleDueDate computes the deadline from an optional RFC 3339 start
// parameter; without one, the request time is the start instant. A statute
// without a statutory deadline answers with an explicit null.
func (h *Handler) handleDueDate(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadStatute(w, r)
	if !ok {
		return
	}
	var start *time.Time
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "start must be RFC 3339"))
			return
		}
		start = &t
	}
	due, err := h.service.DueDate(r.Context(), st, start)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"due_date": due})
}

func (h *Handler) loadStatute(w http.ResponseWriter, r *http.Request) (*models.Statute, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid statute id"))
		return nil, false
	}
	st, err := h.service.GetStatute(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return nil, false
	}
	return st, true
}
