// Package handler exposes public-body management over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"foicore/internal/publicbody/models"
	"foicore/internal/transport/http/shared"
	dErrors "foicore/pkg/domainerrors"
)

// Service defines the public-body operations the handler delegates to.
type Service interface {
	Create(ctx context.Context, b *models.PublicBody) (*models.PublicBody, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PublicBody, error)
	Confirm(ctx context.Context, id uuid.UUID) (int, error)
	Reparent(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*models.PublicBody, error)
	Record(ctx context.Context, b *models.PublicBody) (*models.Record, error)
}

// Handler handles public-body endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a public-body Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public-body routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/public-bodies", h.handleCreate)
	r.Get("/public-bodies/{id}", h.handleGet)
	r.Post("/public-bodies/{id}/confirm", h.handleConfirm)
	r.Put("/public-bodies/{id}/parent", h.handleReparent)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var b models.PublicBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	created, err := h.service.Create(r.Context(), &b)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, err := h.service.Record(r.Context(), b)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build public body record",
			"public_body_id", id,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	count, err := h.service.Confirm(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]int{"confirmed_requests": count})
}

type reparentRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

func (h *Handler) handleReparent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req reparentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	b, err := h.service.Reparent(r.Context(), id, req.ParentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid public body id"))
		return uuid.Nil, false
	}
	return id, true
}
