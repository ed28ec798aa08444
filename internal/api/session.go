package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/askdocs/askdocs/internal/store"
)

// sessionStore is the persistence surface for session endpoints.
type sessionStore interface {
	CreateSession(ctx context.Context) (*store.Session, error)
	ListInteractions(ctx context.Context, sessionID uuid.UUID) ([]store.Interaction, error)
}

type sessionHandler struct {
	store  sessionStore
	logger *slog.Logger
}

// create handles POST /sessions. Sessions carry no client-supplied state,
// so the request body is ignored.
func (h *sessionHandler) create(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.CreateSession(r.Context())
	if err != nil {
		h.logger.Error("creating session", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "failed to create session", h.logger)
		return
	}

	WriteJSON(w, http.StatusCreated, session)
}

type historyResponse struct {
	SessionID    uuid.UUID           `json:"session_id"`
	Interactions []store.Interaction `json:"interactions"`
}

// history handles GET /sessions/{id}/history. Interactions are returned
// oldest first, each with its citations in retrieval order.
func (h *sessionHandler) history(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_session", "session id must be a UUID", h.logger)
		return
	}

	interactions, err := h.store.ListInteractions(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "session_not_found", "session not found", h.logger)
			return
		}
		h.logger.Error("listing interactions", "session_id", sessionID, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "failed to load history", h.logger)
		return
	}

	if interactions == nil {
		interactions = []store.Interaction{}
	}

	WriteJSON(w, http.StatusOK, historyResponse{
		SessionID:    sessionID,
		Interactions: interactions,
	})
}
