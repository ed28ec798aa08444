package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/askdocs/askdocs/internal/rag"
	"github.com/askdocs/askdocs/internal/store"
)

// maxQueryLength bounds the question size accepted by /chat.
const maxQueryLength = 8192

// asker is the orchestrator surface the chat handler needs.
type asker interface {
	Ask(ctx context.Context, query string, sessionID uuid.UUID) (*rag.Answer, error)
}

type chatHandler struct {
	orchestrator asker
	logger       *slog.Logger
}

type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Response      string           `json:"response"`
	Citations     []store.Citation `json:"citations"`
	SessionID     uuid.UUID        `json:"session_id"`
	InteractionID uuid.UUID        `json:"interaction_id"`
}

// answer handles POST /chat. An absent session_id starts a new session;
// a present one must name an existing session (404 otherwise).
func (h *chatHandler) answer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", h.logger)
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		WriteError(w, http.StatusBadRequest, "query_required", "query is required", h.logger)
		return
	}
	if len(query) > maxQueryLength {
		WriteError(w, http.StatusRequestEntityTooLarge, "query_too_long", "query exceeds maximum length", h.logger)
		return
	}

	sessionID := uuid.Nil
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_session", "session_id must be a UUID", h.logger)
			return
		}
		sessionID = id
	}

	answer, err := h.orchestrator.Ask(r.Context(), query, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "session_not_found", "session not found", h.logger)
			return
		}
		h.logger.Error("answering question", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "failed to answer question", h.logger)
		return
	}

	citations := answer.Citations
	if citations == nil {
		citations = []store.Citation{}
	}

	WriteJSON(w, http.StatusOK, chatResponse{
		Response:      answer.Text,
		Citations:     citations,
		SessionID:     answer.SessionID,
		InteractionID: answer.InteractionID,
	})
}
