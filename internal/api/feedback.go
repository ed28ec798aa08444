package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/askdocs/askdocs/internal/store"
)

// feedbackStore records ratings against interactions.
type feedbackStore interface {
	UpsertFeedback(ctx context.Context, interactionID uuid.UUID, rating int, comment string) (*store.Feedback, error)
}

type feedbackHandler struct {
	store  feedbackStore
	logger *slog.Logger
}

type feedbackRequest struct {
	InteractionID string `json:"interaction_id"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment,omitempty"`
}

// submit handles POST /feedback. Rating is a polarity: 1 or -1.
// Re-submitting for the same interaction replaces the previous rating.
func (h *feedbackHandler) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", h.logger)
		return
	}

	interactionID, err := uuid.Parse(req.InteractionID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_interaction", "interaction_id must be a UUID", h.logger)
		return
	}
	if req.Rating != 1 && req.Rating != -1 {
		WriteError(w, http.StatusBadRequest, "invalid_rating", "rating must be 1 or -1", h.logger)
		return
	}

	feedback, err := h.store.UpsertFeedback(r.Context(), interactionID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "interaction_not_found", "interaction not found", h.logger)
			return
		}
		h.logger.Error("recording feedback", "interaction_id", interactionID, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "failed to record feedback", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, feedback)
}
