package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/askdocs/askdocs/internal/store"
)

// chunkStore resolves citations back to their source chunks.
type chunkStore interface {
	GetChunkDetail(ctx context.Context, id uuid.UUID) (*store.ChunkDetail, error)
}

type citationHandler struct {
	store  chunkStore
	logger *slog.Logger
}

// get handles GET /citations/{id}, returning the cited chunk's text and
// document provenance.
func (h *citationHandler) get(w http.ResponseWriter, r *http.Request) {
	chunkID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_chunk", "chunk id must be a UUID", h.logger)
		return
	}

	detail, err := h.store.GetChunkDetail(r.Context(), chunkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "chunk_not_found", "chunk not found", h.logger)
			return
		}
		h.logger.Error("getting chunk detail", "chunk_id", chunkID, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "failed to load citation", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, detail)
}
