package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/askdocs/askdocs/internal/store"
)

// documentStore is the persistence surface for document management.
type documentStore interface {
	ListDocuments(ctx context.Context) ([]store.Document, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

type documentHandler struct {
	store  documentStore
	logger *slog.Logger
}

type documentListResponse struct {
	Documents []store.Document `json:"documents"`
}

// list handles GET /documents, newest first.
func (h *documentHandler) list(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.ListDocuments(r.Context())
	if err != nil {
		h.logger.Error("listing documents", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "failed to list documents", h.logger)
		return
	}

	if docs == nil {
		docs = []store.Document{}
	}

	WriteJSON(w, http.StatusOK, documentListResponse{Documents: docs})
}

// delete handles DELETE /documents/{id}. Chunks and their citations go
// with the document.
func (h *documentHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_document", "document id must be a UUID", h.logger)
		return
	}

	if err := h.store.DeleteDocument(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "document_not_found", "document not found", h.logger)
			return
		}
		h.logger.Error("deleting document", "id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "failed to delete document", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
