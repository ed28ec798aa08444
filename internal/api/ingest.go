package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/askdocs/askdocs/internal/store"
)

// ingestTimeout bounds one background ingestion run, including extraction,
// embedding and the insert transaction.
const ingestTimeout = 10 * time.Minute

// ingester runs the ingestion pipeline for one file.
type ingester interface {
	IngestFile(ctx context.Context, path string) (*store.Document, error)
}

// documentFinder looks up documents by name for the fast duplicate check.
type documentFinder interface {
	GetDocumentByName(ctx context.Context, name string) (*store.Document, error)
}

type ingestHandler struct {
	pipeline ingester
	docs     documentFinder
	logger   *slog.Logger
}

type ingestRequest struct {
	FilePath string `json:"file_path"`
}

// trigger handles POST /ingest. The file must exist on the server's
// filesystem. Returns 202 and runs the pipeline in a background goroutine
// detached from the request context, or 409 if a document with the same
// name is already ingested.
//
// The 409 check is advisory: the unique constraint on document names is
// what actually prevents a concurrent duplicate from landing.
func (h *ingestHandler) trigger(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", h.logger)
		return
	}
	if req.FilePath == "" {
		WriteError(w, http.StatusBadRequest, "file_path_required", "file_path is required", h.logger)
		return
	}

	info, err := os.Stat(req.FilePath)
	if err != nil || info.IsDir() {
		WriteError(w, http.StatusNotFound, "file_not_found", "file not found at "+req.FilePath, h.logger)
		return
	}

	name := filepath.Base(req.FilePath)
	if _, err := h.docs.GetDocumentByName(r.Context(), name); err == nil {
		WriteError(w, http.StatusConflict, "already_ingested", "document "+name+" is already ingested", h.logger)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("checking for existing document", "name", name, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "failed to check existing documents", h.logger)
		return
	}

	go h.runIngestion(req.FilePath, name)

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"message":   "document ingestion started",
		"file_path": req.FilePath,
		"name":      name,
	})
}

// runIngestion executes the pipeline with its own context so the work
// survives the originating request.
func (h *ingestHandler) runIngestion(path, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	doc, err := h.pipeline.IngestFile(ctx, path)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent ingest of the same file.
			h.logger.Warn("document already ingested", "name", name)
			return
		}
		h.logger.Error("background ingestion failed", "path", path, "error", err)
		return
	}

	h.logger.Info("document ingested",
		"name", doc.Name,
		"id", doc.ID,
		"chunks", doc.ChunkCount,
	)
}
