package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdocs/askdocs/internal/store"
)

type mockChunkStore struct {
	detail *store.ChunkDetail
	err    error
}

func (m *mockChunkStore) GetChunkDetail(_ context.Context, _ uuid.UUID) (*store.ChunkDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func TestCitationHandler_Get(t *testing.T) {
	chunkID := uuid.New()
	detail := &store.ChunkDetail{
		ID:           chunkID,
		DocumentID:   uuid.New(),
		DocumentName: "guide.pdf",
		Position:     4,
		Content:      "Kernels execute asynchronously with respect to the host.",
	}
	h := &citationHandler{store: &mockChunkStore{detail: detail}, logger: discardLogger()}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/citations/"+chunkID.String(), nil)
	r.SetPathValue("id", chunkID.String())
	h.get(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var got store.ChunkDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, chunkID, got.ID)
	assert.Equal(t, "guide.pdf", got.DocumentName)
	assert.Equal(t, 4, got.Position)
}

func TestCitationHandler_NotFound(t *testing.T) {
	h := &citationHandler{
		store:  &mockChunkStore{err: fmt.Errorf("chunk: %w", store.ErrNotFound)},
		logger: discardLogger(),
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/citations/x", nil)
	r.SetPathValue("id", uuid.New().String())
	h.get(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "chunk_not_found", decodeErrorEnvelope(t, w).Code)
}

func TestCitationHandler_BadID(t *testing.T) {
	h := &citationHandler{store: &mockChunkStore{}, logger: discardLogger()}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/citations/nope", nil)
	r.SetPathValue("id", "nope")
	h.get(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_chunk", decodeErrorEnvelope(t, w).Code)
}
