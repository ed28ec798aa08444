package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdocs/askdocs/internal/rag"
	"github.com/askdocs/askdocs/internal/store"
)

type mockAsker struct {
	answer    *rag.Answer
	err       error
	gotQuery  string
	gotSessID uuid.UUID
	calls     int
}

func (m *mockAsker) Ask(_ context.Context, query string, sessionID uuid.UUID) (*rag.Answer, error) {
	m.calls++
	m.gotQuery = query
	m.gotSessID = sessionID
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func newChatRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(raw))
}

func TestChatHandler_Answer(t *testing.T) {
	sessionID := uuid.New()
	interactionID := uuid.New()
	chunkID := uuid.New()

	asker := &mockAsker{answer: &rag.Answer{
		Text:          "CUDA kernels launch asynchronously.\n\n*Source: guide.pdf*",
		SessionID:     sessionID,
		InteractionID: interactionID,
		Citations: []store.Citation{
			{ChunkID: chunkID, DocumentName: "guide.pdf", Similarity: 0.91, Rank: 1},
		},
	}}
	h := &chatHandler{orchestrator: asker, logger: discardLogger()}

	w := httptest.NewRecorder()
	h.answer(w, newChatRequest(t, map[string]string{
		"query":      "How do kernels launch?",
		"session_id": sessionID.String(),
	}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, sessionID, resp.SessionID)
	assert.Equal(t, interactionID, resp.InteractionID)
	require.Len(t, resp.Citations, 1)
	assert.Equal(t, chunkID, resp.Citations[0].ChunkID)
	assert.Equal(t, 1, resp.Citations[0].Rank)

	assert.Equal(t, "How do kernels launch?", asker.gotQuery)
	assert.Equal(t, sessionID, asker.gotSessID)
}

func TestChatHandler_OmittedSessionStartsNew(t *testing.T) {
	asker := &mockAsker{answer: &rag.Answer{
		Text:      "answer",
		SessionID: uuid.New(),
	}}
	h := &chatHandler{orchestrator: asker, logger: discardLogger()}

	w := httptest.NewRecorder()
	h.answer(w, newChatRequest(t, map[string]string{"query": "hello"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uuid.Nil, asker.gotSessID)

	// Nil citations serialize as an empty array, not null.
	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, "[]", string(resp["citations"]))
}

func TestChatHandler_SessionNotFound(t *testing.T) {
	asker := &mockAsker{err: fmt.Errorf("session %s: %w", uuid.New(), store.ErrNotFound)}
	h := &chatHandler{orchestrator: asker, logger: discardLogger()}

	w := httptest.NewRecorder()
	h.answer(w, newChatRequest(t, map[string]string{
		"query":      "hello",
		"session_id": uuid.New().String(),
	}))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "session_not_found", decodeErrorEnvelope(t, w).Code)
}

func TestChatHandler_StoreFailure(t *testing.T) {
	asker := &mockAsker{err: fmt.Errorf("recording interaction: connection refused")}
	h := &chatHandler{orchestrator: asker, logger: discardLogger()}

	w := httptest.NewRecorder()
	h.answer(w, newChatRequest(t, map[string]string{"query": "hello"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", decodeErrorEnvelope(t, w).Code)
}

func TestChatHandler_Validation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantHTTP int
	}{
		{"malformed json", "{bad", "invalid_json", http.StatusBadRequest},
		{"empty query", `{"query": ""}`, "query_required", http.StatusBadRequest},
		{"whitespace query", `{"query": "   "}`, "query_required", http.StatusBadRequest},
		{"bad session id", `{"query": "q", "session_id": "not-a-uuid"}`, "invalid_session", http.StatusBadRequest},
		{
			"oversized query",
			fmt.Sprintf(`{"query": %q}`, strings.Repeat("a", maxQueryLength+1)),
			"query_too_long",
			http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asker := &mockAsker{}
			h := &chatHandler{orchestrator: asker, logger: discardLogger()}

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body))
			h.answer(w, r)

			assert.Equal(t, tt.wantHTTP, w.Code)
			assert.Equal(t, tt.wantCode, decodeErrorEnvelope(t, w).Code)
			assert.Zero(t, asker.calls, "orchestrator must not run on invalid input")
		})
	}
}
