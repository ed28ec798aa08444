package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdocs/askdocs/internal/store"
)

type mockSessionStore struct {
	session      *store.Session
	interactions []store.Interaction
	err          error
}

func (m *mockSessionStore) CreateSession(context.Context) (*store.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockSessionStore) ListInteractions(_ context.Context, _ uuid.UUID) ([]store.Interaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.interactions, nil
}

func TestSessionHandler_Create(t *testing.T) {
	session := &store.Session{ID: uuid.New(), CreatedAt: time.Now().UTC()}
	h := &sessionHandler{store: &mockSessionStore{session: session}, logger: discardLogger()}

	w := httptest.NewRecorder()
	h.create(w, httptest.NewRequest(http.MethodPost, "/sessions", nil))

	require.Equal(t, http.StatusCreated, w.Code)

	var got store.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, session.ID, got.ID)
}

func TestSessionHandler_History(t *testing.T) {
	sessionID := uuid.New()
	interactions := []store.Interaction{
		{
			ID:        uuid.New(),
			SessionID: sessionID,
			Question:  "first question",
			Answer:    "first answer",
			Citations: []store.Citation{{ChunkID: uuid.New(), DocumentName: "a.pdf", Rank: 1}},
		},
		{
			ID:        uuid.New(),
			SessionID: sessionID,
			Question:  "second question",
			Answer:    "second answer",
		},
	}
	h := &sessionHandler{store: &mockSessionStore{interactions: interactions}, logger: discardLogger()}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/sessions/"+sessionID.String()+"/history", nil)
	r.SetPathValue("id", sessionID.String())
	h.history(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp historyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, sessionID, resp.SessionID)
	require.Len(t, resp.Interactions, 2)
	assert.Equal(t, "first question", resp.Interactions[0].Question)
	require.Len(t, resp.Interactions[0].Citations, 1)
	assert.Equal(t, "a.pdf", resp.Interactions[0].Citations[0].DocumentName)
}

func TestSessionHandler_History_Empty(t *testing.T) {
	h := &sessionHandler{store: &mockSessionStore{}, logger: discardLogger()}

	w := httptest.NewRecorder()
	sessionID := uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/sessions/"+sessionID.String()+"/history", nil)
	r.SetPathValue("id", sessionID.String())
	h.history(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, "[]", string(resp["interactions"]))
}

func TestSessionHandler_History_NotFound(t *testing.T) {
	h := &sessionHandler{
		store:  &mockSessionStore{err: fmt.Errorf("session: %w", store.ErrNotFound)},
		logger: discardLogger(),
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/sessions/x/history", nil)
	r.SetPathValue("id", uuid.New().String())
	h.history(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "session_not_found", decodeErrorEnvelope(t, w).Code)
}

func TestSessionHandler_History_BadID(t *testing.T) {
	h := &sessionHandler{store: &mockSessionStore{}, logger: discardLogger()}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/sessions/nope/history", nil)
	r.SetPathValue("id", "nope")
	h.history(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_session", decodeErrorEnvelope(t, w).Code)
}
