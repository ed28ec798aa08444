package api

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// decodeErrorEnvelope decodes the standard error envelope from a recorded
// response, failing the test on malformed bodies.
func decodeErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var envelope errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response body is not an error envelope: %v\nbody: %s", err, w.Body.String())
	}
	return envelope.Error
}
