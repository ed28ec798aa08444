package rag

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/askdocs/askdocs/internal/store"
)

// mockCompleter implements Completer with canned behavior.
type mockCompleter struct {
	response   string
	err        error
	lastPrompt string
	callCount  int
}

func (m *mockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	m.callCount++
	m.lastPrompt = prompt
	return m.response, m.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func resultsFrom(docs ...string) []store.SearchResult {
	results := make([]store.SearchResult, len(docs))
	for i, d := range docs {
		results[i] = store.SearchResult{
			ChunkID:      uuid.New(),
			Content:      "content from " + d,
			Similarity:   0.9 - float64(i)*0.05,
			DocumentName: d,
		}
	}
	return results
}

func TestComposer_Answer_EmptyResults(t *testing.T) {
	comp := &mockCompleter{response: "should not be called"}
	c, err := NewComposer(comp, 500, testLogger())
	if err != nil {
		t.Fatalf("NewComposer() = %v", err)
	}

	text, sources := c.Answer(context.Background(), "anything?", nil)
	if text != NoInformationResponse {
		t.Errorf("text = %q, want no-information response", text)
	}
	if sources != nil {
		t.Errorf("sources = %v, want nil", sources)
	}
	if comp.callCount != 0 {
		t.Error("model must not be consulted when retrieval is empty")
	}
}

func TestComposer_Answer_AttributionLine(t *testing.T) {
	tests := []struct {
		name string
		docs []string
		want string
	}{
		{"single source", []string{"A"}, "*Source: A*"},
		{"two sources", []string{"A", "B"}, "*Sources: A, B*"},
		{"three sources", []string{"B", "A", "C"}, "*Sources: A, B, C*"},
		{"four sources abbreviated", []string{"A", "B", "C", "D"}, "*Sources: A, B and 2 more*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := &mockCompleter{response: "the generated answer"}
			c, err := NewComposer(comp, 500, testLogger())
			if err != nil {
				t.Fatalf("NewComposer() = %v", err)
			}

			text, _ := c.Answer(context.Background(), "q", resultsFrom(tt.docs...))
			if !strings.HasSuffix(text, tt.want) {
				t.Errorf("text = %q, want suffix %q", text, tt.want)
			}
			if !strings.HasPrefix(text, "the generated answer") {
				t.Errorf("text should start with the model output, got %q", text)
			}
		})
	}
}

func TestComposer_Answer_DuplicateSourcesDeduplicated(t *testing.T) {
	comp := &mockCompleter{response: "answer"}
	c, err := NewComposer(comp, 500, testLogger())
	if err != nil {
		t.Fatalf("NewComposer() = %v", err)
	}

	text, sources := c.Answer(context.Background(), "q", resultsFrom("A", "A", "B", "A"))
	if len(sources) != 2 {
		t.Fatalf("sources = %v, want [A B]", sources)
	}
	if !strings.HasSuffix(text, "*Sources: A, B*") {
		t.Errorf("text = %q", text)
	}
}

func TestComposer_Answer_PromptShape(t *testing.T) {
	comp := &mockCompleter{response: "answer"}
	c, err := NewComposer(comp, 500, testLogger())
	if err != nil {
		t.Fatalf("NewComposer() = %v", err)
	}

	results := []store.SearchResult{
		{ChunkID: uuid.New(), Content: "first passage", Similarity: 0.912, DocumentName: "A"},
		{ChunkID: uuid.New(), Content: "second passage", Similarity: 0.871, DocumentName: "B"},
	}

	c.Answer(context.Background(), "how does it work?", results)

	for _, want := range []string{
		"[Context 1] (Relevance: 0.912)\nfirst passage",
		"[Context 2] (Relevance: 0.871)\nsecond passage",
		"USER QUESTION: how does it work?",
	} {
		if !strings.Contains(comp.lastPrompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, comp.lastPrompt)
		}
	}
}

func TestComposer_Answer_CompletionFailureFallsBack(t *testing.T) {
	comp := &mockCompleter{err: errors.New("quota exhausted")}
	c, err := NewComposer(comp, 500, testLogger())
	if err != nil {
		t.Fatalf("NewComposer() = %v", err)
	}

	text, sources := c.Answer(context.Background(), "q", resultsFrom("A", "B"))
	if text == "" {
		t.Fatal("fallback answer must be non-empty")
	}
	if !strings.Contains(text, "content from A") {
		t.Errorf("fallback should use the top-ranked chunk, got %q", text)
	}
	if !strings.Contains(text, "*Source: A*") {
		t.Errorf("fallback must carry a source attribution, got %q", text)
	}
	if len(sources) != 2 {
		t.Errorf("sources = %v", sources)
	}
}

func TestComposer_Answer_EmptyCompletionFallsBack(t *testing.T) {
	comp := &mockCompleter{response: "   \n"}
	c, err := NewComposer(comp, 500, testLogger())
	if err != nil {
		t.Fatalf("NewComposer() = %v", err)
	}

	text, _ := c.Answer(context.Background(), "q", resultsFrom("A"))
	if !strings.Contains(text, "*Source: A*") {
		t.Errorf("blank completion should degrade to fallback, got %q", text)
	}
}

func TestComposer_Answer_NilCompleter(t *testing.T) {
	c, err := NewComposer(nil, 500, testLogger())
	if err != nil {
		t.Fatalf("NewComposer() = %v", err)
	}

	text, _ := c.Answer(context.Background(), "q", resultsFrom("A"))
	if !strings.Contains(text, "content from A") || !strings.Contains(text, "*Source: A*") {
		t.Errorf("nil completer should yield fallback with attribution, got %q", text)
	}
}

func TestComposer_Fallback_Truncation(t *testing.T) {
	c, err := NewComposer(nil, 10, testLogger())
	if err != nil {
		t.Fatalf("NewComposer() = %v", err)
	}

	long := store.SearchResult{Content: strings.Repeat("x", 50), DocumentName: "A"}
	text, _ := c.Answer(context.Background(), "q", []store.SearchResult{long})
	if !strings.Contains(text, strings.Repeat("x", 10)+"...") {
		t.Errorf("long content should be truncated with ellipsis, got %q", text)
	}
	if strings.Contains(text, strings.Repeat("x", 11)) {
		t.Errorf("preview exceeds bound: %q", text)
	}

	short := store.SearchResult{Content: "short", DocumentName: "A"}
	text, _ = c.Answer(context.Background(), "q", []store.SearchResult{short})
	if strings.Contains(text, "short...") {
		t.Errorf("short content must not get an ellipsis, got %q", text)
	}
}
