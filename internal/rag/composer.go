package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/askdocs/askdocs/internal/store"
)

// Completer generates text from a prompt. Implemented in internal/app over
// the configured model; nil means no model is configured and every answer
// takes the fallback path.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Composer turns retrieved chunks and a question into an answer. A
// completion failure never escapes: the composer degrades to a
// deterministic preview of the best chunk instead.
type Composer struct {
	completer    Completer
	previewChars int
	logger       *slog.Logger
}

// NewComposer creates a Composer. completer may be nil, in which case all
// answers are built from the fallback path. previewChars bounds the chunk
// preview used in fallback answers.
func NewComposer(completer Completer, previewChars int, logger *slog.Logger) (*Composer, error) {
	if previewChars <= 0 {
		return nil, fmt.Errorf("previewChars must be positive, got %d", previewChars)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{completer: completer, previewChars: previewChars, logger: logger}, nil
}

// Answer produces the answer text and the deduplicated, sorted source
// document names for the given retrieval results.
//
// Empty results yield the fixed no-information response without touching
// the model. A nil completer, a completion error, or an empty completion
// all yield the fallback answer built from the top-ranked chunk. Answer
// never returns a failure to its caller.
func (c *Composer) Answer(ctx context.Context, query string, results []store.SearchResult) (string, []string) {
	if len(results) == 0 {
		return NoInformationResponse, nil
	}

	sources := sourceNames(results)

	if c.completer == nil {
		return c.fallback(results[0]), sources
	}

	prompt := c.buildPrompt(query, results)

	text, err := c.completer.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		c.logger.Warn("completion failed, degrading to fallback answer", "error", err)
		return c.fallback(results[0]), sources
	}

	return text + attributionLine(sources), sources
}

// buildPrompt concatenates numbered context blocks with their similarity
// scores, then the instruction template and the question.
func (c *Composer) buildPrompt(query string, results []store.SearchResult) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "[Context %d] (Relevance: %.3f)\n%s\n\n", i+1, r.Similarity, r.Content)
	}
	return fmt.Sprintf(promptTemplate, strings.TrimRight(sb.String(), "\n"), query)
}

// fallback builds the degraded answer from a single chunk: a bounded
// preview of its content annotated with its source document.
func (c *Composer) fallback(top store.SearchResult) string {
	content := top.Content
	if runes := []rune(content); len(runes) > c.previewChars {
		content = string(runes[:c.previewChars]) + "..."
	}
	return fallbackPrefix + content + fmt.Sprintf("\n\n*Source: %s*", top.DocumentName)
}

// sourceNames returns the unique document names across the results,
// sorted lexicographically.
func sourceNames(results []store.SearchResult) []string {
	seen := make(map[string]struct{}, len(results))
	var names []string
	for _, r := range results {
		if _, ok := seen[r.DocumentName]; ok {
			continue
		}
		seen[r.DocumentName] = struct{}{}
		names = append(names, r.DocumentName)
	}
	sort.Strings(names)
	return names
}

// attributionLine renders the source annotation appended to generated
// answers: one name inline, two or three comma-separated, more than three
// abbreviated to the first two plus a count.
func attributionLine(names []string) string {
	switch {
	case len(names) == 0:
		return ""
	case len(names) == 1:
		return fmt.Sprintf("\n\n*Source: %s*", names[0])
	case len(names) <= 3:
		return fmt.Sprintf("\n\n*Sources: %s*", strings.Join(names, ", "))
	default:
		return fmt.Sprintf("\n\n*Sources: %s and %d more*",
			strings.Join(names[:2], ", "), len(names)-2)
	}
}
