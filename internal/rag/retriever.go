// Package rag implements the question-answering pipeline: semantic
// retrieval over the chunk index, prompt composition with source
// citations, and the orchestration that ties retrieval, generation, and
// conversation persistence together.
package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/genai"

	"github.com/askdocs/askdocs/internal/store"
)

// SearchStore is the vector search surface the retriever needs.
type SearchStore interface {
	SearchChunks(ctx context.Context, query pgvector.Vector, limit int) ([]store.SearchResult, error)
}

// Retriever embeds a query and finds its nearest chunks across the whole
// corpus. No filtering by document or recency.
//
// Retriever is safe for concurrent use by multiple goroutines.
type Retriever struct {
	search   SearchStore
	embedder ai.Embedder
	topK     int
	logger   *slog.Logger
}

// NewRetriever creates a Retriever returning at most topK chunks per query.
func NewRetriever(search SearchStore, embedder ai.Embedder, topK int, logger *slog.Logger) (*Retriever, error) {
	if search == nil {
		return nil, fmt.Errorf("search store is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{search: search, embedder: embedder, topK: topK, logger: logger}, nil
}

// Retrieve returns the chunks most similar to the query, best match first.
// An empty corpus yields an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]store.SearchResult, error) {
	vec, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.search.SearchChunks(ctx, vec, r.topK)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}

	r.logger.Debug("retrieved chunks", "count", len(results), "top_k", r.topK)
	return results, nil
}

// embedQuery generates the query embedding at the schema's dimensionality.
func (r *Retriever) embedQuery(ctx context.Context, query string) (pgvector.Vector, error) {
	dim := store.VectorDimension
	resp, err := r.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   []*ai.Document{ai.DocumentFromText(query, nil)},
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return pgvector.Vector{}, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return pgvector.Vector{}, fmt.Errorf("empty embedding response")
	}
	if got := len(resp.Embeddings[0].Embedding); got != int(store.VectorDimension) {
		return pgvector.Vector{}, fmt.Errorf("embedding has %d dimensions, want %d", got, store.VectorDimension)
	}
	return pgvector.NewVector(resp.Embeddings[0].Embedding), nil
}
