package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/genai"

	"github.com/askdocs/askdocs/internal/store"
)

// ErrNoContent is returned when a document yields no chunks after
// extraction and filtering, such as an empty file or a scanned PDF
// without a text layer.
var ErrNoContent = errors.New("document has no usable content")

// EmbedTimeout bounds the batch embedding call for one document.
const EmbedTimeout = 60 * time.Second

// DocumentStore is the persistence surface the pipeline needs.
type DocumentStore interface {
	CreateDocumentWithChunks(ctx context.Context, name, sourcePath string, chunks []store.NewChunk) (*store.Document, error)
}

// Pipeline ingests source files: extract text, chunk into paragraphs,
// embed all chunks in one batch, and persist document plus chunks in a
// single transaction.
//
// Pipeline is safe for concurrent use by multiple goroutines.
type Pipeline struct {
	docs     DocumentStore
	embedder ai.Embedder
	minChars int
	logger   *slog.Logger
}

// NewPipeline creates a Pipeline. minChars is the paragraph length
// threshold below which chunks are discarded.
func NewPipeline(docs DocumentStore, embedder ai.Embedder, minChars int, logger *slog.Logger) (*Pipeline, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{docs: docs, embedder: embedder, minChars: minChars, logger: logger}, nil
}

// IngestFile ingests one document file under its base name.
//
// Returns ErrNoContent if nothing chunkable was extracted, and
// store.ErrAlreadyExists if a document with the same name was already
// ingested. On any failure no partial document is persisted.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*store.Document, error) {
	name := filepath.Base(path)

	text, err := ExtractText(path)
	if err != nil {
		return nil, fmt.Errorf("extracting %q: %w", name, err)
	}

	chunks := SplitParagraphs(text, p.minChars)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%q: %w", name, ErrNoContent)
	}

	embedCtx, cancel := context.WithTimeout(ctx, EmbedTimeout)
	defer cancel()

	vectors, err := p.embedBatch(embedCtx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embedding %q: %w", name, err)
	}

	newChunks := make([]store.NewChunk, len(chunks))
	for i := range chunks {
		newChunks[i] = store.NewChunk{Content: chunks[i], Embedding: vectors[i]}
	}

	doc, err := p.docs.CreateDocumentWithChunks(ctx, name, path, newChunks)
	if err != nil {
		return nil, err
	}

	p.logger.Info("ingested document", "name", name, "chunks", len(chunks))
	return doc, nil
}

// embedBatch embeds all chunks in one request and validates that every
// returned vector matches the schema dimensionality.
func (p *Pipeline) embedBatch(ctx context.Context, chunks []string) ([]pgvector.Vector, error) {
	input := make([]*ai.Document, len(chunks))
	for i, c := range chunks {
		input[i] = ai.DocumentFromText(c, nil)
	}

	dim := store.VectorDimension
	resp, err := p.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   input,
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding batch of %d chunks: %w", len(chunks), err)
	}
	if len(resp.Embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(resp.Embeddings), len(chunks))
	}

	vectors := make([]pgvector.Vector, len(chunks))
	for i, emb := range resp.Embeddings {
		if len(emb.Embedding) != int(store.VectorDimension) {
			return nil, fmt.Errorf("chunk %d: embedding has %d dimensions, want %d",
				i, len(emb.Embedding), store.VectorDimension)
		}
		vectors[i] = pgvector.NewVector(emb.Embedding)
	}
	return vectors, nil
}
