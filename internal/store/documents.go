package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// NewChunk is the input for one chunk of a document being ingested.
// Metadata is optional free-form provenance (section, page).
type NewChunk struct {
	Content   string
	Embedding pgvector.Vector
	Metadata  map[string]string
}

// CreateDocumentWithChunks persists a document and all of its chunks in a
// single transaction. Either the document and every chunk land together,
// or nothing does.
//
// Returns ErrAlreadyExists if a document with the same name exists. The
// unique constraint on documents.name is the sole duplicate check, so
// concurrent ingests of the same name cannot both succeed.
func (s *Store) CreateDocumentWithChunks(ctx context.Context, name, sourceURL string, chunks []NewChunk) (*Document, error) {
	if name == "" {
		return nil, fmt.Errorf("document name is required")
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %q has no chunks", name)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", rbErr)
		}
	}()

	var doc Document
	err = tx.QueryRow(ctx,
		`INSERT INTO documents (name, source_url, chunk_count)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, version, source_url, chunk_count, created_at`,
		name, sourceURL, len(chunks),
	).Scan(&doc.ID, &doc.Name, &doc.Version, &doc.SourceURL, &doc.ChunkCount, &doc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("document %q: %w", name, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("inserting document %q: %w", name, err)
	}

	for i, chunk := range chunks {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chunks (document_id, position, content, embedding, metadata)
			 VALUES ($1, $2, $3, $4, $5)`,
			doc.ID, i, chunk.Content, chunk.Embedding, chunk.Metadata,
		); err != nil {
			return nil, fmt.Errorf("inserting chunk %d of %q: %w", i, name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing document %q: %w", name, err)
	}

	s.logger.Debug("created document", "id", doc.ID, "name", name, "chunks", len(chunks))
	return &doc, nil
}

// GetDocument returns a document by ID.
// Returns ErrNotFound if the document does not exist.
func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	var doc Document
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, version, source_url, chunk_count, created_at
		 FROM documents WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.Name, &doc.Version, &doc.SourceURL, &doc.ChunkCount, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}
	return &doc, nil
}

// GetDocumentByName returns a document by its unique name.
// Returns ErrNotFound if no document has that name.
func (s *Store) GetDocumentByName(ctx context.Context, name string) (*Document, error) {
	var doc Document
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, version, source_url, chunk_count, created_at
		 FROM documents WHERE name = $1`, name,
	).Scan(&doc.ID, &doc.Name, &doc.Version, &doc.SourceURL, &doc.ChunkCount, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("document %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("getting document %q: %w", name, err)
	}
	return &doc, nil
}

// ListDocuments returns all documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, version, source_url, chunk_count, created_at
		 FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Version, &doc.SourceURL, &doc.ChunkCount, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document and, via ON DELETE CASCADE, all of its
// chunks and their citations.
// Returns ErrNotFound if the document does not exist.
func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}

	s.logger.Debug("deleted document", "id", id)
	return nil
}

// GetChunkDetail returns a single chunk with its document provenance.
// Returns ErrNotFound if the chunk does not exist.
func (s *Store) GetChunkDetail(ctx context.Context, id uuid.UUID) (*ChunkDetail, error) {
	var detail ChunkDetail
	err := s.pool.QueryRow(ctx,
		`SELECT c.id, c.document_id, d.name, d.source_url, c.position, c.content,
		        COALESCE(c.metadata, '{}'::jsonb), c.created_at
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE c.id = $1`, id,
	).Scan(&detail.ID, &detail.DocumentID, &detail.DocumentName, &detail.SourceURL,
		&detail.Position, &detail.Content, &detail.Metadata, &detail.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("chunk %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting chunk %s: %w", id, err)
	}
	return &detail, nil
}
