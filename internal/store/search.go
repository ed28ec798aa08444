package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// searchTimeout bounds vector search queries so a slow index scan cannot
// stall a chat request indefinitely.
const searchTimeout = 10 * time.Second

// SearchChunks returns the limit chunks closest to the query embedding by
// cosine distance, best match first. Similarity is 1 - cosine distance, so
// identical vectors score 1.0.
//
// An empty result is not an error; callers decide how to answer when the
// corpus has nothing relevant.
func (s *Store) SearchChunks(ctx context.Context, query pgvector.Vector, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	rows, err := s.pool.Query(queryCtx,
		`SELECT c.id, c.content, 1 - (c.embedding <=> $1) AS similarity, d.name
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 ORDER BY c.embedding <=> $1
		 LIMIT $2`,
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ChunkID, &r.Content, &r.Similarity, &r.DocumentName); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	s.logger.Debug("vector search", "results", len(results), "limit", limit)
	return results, nil
}
