package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateSession starts a new conversation session.
func (s *Store) CreateSession(ctx context.Context) (*Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sessions DEFAULT VALUES
		 RETURNING id, created_at`,
	).Scan(&sess.ID, &sess.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Debug("created session", "id", sess.ID)
	return &sess, nil
}

// GetSession returns a session by ID.
// Returns ErrNotFound if the session does not exist.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, created_at FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	return &sess, nil
}

// RecordInteraction persists a question/answer exchange and its citations
// in one transaction. The interaction and its citations are never visible
// separately.
//
// Returns ErrNotFound if the session does not exist.
func (s *Store) RecordInteraction(ctx context.Context, sessionID uuid.UUID, question, answer string, citations []Citation) (*Interaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", rbErr)
		}
	}()

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT true FROM sessions WHERE id = $1`, sessionID,
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("checking session %s: %w", sessionID, err)
	}

	inter := Interaction{SessionID: sessionID, Question: question, Answer: answer, Citations: citations}
	err = tx.QueryRow(ctx,
		`INSERT INTO interactions (session_id, question, answer)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		sessionID, question, answer,
	).Scan(&inter.ID, &inter.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting interaction: %w", err)
	}

	for _, c := range citations {
		if _, err := tx.Exec(ctx,
			`INSERT INTO interaction_citations (interaction_id, chunk_id, similarity, rank)
			 VALUES ($1, $2, $3, $4)`,
			inter.ID, c.ChunkID, c.Similarity, c.Rank,
		); err != nil {
			return nil, fmt.Errorf("inserting citation for chunk %s: %w", c.ChunkID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing interaction: %w", err)
	}

	s.logger.Debug("recorded interaction",
		"id", inter.ID, "session_id", sessionID, "citations", len(citations))
	return &inter, nil
}

// ListInteractions returns a session's interactions oldest first, each with
// its citations in rank order.
//
// Returns ErrNotFound if the session does not exist. A session with no
// interactions yet returns an empty slice.
func (s *Store) ListInteractions(ctx context.Context, sessionID uuid.UUID) ([]Interaction, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, question, answer, created_at
		 FROM interactions
		 WHERE session_id = $1
		 ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing interactions: %w", err)
	}
	defer rows.Close()

	var interactions []Interaction
	for rows.Next() {
		var inter Interaction
		if err := rows.Scan(&inter.ID, &inter.SessionID, &inter.Question, &inter.Answer, &inter.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		interactions = append(interactions, inter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interactions: %w", err)
	}

	for i := range interactions {
		citations, err := s.listCitations(ctx, s.pool, interactions[i].ID)
		if err != nil {
			return nil, err
		}
		interactions[i].Citations = citations
	}
	return interactions, nil
}

// listCitations returns an interaction's citations in rank order. It
// accepts a querier so it can run inside a caller's transaction or
// directly against the pool.
func (s *Store) listCitations(ctx context.Context, q querier, interactionID uuid.UUID) ([]Citation, error) {
	rows, err := q.Query(ctx,
		`SELECT ic.chunk_id, d.name, ic.similarity, ic.rank
		 FROM interaction_citations ic
		 JOIN chunks c ON c.id = ic.chunk_id
		 JOIN documents d ON d.id = c.document_id
		 WHERE ic.interaction_id = $1
		 ORDER BY ic.rank ASC`, interactionID)
	if err != nil {
		return nil, fmt.Errorf("listing citations for interaction %s: %w", interactionID, err)
	}
	defer rows.Close()

	var citations []Citation
	for rows.Next() {
		var c Citation
		if err := rows.Scan(&c.ChunkID, &c.DocumentName, &c.Similarity, &c.Rank); err != nil {
			return nil, fmt.Errorf("scanning citation: %w", err)
		}
		citations = append(citations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating citations: %w", err)
	}
	return citations, nil
}

// GetInteractionCitations returns the citations recorded for one
// interaction, in rank order.
// Returns ErrNotFound if the interaction does not exist.
func (s *Store) GetInteractionCitations(ctx context.Context, interactionID uuid.UUID) ([]Citation, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT true FROM interactions WHERE id = $1`, interactionID,
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("interaction %s: %w", interactionID, ErrNotFound)
		}
		return nil, fmt.Errorf("getting interaction %s: %w", interactionID, err)
	}
	return s.listCitations(ctx, s.pool, interactionID)
}

// UpsertFeedback records a rating for an interaction, replacing any
// previous rating. Rating is a polarity: 1 thumbs up, -1 thumbs down. The
// unique constraint on feedback.interaction_id makes re-submission an
// update rather than a duplicate.
//
// Returns ErrNotFound if the interaction does not exist.
func (s *Store) UpsertFeedback(ctx context.Context, interactionID uuid.UUID, rating int, comment string) (*Feedback, error) {
	if rating != 1 && rating != -1 {
		return nil, fmt.Errorf("rating must be 1 or -1, got %d", rating)
	}

	var fb Feedback
	err := s.pool.QueryRow(ctx,
		`INSERT INTO feedback (interaction_id, rating, comment)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (interaction_id) DO UPDATE
		 SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = now()
		 RETURNING id, interaction_id, rating, comment, created_at, updated_at`,
		interactionID, rating, comment,
	).Scan(&fb.ID, &fb.InteractionID, &fb.Rating, &fb.Comment, &fb.CreatedAt, &fb.UpdatedAt)
	if err != nil {
		// FK violation means the interaction is gone, not a storage fault.
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("interaction %s: %w", interactionID, ErrNotFound)
		}
		return nil, fmt.Errorf("upserting feedback for interaction %s: %w", interactionID, err)
	}

	s.logger.Debug("recorded feedback", "interaction_id", interactionID, "rating", rating)
	return &fb, nil
}
