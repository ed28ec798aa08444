package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Document is an ingested source document. Chunks belong to exactly one
// document and are deleted with it.
type Document struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Version    string    `json:"version,omitempty"`
	SourceURL  string    `json:"source_url,omitempty"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Chunk is a contiguous span of document text together with its embedding.
// Position is the zero-based order of the chunk within its document.
type Chunk struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Position   int
	Content    string
	Embedding  pgvector.Vector
	Metadata   map[string]string
	CreatedAt  time.Time
}

// Session groups a sequence of question/answer interactions. Sessions are
// immutable once created.
type Session struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Interaction is one question/answer exchange within a session.
type Interaction struct {
	ID        uuid.UUID  `json:"id"`
	SessionID uuid.UUID  `json:"session_id"`
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	CreatedAt time.Time  `json:"created_at"`
}

// Citation records one chunk consulted while answering, with the
// similarity observed at answer time. Rank is the retrieval order,
// starting at 1 for the closest chunk.
type Citation struct {
	ChunkID      uuid.UUID `json:"chunk_id"`
	DocumentName string    `json:"document_name"`
	Similarity   float64   `json:"similarity"`
	Rank         int       `json:"rank"`
}

// Feedback is a user rating of an interaction's answer. Rating is a
// polarity: 1 for thumbs up, -1 for thumbs down. At most one feedback row
// exists per interaction; re-submitting replaces it.
type Feedback struct {
	ID            uuid.UUID `json:"id"`
	InteractionID uuid.UUID `json:"interaction_id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SearchResult is one retrieved chunk with its cosine similarity to the
// query and the name of the document it came from.
type SearchResult struct {
	ChunkID      uuid.UUID
	Content      string
	Similarity   float64
	DocumentName string
}

// ChunkDetail is the full provenance view of a single chunk, used when a
// caller follows a citation back to its source text.
type ChunkDetail struct {
	ID           uuid.UUID         `json:"id"`
	DocumentID   uuid.UUID         `json:"document_id"`
	DocumentName string            `json:"document_name"`
	SourceURL    string            `json:"source_url,omitempty"`
	Position     int               `json:"position"`
	Content      string            `json:"content"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}
