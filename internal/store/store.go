// Package store persists documents, chunk embeddings, and conversation
// history in PostgreSQL with pgvector.
//
// The package exposes one Store over a pgxpool.Pool. Writes that span
// multiple tables (document + chunks, interaction + citations) run in a
// single transaction so partial state never becomes visible. Duplicate
// detection is delegated to unique constraints: the store inserts and maps
// SQLSTATE 23505 to ErrAlreadyExists instead of checking first, which
// stays correct under concurrent writers.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VectorDimension is the embedding dimensionality the chunks schema
// stores (vector(768)). Embedders must be configured to emit vectors of
// exactly this size; the ingest pipeline and retriever both assert it.
const VectorDimension int32 = 768

// querier is the common interface satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store manages all persistent state backed by PostgreSQL + pgvector.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store.
func New(pool *pgxpool.Pool, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}, nil
}
