package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when an insert collides with an existing
	// record, such as ingesting a document under a name already taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations (SQLSTATE 23505).
const uniqueViolation = "23505"

// foreignKeyViolation is the PostgreSQL error code for foreign key
// violations (SQLSTATE 23503).
const foreignKeyViolation = "23503"

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation. The constraint itself is the authority on duplicates; callers
// insert and translate the conflict rather than checking first.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign key
// violation, meaning a referenced row does not exist.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
