// Package db owns the database schema. Migrations are embedded at build
// time and applied on startup before any pool is handed out.
package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx v5 driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies any pending schema migrations. golang-migrate tracks the
// applied set in schema_migrations, so re-running is a no-op.
//
// connURL must use the postgres:// or postgresql:// scheme.
func Migrate(connURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	dbURL, err := migrateURL(connURL)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer closeMigrator(m)

	if err := ensureClean(m); err != nil {
		return err
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Debug("schema up to date")
		return nil
	case err != nil:
		// A failed step leaves the dirty flag set; surface the version the
		// operator has to force past.
		if v, dirty, verr := m.Version(); verr == nil && dirty {
			slog.Error("migration failed, schema left dirty",
				"version", v,
				"hint", fmt.Sprintf("repair and run: migrate force %d", v))
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	if v, dirty, verr := m.Version(); verr == nil {
		slog.Info("migrations applied", "version", v, "dirty", dirty)
	}
	return nil
}

// ensureClean refuses to run on a schema a previous migration left dirty.
func ensureClean(m *migrate.Migrate) error {
	v, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema dirty at version %d, run: migrate force %d", v, v)
	}
	return nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		slog.Warn("closing migration source", "error", srcErr)
	}
	if dbErr != nil {
		slog.Warn("closing migration connection", "error", dbErr)
	}
}

// migrateURL rewrites the scheme to pgx5, which is how golang-migrate's
// pgx v5 driver registers itself.
func migrateURL(connURL string) (string, error) {
	u, err := url.Parse(connURL)
	if err != nil {
		return "", fmt.Errorf("parse database URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		u.Scheme = "pgx5"
		return u.String(), nil
	default:
		return "", fmt.Errorf("database URL scheme %q not supported", u.Scheme)
	}
}
