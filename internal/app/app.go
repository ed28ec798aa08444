// Package app provides application initialization and wiring.
//
// Setup builds the full component graph in dependency order: tracing,
// database pool (with migrations), Genkit, the ingestion pipeline and the
// answer orchestrator. Entry points in cmd/ consume the resulting App.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askdocs/askdocs/internal/config"
	"github.com/askdocs/askdocs/internal/ingest"
	"github.com/askdocs/askdocs/internal/rag"
	"github.com/askdocs/askdocs/internal/store"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	// Core services
	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	Pool     *pgxpool.Pool
	Store    *store.Store

	// Domain components
	Pipeline     *ingest.Pipeline
	Orchestrator *rag.Orchestrator

	otelCleanup func()
}

// Close gracefully releases all resources.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")

	if a.Pool != nil {
		a.Pool.Close()
		a.Logger.Info("database pool closed")
	}

	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}
