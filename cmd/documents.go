package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs/db"
	"github.com/askdocs/askdocs/internal/config"
	"github.com/askdocs/askdocs/internal/store"
)

func newDocumentsCmd() *cobra.Command {
	documentsCmd := &cobra.Command{
		Use:   "documents",
		Short: "Manage ingested documents",
	}

	documentsCmd.AddCommand(newDocumentsListCmd())
	documentsCmd.AddCommand(newDocumentsDeleteCmd())

	return documentsCmd
}

func newDocumentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), runDocumentsList)
		},
	}
}

func newDocumentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document and all of its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
				return runDocumentsDelete(ctx, st, args[0])
			})
		},
	}
}

// withStore connects to the database for document management commands.
// These run without Genkit, so no API key is needed.
func withStore(ctx context.Context, fn func(context.Context, *store.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	st, err := store.New(pool, slog.Default())
	if err != nil {
		return err
	}

	return fn(ctx, st)
}

func runDocumentsList(ctx context.Context, st *store.Store) error {
	docs, err := st.ListDocuments(ctx)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("No documents ingested.")
		return nil
	}

	fmt.Printf("%-36s  %-30s  %6s  %s\n", "ID", "NAME", "CHUNKS", "CREATED")
	for _, doc := range docs {
		fmt.Printf("%-36s  %-30s  %6d  %s\n",
			doc.ID, doc.Name, doc.ChunkCount, doc.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func runDocumentsDelete(ctx context.Context, st *store.Store, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", rawID, err)
	}

	if err := st.DeleteDocument(ctx, id); err != nil {
		return err
	}

	fmt.Printf("deleted document %s\n", id)
	return nil
}
