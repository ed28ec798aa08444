package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs/internal/app"
	"github.com/askdocs/askdocs/internal/config"
	"github.com/askdocs/askdocs/internal/store"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest documentation files into the knowledge base",
		Long: `Ingest extracts text from the given files (.txt, .md or .pdf), splits it
into paragraph chunks, embeds each chunk and stores everything in
PostgreSQL. A file whose name is already ingested is skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runIngest(args)
		},
	}
}

func runIngest(paths []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := checkRequiredEnv(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	var failed int
	for _, path := range paths {
		doc, err := a.Pipeline.IngestFile(ctx, path)
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				fmt.Printf("skipped %s: already ingested\n", path)
				continue
			}
			logger.Error("ingesting file", "path", path, "error", err)
			failed++
			continue
		}
		fmt.Printf("ingested %s: %d chunks (document %s)\n", doc.Name, doc.ChunkCount, doc.ID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}
