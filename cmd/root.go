// Package cmd contains the askdocs command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs/internal/config"
	"github.com/askdocs/askdocs/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "askdocs",
	Short: "askdocs - question answering over your own documentation",
	Long: `askdocs ingests text, markdown and PDF documentation into PostgreSQL
with pgvector embeddings and answers questions about it, citing the
passages each answer was built from.

Run "askdocs serve" to start the HTTP API, or "askdocs ingest <file>"
to index documents from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	logger := initLogger()
	slog.SetDefault(logger)

	rootCmd.AddCommand(
		newServeCmd(),
		newIngestCmd(),
		newDocumentsCmd(),
		newVersionCmd(),
	)
	return rootCmd.Execute()
}

// initLogger builds the process logger. DEBUG in the environment enables
// debug level; ASKDOCS_LOG_JSON switches to JSON output.
func initLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	if os.Getenv("ASKDOCS_LOG_JSON") != "" {
		cfg.JSON = true
	}
	return log.New(cfg)
}

// checkRequiredEnv verifies the Gemini API key is present before any
// command that talks to the model. Database-only commands (documents,
// version) skip it.
func checkRequiredEnv() error {
	if err := config.RequireAPIKey(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: GEMINI_API_KEY environment variable not set")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "askdocs requires a Gemini API key for embeddings and answers.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "To set your API key:")
		fmt.Fprintln(os.Stderr, "  export GEMINI_API_KEY=your-api-key")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Get your API key at: https://ai.google.dev/")

		return err
	}
	return nil
}
