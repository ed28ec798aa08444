package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"google.golang.org/genai"
)

// geminiCompleter satisfies rag.Completer by calling the configured Gemini
// model through Genkit.
type geminiCompleter struct {
	genkit      *genkit.Genkit
	modelName   string
	temperature float32
	logger      *slog.Logger
}

// Complete runs one prompt through the model and returns the generated text.
func (c *geminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	response, err := genkit.Generate(ctx, c.genkit,
		ai.WithModelName("googleai/"+c.modelName),
		ai.WithPrompt(prompt),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature: genai.Ptr(c.temperature),
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generating completion: %w", err)
	}

	c.logger.Debug("completion generated", "model", c.modelName, "chars", len(response.Text()))
	return response.Text(), nil
}
