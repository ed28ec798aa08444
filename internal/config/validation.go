package config

import (
	"fmt"
	"os"
	"slices"
)

// Validate checks every field and returns the first sentinel error found,
// wrapped with context for errors.Is.
//
// The Gemini API key is deliberately not checked here: commands that only
// touch the database (documents list/delete, version) load config without
// one. Model-using commands gate on RequireAPIKey separately.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name is empty", ErrInvalidModelName)
	}
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: %.2f outside [0.0, 2.0]", ErrInvalidTemperature, c.Temperature)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model is empty", ErrInvalidEmbedderModel)
	}
	if c.TopK <= 0 || c.TopK > 50 {
		return fmt.Errorf("%w: %d outside [1, 50]", ErrInvalidTopK, c.TopK)
	}
	if c.ChunkMinChars < 0 {
		return fmt.Errorf("%w: %d is negative", ErrInvalidChunkMinChars, c.ChunkMinChars)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d outside [1, 65535]", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name is empty", ErrInvalidPostgresDBName)
	}

	// allow/prefer are rejected: both downgrade silently under a MITM.
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: %q, must be one of %v",
			ErrInvalidPostgresSSLMode, c.PostgresSSLMode, validSSLModes)
	}

	return nil
}

// RequireAPIKey fails when GEMINI_API_KEY is absent. Genkit reads the key
// from the environment directly, so this is a presence check only.
func RequireAPIKey() error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
			"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
			ErrMissingAPIKey)
	}
	return nil
}
