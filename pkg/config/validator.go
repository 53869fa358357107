package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 16384 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 16384",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.Embedding.Provider != "openai" && c.Embedding.Provider != "ollama" {
		errors = append(errors, ValidationError{
			Field:   "embedding.provider",
			Message: fmt.Sprintf("unknown embedding provider: %s", c.Embedding.Provider),
		})
	}

	if _, err := url.Parse(c.Embedding.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "embedding.base_url",
			Message: "invalid Ollama base URL",
		})
	}

	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Ingest.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "ingest.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "ingest.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	if c.Answer.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "answer.top_k",
			Message: "top_k must be positive",
		})
	}

	if c.Search.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "search.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	return errors
}

// Validate checks that every required provider secret is present. The process
// must refuse to start without them rather than failing on the first call.
func (c Credentials) Validate(embeddingProvider string) []ValidationError {
	var errors []ValidationError

	if c.OpenAIKey == "" {
		msg := "required for the answer LLM"
		if embeddingProvider == "openai" {
			msg = "required for the answer LLM and the hosted embedding provider"
		}
		errors = append(errors, ValidationError{
			Field:   "OPENAI_API_KEY",
			Message: msg,
		})
	}
	if c.GeminiKey == "" {
		errors = append(errors, ValidationError{
			Field:   "GEMINI_API_KEY",
			Message: "required for the summarizer and online lookup",
		})
	}
	if c.SerpAPIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "SERPAPI_API_KEY",
			Message: "required for the online fallback search",
		})
	}
	if c.DatabaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "DATABASE_URL",
			Message: "required for the vector store",
		})
	}

	return errors
}
