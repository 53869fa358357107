package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// EmbedderConfig selects and configures the embedding provider. The provider
// and model must stay fixed for the lifetime of a vector store; every record
// in one store shares the dimensionality configured here.
type EmbedderConfig struct {
	Provider  string // "openai" (hosted) or "ollama" (local)
	Model     string
	BaseURL   string // Ollama server URL
	APIKey    string // OpenAI API key
	VectorDim int
}

// Embedder wraps an embedding provider behind a single interface so the
// hosted and local implementations are interchangeable for callers.
type Embedder struct {
	config EmbedderConfig
	impl   *embeddings.EmbedderImpl
}

func NewEmbedderWithConfig(config EmbedderConfig) (*Embedder, error) {
	if config.Provider == "" {
		config.Provider = "openai"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536
	}

	var client embeddings.EmbedderClient

	switch config.Provider {
	case "openai":
		if config.Model == "" {
			config.Model = "text-embedding-3-small"
		}
		llm, err := openai.New(
			openai.WithToken(config.APIKey),
			openai.WithEmbeddingModel(config.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedding client: %w", err)
		}
		client = llm
	case "ollama":
		if config.Model == "" {
			config.Model = "nomic-embed-text:latest"
		}
		llm, err := ollama.New(
			ollama.WithModel(config.Model),
			ollama.WithServerURL(config.BaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Ollama embedding client: %w", err)
		}
		client = llm
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", config.Provider)
	}

	impl, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	return &Embedder{
		config: config,
		impl:   impl,
	}, nil
}

// EmbedDocuments embeds a batch of chunk texts for storage.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string for retrieval.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return vector, nil
}

// Dimension returns the configured vector dimensionality.
func (e *Embedder) Dimension() int {
	return e.config.VectorDim
}
