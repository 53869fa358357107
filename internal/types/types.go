package types

import (
	"context"

	"github.com/mkal/tourbot/internal/models"
)

// Embedder converts text into fixed-length vectors. Query and document
// embeddings must come from the same provider so that dimensionality matches
// what the vector store was created with.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Generator produces free text from a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer produces a short human-readable digest of a document.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// AnswerGenerator produces an answer grounded on retrieved chunks.
type AnswerGenerator interface {
	Answer(ctx context.Context, query string, docs []models.ScoredChunk) (string, error)
}

// VectorStore persists chunk records and supports top-k similarity search.
type VectorStore interface {
	Upsert(ctx context.Context, records []models.ChunkRecord) error
	Query(ctx context.Context, embedding []float32, limit int) ([]models.ScoredChunk, error)
	Close()
}

// AuditLog records one entry per successful ingestion, in order.
type AuditLog interface {
	Append(entry models.AuditEntry) error
	Entries() ([]models.AuditEntry, error)
}

// Extractor turns raw file bytes into plain text based on the file extension.
type Extractor interface {
	ExtractBytes(content []byte, ext string) (string, error)
}

// WebSearcher issues a live web search and returns the raw provider results.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}
