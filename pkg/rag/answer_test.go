package rag_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mkal/tourbot/internal/models"
	"github.com/mkal/tourbot/pkg/rag"
)

type fakeEmbedder struct {
	dim int
	err error
}

func (e *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dim)
	}
	return out, e.err
}

func (e *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return make([]float32, e.dim), nil
}

func (e *fakeEmbedder) Dimension() int { return e.dim }

type fakeStore struct {
	docs []models.ScoredChunk
	err  error
}

func (s *fakeStore) Upsert(_ context.Context, _ []models.ChunkRecord) error { return nil }

func (s *fakeStore) Query(_ context.Context, _ []float32, _ int) ([]models.ScoredChunk, error) {
	return s.docs, s.err
}

func (s *fakeStore) Close() {}

type fakeEngine struct {
	out string
	err error
}

func (e *fakeEngine) Answer(_ context.Context, _ string, _ []models.ScoredChunk) (string, error) {
	return e.out, e.err
}

func chunk(content string) models.ScoredChunk {
	return models.ScoredChunk{
		ChunkRecord: models.ChunkRecord{Source: "tour.txt", Content: content},
		Score:       0.9,
	}
}

func TestAnswerSuccess(t *testing.T) {
	p := rag.New(rag.Config{
		Embedder: &fakeEmbedder{dim: 8},
		Store:    &fakeStore{docs: []models.ScoredChunk{chunk("Coldboy plays City Arena on 2024-05-01")}},
		Engine:   &fakeEngine{out: "The Coldboy concert is on 2024-05-01 at City Arena."},
		Logger:   zap.NewNop(),
	})

	answer := p.Answer(context.Background(), "when is the Coldboy concert?")
	assert.Contains(t, answer, "2024-05-01")
}

func TestAnswerEmptyStoreReturnsSentinel(t *testing.T) {
	p := rag.New(rag.Config{
		Embedder: &fakeEmbedder{dim: 8},
		Store:    &fakeStore{},
		Engine:   &fakeEngine{out: "should not be reached"},
		Logger:   zap.NewNop(),
	})

	assert.Empty(t, p.Answer(context.Background(), "when is the Coldboy concert?"))
}

func TestAnswerGenerationFailureReturnsSentinel(t *testing.T) {
	p := rag.New(rag.Config{
		Embedder: &fakeEmbedder{dim: 8},
		Store:    &fakeStore{docs: []models.ScoredChunk{chunk("some context")}},
		Engine:   &fakeEngine{err: errors.New("model unavailable")},
		Logger:   zap.NewNop(),
	})

	assert.Empty(t, p.Answer(context.Background(), "any question"))
}

func TestAnswerEmbeddingFailureReturnsSentinel(t *testing.T) {
	p := rag.New(rag.Config{
		Embedder: &fakeEmbedder{dim: 8, err: errors.New("provider down")},
		Store:    &fakeStore{docs: []models.ScoredChunk{chunk("some context")}},
		Engine:   &fakeEngine{out: "never"},
		Logger:   zap.NewNop(),
	})

	assert.Empty(t, p.Answer(context.Background(), "any question"))
}

func TestAnswerWhitespaceResultIsSentinel(t *testing.T) {
	p := rag.New(rag.Config{
		Embedder: &fakeEmbedder{dim: 8},
		Store:    &fakeStore{docs: []models.ScoredChunk{chunk("some context")}},
		Engine:   &fakeEngine{out: "   \n  "},
		Logger:   zap.NewNop(),
	})

	assert.Empty(t, p.Answer(context.Background(), "any question"))
}
