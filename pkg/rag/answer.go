// Package rag implements the retrieval-augmented answer pipeline: embed the
// query, retrieve the most similar stored chunks, and generate a grounded
// answer. Any failure inside the pipeline degrades to the local-miss sentinel
// so the caller can fall through to the online search.
package rag

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mkal/tourbot/internal/types"
)

type Config struct {
	Embedder types.Embedder
	Store    types.VectorStore
	Engine   types.AnswerGenerator
	TopK     int
	Logger   *zap.Logger
}

type Pipeline struct {
	embedder types.Embedder
	store    types.VectorStore
	engine   types.AnswerGenerator
	topK     int
	logger   *zap.Logger
}

func New(cfg Config) *Pipeline {
	if cfg.TopK == 0 {
		cfg.TopK = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		embedder: cfg.Embedder,
		store:    cfg.Store,
		engine:   cfg.Engine,
		topK:     cfg.TopK,
		logger:   logger,
	}
}

// Answer returns a grounded answer for the query, or the empty string when
// the local knowledge base cannot answer it. Errors never propagate out of
// the pipeline; they are logged and collapse into the sentinel, leaving the
// fallback decision to the caller. No retries are attempted.
func (p *Pipeline) Answer(ctx context.Context, query string) string {
	embedding, err := p.embedder.EmbedQuery(ctx, query)
	if err != nil {
		p.logger.Error("query embedding failed",
			zap.String("query", query),
			zap.Error(err))
		return ""
	}

	docs, err := p.store.Query(ctx, embedding, p.topK)
	if err != nil {
		p.logger.Error("retrieval failed",
			zap.String("query", query),
			zap.Error(err))
		return ""
	}
	if len(docs) == 0 {
		p.logger.Info("no local results", zap.String("query", query))
		return ""
	}

	answer, err := p.engine.Answer(ctx, query, docs)
	if err != nil {
		p.logger.Error("answer generation failed",
			zap.String("query", query),
			zap.Int("retrieved", len(docs)),
			zap.Error(err))
		return ""
	}

	return strings.TrimSpace(answer)
}
