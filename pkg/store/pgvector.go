package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mkal/tourbot/internal/models"
)

// ErrDimensionMismatch is returned when an embedding's length differs from
// the dimensionality the store was created with.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

type VectorStoreConfig struct {
	ConnString  string
	TableName   string
	VectorDim   int
	SearchLimit int
}

// VectorStore persists chunk records in Postgres with pgvector and serves
// cosine top-k similarity queries. Writes are serialized through a single
// mutex; concurrent upserts from one process never interleave.
type VectorStore struct {
	config  VectorStoreConfig
	pool    *pgxpool.Pool
	writeMu sync.Mutex
}

func NewWithConfig(config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "tour_documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536
	}
	if config.SearchLimit == 0 {
		config.SearchLimit = 5
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	vs := &VectorStore{
		config: config,
		pool:   pool,
	}

	if err := vs.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *VectorStore) initialize() error {
	ctx := context.Background()

	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			content TEXT,
			chunk_index INTEGER,
			embedding vector(%d),
			metadata JSONB
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Upsert writes records in one transaction. Records are immutable: an ID
// collision leaves the existing row untouched instead of rewriting it.
func (vs *VectorStore) Upsert(ctx context.Context, records []models.ChunkRecord) error {
	for _, rec := range records {
		if len(rec.Embedding) != vs.config.VectorDim {
			return fmt.Errorf("%w: record %s has %d dimensions, store expects %d",
				ErrDimensionMismatch, rec.ID, len(rec.Embedding), vs.config.VectorDim)
		}
	}

	vs.writeMu.Lock()
	defer vs.writeMu.Unlock()

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, source, content, chunk_index, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		vs.config.TableName)

	for _, rec := range records {
		_, err = tx.Exec(ctx, stmt,
			rec.ID,
			rec.Source,
			rec.Content,
			rec.ChunkIndex,
			pgvector.NewVector(rec.Embedding),
			rec.Metadata,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %v", rec.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// Query returns up to limit records ordered by descending cosine similarity
// to the given embedding.
func (vs *VectorStore) Query(ctx context.Context, queryEmbedding []float32, limit int) ([]models.ScoredChunk, error) {
	if len(queryEmbedding) != vs.config.VectorDim {
		return nil, fmt.Errorf("%w: query has %d dimensions, store expects %d",
			ErrDimensionMismatch, len(queryEmbedding), vs.config.VectorDim)
	}
	if limit == 0 {
		limit = vs.config.SearchLimit
	}

	query := fmt.Sprintf(`
		SELECT id, source, content, chunk_index, metadata, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName)

	embedding := pgvector.NewVector(queryEmbedding)
	rows, err := vs.pool.Query(ctx, query, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %v", err)
	}
	defer rows.Close()

	var docs []models.ScoredChunk
	for rows.Next() {
		var doc models.ScoredChunk
		var score float64
		err := rows.Scan(
			&doc.ID,
			&doc.Source,
			&doc.Content,
			&doc.ChunkIndex,
			&doc.Metadata,
			&score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		doc.Score = float32(score)
		docs = append(docs, doc)
	}

	return docs, nil
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}
