// Package ingest implements the document ingestion pipeline: extract text,
// gate on the concert/tour domain, summarize, chunk, embed, persist, and
// record the ingestion in the audit report.
package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkal/tourbot/internal/models"
	"github.com/mkal/tourbot/internal/types"
	"github.com/mkal/tourbot/pkg/extract"
	"github.com/mkal/tourbot/pkg/processor"
)

// RejectionMessage is returned as a normal result for documents outside the
// concert/tour domain. Nothing is persisted for a rejected document.
const RejectionMessage = "Sorry, I cannot ingest documents with other themes."

const confirmationFormat = "Thank you! Your document has been added to the knowledge base.\n" +
	"Here is a brief summary of the document:\n\n%s"

var (
	// ErrSummary wraps a failed or empty summarization call. Nothing is
	// persisted when it occurs.
	ErrSummary = errors.New("summary generation failed")

	// ErrEmbedding wraps a failed embedding call.
	ErrEmbedding = errors.New("embedding failed")

	// ErrPersistence wraps a failed vector store or audit log write. When the
	// audit write fails after the vector upsert, the stored records remain;
	// the ingestion still reports failure.
	ErrPersistence = errors.New("persistence failed")
)

type Config struct {
	Extractor  types.Extractor
	Processor  processor.Processor
	Summarizer types.Summarizer
	Embedder   types.Embedder
	Store      types.VectorStore
	Audit      types.AuditLog
	Logger     *zap.Logger
}

type Pipeline struct {
	extractor  types.Extractor
	processor  processor.Processor
	summarizer types.Summarizer
	embedder   types.Embedder
	store      types.VectorStore
	audit      types.AuditLog
	logger     *zap.Logger
	now        func() time.Time
}

func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		extractor:  cfg.Extractor,
		processor:  cfg.Processor,
		summarizer: cfg.Summarizer,
		embedder:   cfg.Embedder,
		store:      cfg.Store,
		audit:      cfg.Audit,
		logger:     logger,
		now:        time.Now,
	}
}

// Ingest runs the full pipeline for one uploaded file. On success it returns
// the confirmation message with the generated summary. A document outside the
// supported domain returns RejectionMessage with a nil error; every other
// failure is returned as a typed error with nothing (or, for a failed audit
// write, only the vector records) persisted.
func (p *Pipeline) Ingest(ctx context.Context, content []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	text, err := p.extractor.ExtractBytes(content, ext)
	if err != nil {
		var formatErr *extract.FormatError
		if errors.As(err, &formatErr) {
			p.logger.Warn("unsupported document format",
				zap.String("file", filename),
				zap.String("ext", ext))
			return "", err
		}
		p.logger.Error("text extraction failed",
			zap.String("file", filename),
			zap.Error(err))
		return "", fmt.Errorf("extract %s: %w", filename, err)
	}

	// The relevance gate and the summarizer both see the entire raw text,
	// never a truncated window.
	if !p.processor.IsRelevant(text) {
		p.logger.Info("document rejected as off-topic", zap.String("file", filename))
		return RejectionMessage, nil
	}

	summary, err := p.summarizer.Summarize(ctx, text)
	if err != nil {
		p.logger.Error("summarization failed",
			zap.String("file", filename),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrSummary, err)
	}

	chunks, err := p.processor.Chunk(text)
	if err != nil {
		p.logger.Error("chunking failed",
			zap.String("file", filename),
			zap.Error(err))
		return "", fmt.Errorf("chunk %s: %w", filename, err)
	}

	vectors, err := p.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		p.logger.Error("embedding failed",
			zap.String("file", filename),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vectors) != len(chunks) {
		return "", fmt.Errorf("%w: got %d vectors for %d chunks", ErrEmbedding, len(vectors), len(chunks))
	}

	metadata := p.processor.ExtractMetadata(text)
	metadata["source"] = filename

	// Fresh IDs per ingestion: re-ingesting a file adds new records instead
	// of touching previously stored ones.
	batch := hashString(fmt.Sprintf("%s_%d", filename, p.now().UnixNano()))
	records := make([]models.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = models.ChunkRecord{
			ID:         fmt.Sprintf("%s_%d", batch, i),
			Source:     filename,
			Content:    chunk,
			ChunkIndex: i,
			Embedding:  vectors[i],
			Metadata:   metadata,
		}
	}

	if err := p.store.Upsert(ctx, records); err != nil {
		p.logger.Error("vector store write failed",
			zap.String("file", filename),
			zap.Int("chunks", len(records)),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := p.audit.Append(models.AuditEntry{File: filename, Summary: summary}); err != nil {
		// Not atomic with the upsert above: the vector records stay in place
		// even though this ingestion reports failure.
		p.logger.Error("audit log write failed",
			zap.String("file", filename),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	p.logger.Info("document ingested",
		zap.String("file", filename),
		zap.Int("chunks", len(records)))

	return fmt.Sprintf(confirmationFormat, summary), nil
}

// UserMessage converts a pipeline error into the plain-language string shown
// to the end user. Format errors pass through verbatim.
func UserMessage(err error) string {
	var formatErr *extract.FormatError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &formatErr):
		return formatErr.Error()
	case errors.Is(err, ErrSummary):
		return "Failed to generate a valid summary for the document."
	case errors.Is(err, ErrEmbedding):
		return "Failed to embed the document for search."
	case errors.Is(err, ErrPersistence):
		return "Failed to save the document to the knowledge base."
	default:
		return "Failed to ingest the document."
	}
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
