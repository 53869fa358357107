package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkal/tourbot/internal/models"
	"github.com/mkal/tourbot/pkg/extract"
	"github.com/mkal/tourbot/pkg/ingest"
	"github.com/mkal/tourbot/pkg/processor"
	"github.com/mkal/tourbot/pkg/store"
)

const tourDoc = "Concert: Coldboy Tour\ndate: 2024-05-01\nvenue: City Arena\nTickets on sale."

type fakeSummarizer struct {
	out   string
	err   error
	calls int
}

func (s *fakeSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.out, s.err
}

type fakeEmbedder struct {
	dim int
	err error
}

func (e *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dim)
	}
	return out, nil
}

func (e *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return make([]float32, e.dim), nil
}

func (e *fakeEmbedder) Dimension() int { return e.dim }

type fakeStore struct {
	records []models.ChunkRecord
	err     error
}

func (s *fakeStore) Upsert(_ context.Context, records []models.ChunkRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, records...)
	return nil
}

func (s *fakeStore) Query(_ context.Context, _ []float32, _ int) ([]models.ScoredChunk, error) {
	return nil, nil
}

func (s *fakeStore) Close() {}

func newPipeline(t *testing.T, summarizer *fakeSummarizer, st *fakeStore) (*ingest.Pipeline, *store.AuditLog) {
	t.Helper()
	audit := store.NewAuditLog(filepath.Join(t.TempDir(), "report.json"))
	p := ingest.New(ingest.Config{
		Extractor:  extract.NewExtractor(),
		Processor:  processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 100, ChunkOverlap: 20}),
		Summarizer: summarizer,
		Embedder:   &fakeEmbedder{dim: 8},
		Store:      st,
		Audit:      audit,
	})
	return p, audit
}

func TestIngestSuccess(t *testing.T) {
	st := &fakeStore{}
	p, audit := newPipeline(t, &fakeSummarizer{out: "Coldboy plays City Arena on 2024-05-01."}, st)

	result, err := p.Ingest(context.Background(), []byte(tourDoc), "tour.txt")
	require.NoError(t, err)
	assert.Contains(t, result, "Coldboy")
	assert.Contains(t, result, "added to the knowledge base")

	require.NotEmpty(t, st.records)
	rec := st.records[0]
	assert.Equal(t, "tour.txt", rec.Source)
	assert.Equal(t, "tour.txt", rec.Metadata["source"])
	assert.Equal(t, "2024-05-01", rec.Metadata["date"])
	assert.Equal(t, "City Arena", rec.Metadata["venue"])
	assert.Len(t, rec.Embedding, 8)

	entries, err := audit.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tour.txt", entries[0].File)
	assert.NotEmpty(t, entries[0].Summary)
}

func TestIngestRejectsOffTopic(t *testing.T) {
	st := &fakeStore{}
	summarizer := &fakeSummarizer{out: "should never be called"}
	p, audit := newPipeline(t, summarizer, st)

	result, err := p.Ingest(context.Background(), []byte("A recipe for onion soup."), "soup.txt")
	require.NoError(t, err)
	assert.Equal(t, ingest.RejectionMessage, result)

	// Nothing persisted, no summarization attempted.
	assert.Empty(t, st.records)
	assert.Zero(t, summarizer.calls)
	entries, err := audit.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngestUnsupportedFormat(t *testing.T) {
	st := &fakeStore{}
	p, _ := newPipeline(t, &fakeSummarizer{out: "s"}, st)

	_, err := p.Ingest(context.Background(), []byte("data"), "notes.xyz")
	require.Error(t, err)

	var formatErr *extract.FormatError
	assert.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "unsupported file format: .xyz", ingest.UserMessage(err))
	assert.Empty(t, st.records)
}

func TestIngestSummaryFailureAbortsPersistence(t *testing.T) {
	st := &fakeStore{}
	p, audit := newPipeline(t, &fakeSummarizer{err: errors.New("model overloaded")}, st)

	_, err := p.Ingest(context.Background(), []byte(tourDoc), "tour.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrSummary)
	assert.Equal(t, "Failed to generate a valid summary for the document.", ingest.UserMessage(err))

	assert.Empty(t, st.records)
	entries, err := audit.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngestStoreFailure(t *testing.T) {
	st := &fakeStore{err: errors.New("connection refused")}
	p, audit := newPipeline(t, &fakeSummarizer{out: "s"}, st)

	_, err := p.Ingest(context.Background(), []byte(tourDoc), "tour.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrPersistence)

	entries, err := audit.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReingestCreatesNewRecords(t *testing.T) {
	st := &fakeStore{}
	p, audit := newPipeline(t, &fakeSummarizer{out: "s"}, st)

	_, err := p.Ingest(context.Background(), []byte(tourDoc), "tour.txt")
	require.NoError(t, err)
	firstCount := len(st.records)
	firstIDs := make(map[string]bool, firstCount)
	for _, rec := range st.records {
		firstIDs[rec.ID] = true
	}

	_, err = p.Ingest(context.Background(), []byte(tourDoc), "tour.txt")
	require.NoError(t, err)

	// No dedup: the second pass adds records with fresh IDs.
	assert.Len(t, st.records, 2*firstCount)
	for _, rec := range st.records[firstCount:] {
		assert.False(t, firstIDs[rec.ID], "re-ingestion reused ID %s", rec.ID)
	}

	entries, err := audit.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAuditGrowth(t *testing.T) {
	st := &fakeStore{}
	p, audit := newPipeline(t, &fakeSummarizer{out: "tour summary"}, st)

	const n = 5
	for i := 0; i < n; i++ {
		_, err := p.Ingest(context.Background(), []byte(tourDoc), fmt.Sprintf("tour%d.txt", i))
		require.NoError(t, err)
	}

	entries, err := audit.Entries()
	require.NoError(t, err)
	require.Len(t, entries, n)
	for i, entry := range entries {
		assert.Equal(t, fmt.Sprintf("tour%d.txt", i), entry.File)
		assert.NotEmpty(t, entry.Summary)
	}
}
