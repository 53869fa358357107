package lookup_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkal/tourbot/pkg/lookup"
)

type fakeSearcher struct {
	out string
	err error
}

func (s *fakeSearcher) Search(_ context.Context, _ string) (string, error) {
	return s.out, s.err
}

type fakeGenerator struct {
	out    string
	err    error
	prompt string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.out, g.err
}

func newClient(searcher *fakeSearcher, generator *fakeGenerator) *lookup.Client {
	return lookup.New(lookup.Config{
		Searcher:  searcher,
		Generator: generator,
		RateLimit: 1000,
		Logger:    zap.NewNop(),
	})
}

func TestSearchStructuredResult(t *testing.T) {
	generator := &fakeGenerator{
		out: `{"artist": "Coldboy", "date": "2024-05-01", "venue": "City Arena", "summary": "One night only."}`,
	}
	c := newClient(&fakeSearcher{out: "Coldboy announces City Arena show"}, generator)

	result := c.Search(context.Background(), "Coldboy concert")

	assert.Equal(t, "Coldboy", result.Artist)
	assert.Equal(t, "2024-05-01", result.Date)
	assert.Equal(t, "City Arena", result.Venue)
	assert.Equal(t, "One night only.", result.Summary)
	assert.Empty(t, result.Error)

	// The raw search results are fed into the extraction prompt.
	assert.Contains(t, generator.prompt, "Coldboy announces City Arena show")
}

func TestSearchFencedJSON(t *testing.T) {
	generator := &fakeGenerator{
		out: "```json\n{\"artist\": \"Coldboy\", \"summary\": \"ok\"}\n```",
	}
	c := newClient(&fakeSearcher{out: "results"}, generator)

	result := c.Search(context.Background(), "Coldboy")
	assert.Equal(t, "Coldboy", result.Artist)
	assert.Equal(t, "ok", result.Summary)
}

func TestSearchMalformedOutputDegradesToSummary(t *testing.T) {
	raw := "Coldboy will tour Europe next spring, dates to be announced."
	c := newClient(&fakeSearcher{out: "results"}, &fakeGenerator{out: raw})

	result := c.Search(context.Background(), "Coldboy tour")

	require.Empty(t, result.Error)
	assert.Equal(t, raw, result.Summary)
	assert.Empty(t, result.Artist)
}

func TestSearchProviderErrorReturnsStructuredError(t *testing.T) {
	c := newClient(&fakeSearcher{err: errors.New("quota exceeded")}, &fakeGenerator{out: "never"})

	result := c.Search(context.Background(), "anything")
	assert.Equal(t, "quota exceeded", result.Error)
	assert.Empty(t, result.Summary)
}

func TestSearchGeneratorErrorReturnsStructuredError(t *testing.T) {
	c := newClient(&fakeSearcher{out: "results"}, &fakeGenerator{err: errors.New("model unavailable")})

	result := c.Search(context.Background(), "anything")
	assert.Equal(t, "model unavailable", result.Error)
}
