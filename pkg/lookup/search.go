// Package lookup implements the online fallback: a live web search whose raw
// results are distilled by an LLM into a structured concert answer. It is
// invoked when the local knowledge base cannot answer a query, and directly
// for artist lookups.
package lookup

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mkal/tourbot/internal/types"
	"github.com/mkal/tourbot/pkg/llm"
)

// Result is the structured outcome of an online lookup. Exactly one of the
// content fields or Error is expected to be populated; a failed extraction
// degrades to Summary holding the raw model output.
type Result struct {
	Artist  string `json:"artist,omitempty"`
	Date    string `json:"date,omitempty"`
	Venue   string `json:"venue,omitempty"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Config struct {
	Searcher  types.WebSearcher
	Generator types.Generator
	RateLimit float64 // requests per second to the search provider
	Logger    *zap.Logger
}

type Client struct {
	searcher  types.WebSearcher
	generator types.Generator
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func New(cfg Config) *Client {
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 2
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		searcher:  cfg.Searcher,
		generator: cfg.Generator,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:    logger,
	}
}

// Search runs a live web search and extracts a structured answer from the
// results. Provider failures are caught and returned inside the Result; this
// call never raises for a search or parse problem. Results are not cached.
func (c *Client) Search(ctx context.Context, query string) Result {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{Error: err.Error()}
	}

	raw, err := c.searcher.Search(ctx, query)
	if err != nil {
		c.logger.Error("online search failed",
			zap.String("query", query),
			zap.Error(err))
		return Result{Error: err.Error()}
	}

	out, err := c.generator.Generate(ctx, llm.BuildExtractionPrompt(raw))
	if err != nil {
		c.logger.Error("extraction generation failed",
			zap.String("query", query),
			zap.Error(err))
		return Result{Error: err.Error()}
	}

	return parseResult(out, c.logger)
}

// parseResult attempts to decode the model output as the extraction schema.
// A parse mismatch is a deliberate best-effort case: the raw text comes back
// under Summary instead of failing the call.
func parseResult(out string, logger *zap.Logger) Result {
	var result Result
	if err := json.Unmarshal([]byte(stripFences(out)), &result); err != nil {
		logger.Info("extraction output was not valid JSON, returning raw text",
			zap.Error(err))
		return Result{Summary: out}
	}
	result.Error = ""
	return result
}

// stripFences removes a surrounding markdown code fence, which chat models
// routinely wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
