package lookup

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/tools/serpapi"
)

// SerpSearcher issues live web searches through the SerpAPI provider.
type SerpSearcher struct {
	tool *serpapi.Tool
}

func NewSerpSearcher(apiKey string) (*SerpSearcher, error) {
	tool, err := serpapi.New(serpapi.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize search provider: %w", err)
	}
	return &SerpSearcher{tool: tool}, nil
}

// Search returns the raw search results for the query. Errors come back to
// the caller, which converts them into a structured error result.
func (s *SerpSearcher) Search(ctx context.Context, query string) (string, error) {
	return s.tool.Call(ctx, query)
}
