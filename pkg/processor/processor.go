package processor

import (
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

type ProcessorConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Processor prepares extracted document text for ingestion: it gates on the
// concert/tour domain, splits the text into overlapping chunks, and pulls
// optional metadata out of the raw text.
type Processor struct {
	config   ProcessorConfig
	splitter textsplitter.RecursiveCharacter
}

// concertKeywords is the fixed vocabulary used by the relevance gate. A
// document that mentions none of these is rejected before anything is
// summarized or stored.
var concertKeywords = []string{
	"concert", "tour", "venue", "performance", "show", "tickets", "album", "dates",
	"venues", "special guest", "live", "gig", "headliner", "support act", "festival",
	"tour dates", "pre-sale", "on sale", "ticketmaster", "event", "location", "stadium",
	"arena", "amphitheatre", "sold out", "setlist", "world tour", "europe tour",
	"north america", "touring", "music tour",
}

var (
	artistPattern = regexp.MustCompile(`(?i)artist[:\s]+(\w+)`)
	datePattern   = regexp.MustCompile(`date[:\s]+(\d{4}-\d{2}-\d{2})`)
	venuePattern  = regexp.MustCompile(`(?i)venue[:\s]+([^\n\r]+)`)
)

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}

	return Processor{
		config: config,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(config.ChunkSize),
			textsplitter.WithChunkOverlap(config.ChunkOverlap),
		),
	}
}

// Chunk splits raw document text into overlapping windows sized for the
// embedding model's effective context.
func (p *Processor) Chunk(text string) ([]string, error) {
	parts, err := p.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks, nil
}

// IsRelevant reports whether the text mentions concerts or tours. This is a
// cheap guard against off-topic documents, not a security control.
func (p *Processor) IsRelevant(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range concertKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// ExtractMetadata pulls artist/date/venue fields out of the raw text by
// pattern matching. A missing match simply omits the field, never an error.
func (p *Processor) ExtractMetadata(text string) map[string]interface{} {
	metadata := make(map[string]interface{})

	if m := artistPattern.FindStringSubmatch(text); m != nil {
		metadata["artist"] = m[1]
	}
	if m := datePattern.FindStringSubmatch(text); m != nil {
		metadata["date"] = m[1]
	}
	if m := venuePattern.FindStringSubmatch(text); m != nil {
		metadata["venue"] = strings.TrimSpace(m[1])
	}

	return metadata
}
