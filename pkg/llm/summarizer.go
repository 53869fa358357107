package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// ErrEmptySummary is returned when the model produced no usable text. The
// ingestion pipeline treats it the same as a failed summarization call.
var ErrEmptySummary = errors.New("summarizer returned an empty response")

// SummarizerConfig configures the Gemini-backed document summarizer.
type SummarizerConfig struct {
	Model       string
	APIKey      string
	Temperature float64
}

// Summarizer produces short bullet-point digests of tour documents.
type Summarizer struct {
	config SummarizerConfig
	llm    llms.Model
}

func NewSummarizer(ctx context.Context, config SummarizerConfig) (*Summarizer, error) {
	if config.Model == "" {
		config.Model = "gemini-2.5-pro"
	}
	if config.Temperature == 0 {
		config.Temperature = 0.3
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(config.APIKey),
		googleai.WithDefaultModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize summarizer LLM: %w", err)
	}

	return &Summarizer{
		config: config,
		llm:    llm,
	}, nil
}

// Summarize digests the whole raw document text. Inputs larger than the
// model's context surface as the underlying call's error.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: document is empty", ErrEmptySummary)
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, s.llm, BuildSummaryPrompt(text),
		llms.WithTemperature(s.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	summary := strings.TrimSpace(out)
	if summary == "" {
		return "", ErrEmptySummary
	}
	return summary, nil
}

// Generate produces free text from an arbitrary prompt with the same Gemini
// model. The online lookup uses it for structured extraction.
func (s *Summarizer) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt,
		llms.WithTemperature(s.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return strings.TrimSpace(out), nil
}
