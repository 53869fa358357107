package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/mkal/tourbot/pkg/config"
	"github.com/mkal/tourbot/pkg/extract"
	"github.com/mkal/tourbot/pkg/ingest"
	"github.com/mkal/tourbot/pkg/llm"
	"github.com/mkal/tourbot/pkg/lookup"
	"github.com/mkal/tourbot/pkg/processor"
	"github.com/mkal/tourbot/pkg/rag"
	"github.com/mkal/tourbot/pkg/store"
	"github.com/mkal/tourbot/server"
)

func main() {
	var configPath string
	var serve bool
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.BoolVar(&serve, "serve", false, "Start the websocket server instead of the REPL")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(configPath, serve); err != nil {
		log.Fatal(err)
	}
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(configPath string, serve bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		return fmt.Errorf("invalid configuration")
	}

	creds := config.LoadCredentials()
	if errs := creds.Validate(cfg.Embedding.Provider); len(errs) > 0 {
		for _, e := range errs {
			color.Red("missing credential: %v", e)
		}
		return fmt.Errorf("missing required credentials")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    creds.OpenAIKey,
		VectorDim: cfg.Database.VectorDim,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		APIKey:      creds.OpenAIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %v", err)
	}

	summarizer, err := llm.NewSummarizer(ctx, llm.SummarizerConfig{
		Model:       cfg.Summarizer.Model,
		APIKey:      creds.GeminiKey,
		Temperature: cfg.Summarizer.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize summarizer: %v", err)
	}

	vectorStore, err := store.NewWithConfig(store.VectorStoreConfig{
		ConnString:  creds.DatabaseURL,
		TableName:   cfg.Database.TableName,
		VectorDim:   cfg.Database.VectorDim,
		SearchLimit: cfg.Answer.TopK,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %v", err)
	}
	defer vectorStore.Close()

	searcher, err := lookup.NewSerpSearcher(creds.SerpAPIKey)
	if err != nil {
		return fmt.Errorf("failed to initialize search provider: %v", err)
	}

	ingestPipeline := ingest.New(ingest.Config{
		Extractor:  extract.NewExtractor(),
		Processor:  processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: cfg.Ingest.ChunkSize, ChunkOverlap: cfg.Ingest.ChunkOverlap}),
		Summarizer: summarizer,
		Embedder:   embedder,
		Store:      vectorStore,
		Audit:      store.NewAuditLog(cfg.Ingest.AuditPath),
		Logger:     logger,
	})

	answerPipeline := rag.New(rag.Config{
		Embedder: embedder,
		Store:    vectorStore,
		Engine:   chatEngine,
		TopK:     cfg.Answer.TopK,
		Logger:   logger,
	})

	onlineLookup := lookup.New(lookup.Config{
		Searcher:  searcher,
		Generator: summarizer,
		RateLimit: cfg.Search.RateLimit,
		Logger:    logger,
	})

	if serve {
		return server.New(server.Config{
			Addr:   cfg.Server.Addr,
			Ingest: ingestPipeline,
			Answer: answerPipeline,
			Lookup: onlineLookup,
			Logger: logger,
		}).Start()
	}

	return repl(ctx, ingestPipeline, answerPipeline, onlineLookup)
}

func repl(ctx context.Context, ingestPipeline *ingest.Pipeline, answerPipeline *rag.Pipeline, onlineLookup *lookup.Client) error {
	color.Cyan("\nWelcome to the Concert Tour Bot! (type 'exit' to quit)")
	color.Cyan("Commands: 'add document: <path>', 'search: <query>', 'online: <query>'")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		lowered := strings.ToLower(input)

		switch {
		case lowered == "exit":
			return nil

		case strings.HasPrefix(lowered, "add document:"):
			path := strings.TrimSpace(input[len("add document:"):])
			content, err := os.ReadFile(path)
			if err != nil {
				color.Red("Document not found: %s", path)
				continue
			}

			spinner := getSpinner(" Ingesting document...")
			result, err := ingestPipeline.Ingest(ctx, content, filepath.Base(path))
			spinner.Finish()
			fmt.Print("\r")

			if err != nil {
				color.Red("%s", ingest.UserMessage(err))
				continue
			}
			color.Green("\n%s", result)

		case strings.HasPrefix(lowered, "search:"):
			query := strings.TrimSpace(input[len("search:"):])

			spinner := getSpinner(" Searching the knowledge base...")
			answer := answerPipeline.Answer(ctx, query)
			spinner.Finish()
			fmt.Print("\r")

			if answer != "" {
				color.Green("\nAnswer: %s", answer)
				continue
			}

			color.Yellow("\nNo local info found. Searching online...")
			result := onlineLookup.Search(ctx, query)
			printResult(result)

		case strings.HasPrefix(lowered, "online:"):
			query := strings.TrimSpace(input[len("online:"):])

			spinner := getSpinner(" Searching online...")
			result := onlineLookup.Search(ctx, query)
			spinner.Finish()
			fmt.Print("\r")

			printResult(result)

		default:
			color.Yellow("Unknown command. Use 'add document: <path>', 'search: <query>' or 'online: <query>'")
		}
	}

	return nil
}

func printResult(result lookup.Result) {
	if result.Error != "" {
		color.Red("\nOnline search failed: %s", result.Error)
		return
	}
	if result.Artist != "" {
		color.Green("\nArtist: %s", result.Artist)
	}
	if result.Date != "" {
		color.Green("Date: %s", result.Date)
	}
	if result.Venue != "" {
		color.Green("Venue: %s", result.Venue)
	}
	if result.Summary != "" {
		color.Green("Summary: %s", result.Summary)
	}
}
