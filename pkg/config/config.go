package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Summarizer struct {
		Model       string  `yaml:"model"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"summarizer"`

	Embedding struct {
		Provider string `yaml:"provider"` // "openai" or "ollama"
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"base_url"` // Ollama server URL
	} `yaml:"embedding"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		VectorDim int    `yaml:"vector_dim"`
	} `yaml:"database"`

	Ingest struct {
		ChunkSize    int    `yaml:"chunk_size"`
		ChunkOverlap int    `yaml:"chunk_overlap"`
		AuditPath    string `yaml:"audit_path"`
	} `yaml:"ingest"`

	Answer struct {
		TopK int `yaml:"top_k"`
	} `yaml:"answer"`

	Search struct {
		RateLimit float64 `yaml:"rate_limit"` // requests per second to the search provider
	} `yaml:"search"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Credentials are provider secrets consumed from the environment, never from
// the config file. A missing required credential is a startup error.
type Credentials struct {
	OpenAIKey   string
	GeminiKey   string
	SerpAPIKey  string
	DatabaseURL string
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/tourbot/config.yaml"),
			"/etc/tourbot/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

// LoadCredentials reads provider secrets from the environment.
func LoadCredentials() Credentials {
	return Credentials{
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		SerpAPIKey:  os.Getenv("SERPAPI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-3.5-turbo"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.3
	}

	if config.Summarizer.Model == "" {
		config.Summarizer.Model = "gemini-2.5-pro"
	}
	if config.Summarizer.Temperature == 0 {
		config.Summarizer.Temperature = 0.3
	}

	if config.Embedding.Provider == "" {
		config.Embedding.Provider = "openai"
	}
	if config.Embedding.Model == "" {
		switch config.Embedding.Provider {
		case "ollama":
			config.Embedding.Model = "nomic-embed-text:latest"
		default:
			config.Embedding.Model = "text-embedding-3-small"
		}
	}
	if config.Embedding.BaseURL == "" {
		config.Embedding.BaseURL = "http://localhost:11434"
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "tour_documents"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 1536
	}

	if config.Ingest.ChunkSize == 0 {
		config.Ingest.ChunkSize = 1000
	}
	if config.Ingest.ChunkOverlap == 0 {
		config.Ingest.ChunkOverlap = 200
	}
	if config.Ingest.AuditPath == "" {
		config.Ingest.AuditPath = filepath.Join("reports", "report.json")
	}

	if config.Answer.TopK == 0 {
		config.Answer.TopK = 5
	}

	if config.Search.RateLimit == 0 {
		config.Search.RateLimit = 2.0
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
}

func mergeWithEnv(config *Config) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.Embedding.BaseURL = baseURL
	}
}
