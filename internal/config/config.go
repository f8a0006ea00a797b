package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
	ProviderOllama = "ollama"
)

type Config struct {
	MaxFileSizeMB int    `yaml:"max_file_size_mb" env:"MAX_FILE_SIZE_MB"`
	Provider      string `yaml:"llm_provider" env:"LLM_PROVIDER"`

	RAG    RAGConfig    `yaml:"rag"`
	LLM    LLMConfig    `yaml:"llm" envPrefix:"LLM_"`
	OpenAI OpenAIConfig `yaml:"openai" envPrefix:"OPENAI_"`
	Google GoogleConfig `yaml:"google" envPrefix:"GOOGLE_"`
	Ollama OllamaConfig `yaml:"ollama" envPrefix:"OLLAMA_"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log" envPrefix:"LOG_"`
}

type RAGConfig struct {
	ChunkSize      int `yaml:"chunk_size" env:"CHUNK_SIZE"`
	ChunkOverlap   int `yaml:"chunk_overlap" env:"CHUNK_OVERLAP"`
	TopK           int `yaml:"top_k" env:"TOP_K_RESULTS"`
	EmbedBatchSize int `yaml:"embed_batch_size" env:"EMBED_BATCH_SIZE"`
}

type LLMConfig struct {
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
}

type OpenAIConfig struct {
	Key            string `yaml:"api_key" env:"API_KEY"`
	Model          string `yaml:"model" env:"MODEL"`
	EmbeddingModel string `yaml:"embedding_model" env:"EMBEDDING_MODEL"`
	BaseURL        string `yaml:"base_url" env:"BASE_URL"`
}

type GoogleConfig struct {
	Key            string `yaml:"api_key" env:"API_KEY"`
	Model          string `yaml:"model" env:"MODEL"`
	EmbeddingModel string `yaml:"embedding_model" env:"EMBEDDING_MODEL"`
}

type OllamaConfig struct {
	BaseURL        string `yaml:"base_url" env:"BASE_URL"`
	Model          string `yaml:"model" env:"MODEL"`
	EmbeddingModel string `yaml:"embedding_model" env:"EMBEDDING_MODEL"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr" env:"SERVER_ADDR"`
	SessionTTL     time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Default returns the configuration used when neither a file nor the
// environment overrides a value.
func Default() *Config {
	return &Config{
		MaxFileSizeMB: 10,
		Provider:      ProviderOpenAI,
		RAG: RAGConfig{
			ChunkSize:      1000,
			ChunkOverlap:   100,
			TopK:           3,
			EmbedBatchSize: 64,
		},
		LLM: LLMConfig{Temperature: 0.3},
		OpenAI: OpenAIConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
		},
		Google: GoogleConfig{
			Model:          "gemini-1.5-flash",
			EmbeddingModel: "models/embedding-001",
		},
		Ollama: OllamaConfig{
			BaseURL:        "http://localhost:11434",
			Model:          "llama3.1",
			EmbeddingModel: "nomic-embed-text",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			SessionTTL:     2 * time.Hour,
			RequestTimeout: 3 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// LoadConfig builds the configuration from defaults, the optional yaml file
// at path, an optional .env file and finally the process environment.
func LoadConfig(path string) (*Config, error) {
	return Load(path, ".env")
}

func Load(path, dotenvPath string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if dotenvPath != "" {
		if _, err := os.Stat(dotenvPath); err == nil {
			if err := godotenv.Load(dotenvPath); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MaxFileBytes is the upload limit in bytes.
func (c *Config) MaxFileBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

func (c *Config) Validate() error {
	var errs []error
	if c.MaxFileSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("max_file_size_mb must be positive, got %d", c.MaxFileSizeMB))
	}
	if c.RAG.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("chunk_overlap must not be negative, got %d", c.RAG.ChunkOverlap))
	}
	if c.RAG.ChunkSize <= c.RAG.ChunkOverlap {
		errs = append(errs, fmt.Errorf("chunk_size (%d) must be greater than chunk_overlap (%d)", c.RAG.ChunkSize, c.RAG.ChunkOverlap))
	}
	if c.RAG.TopK < 1 {
		errs = append(errs, fmt.Errorf("top_k must be at least 1, got %d", c.RAG.TopK))
	}
	if c.RAG.EmbedBatchSize < 1 {
		errs = append(errs, fmt.Errorf("embed_batch_size must be at least 1, got %d", c.RAG.EmbedBatchSize))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature must be within [0, 2], got %v", c.LLM.Temperature))
	}

	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.Key == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case ProviderGoogle:
		if c.Google.Key == "" {
			errs = append(errs, errors.New("GOOGLE_API_KEY is required for the google provider"))
		}
	case ProviderOllama:
		if c.Ollama.BaseURL == "" {
			errs = append(errs, errors.New("OLLAMA_BASE_URL is required for the ollama provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.Provider))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
