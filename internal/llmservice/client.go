package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"govgrant-assist/internal/config"
	"govgrant-assist/internal/models"
)

// Provider is the capability set the assistant needs from a language model
// vendor: chat completion and text embedding.
type Provider interface {
	Name() string
	Generate(ctx context.Context, messages []llms.MessageContent, temperature float64) (string, error)
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	log.Debug().
		Str("provider", cfg.Provider).
		Msg("Initializing llm provider")

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return newOpenAIProvider(&cfg.OpenAI)
	case config.ProviderGoogle:
		return newGoogleProvider(ctx, &cfg.Google)
	case config.ProviderOllama:
		return newOllamaProvider(&cfg.Ollama)
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownProvider, cfg.Provider)
	}
}

// LangChainProvider adapts a langchaingo model and embedder client.
type LangChainProvider struct {
	name     string
	model    llms.Model
	embedder embeddings.EmbedderClient
}

func NewLangChainProvider(name string, model llms.Model, embedder embeddings.EmbedderClient) *LangChainProvider {
	return &LangChainProvider{name: name, model: model, embedder: embedder}
}

func newOpenAIProvider(c *config.OpenAIConfig) (*LangChainProvider, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(c.Key, "Bearer ")),
		openai.WithModel(c.Model),
		openai.WithEmbeddingModel(c.EmbeddingModel),
	}
	if c.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(c.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize openai client: %w", err)
	}
	return NewLangChainProvider(config.ProviderOpenAI, llm, llm), nil
}

func newOllamaProvider(c *config.OllamaConfig) (*LangChainProvider, error) {
	chat, err := ollama.New(
		ollama.WithServerURL(c.BaseURL),
		ollama.WithModel(c.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama chat model: %w", err)
	}
	// ollama embeds with whatever model the client was created for
	embed, err := ollama.New(
		ollama.WithServerURL(c.BaseURL),
		ollama.WithModel(c.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama embedding model: %w", err)
	}
	return NewLangChainProvider(config.ProviderOllama, chat, embed), nil
}

func (p *LangChainProvider) Name() string { return p.name }

func (p *LangChainProvider) Generate(ctx context.Context, messages []llms.MessageContent, temperature float64) (string, error) {
	log.Debug().
		Str("provider", p.name).
		Int("messages", len(messages)).
		Float64("temperature", temperature).
		Msg("Generating content")

	res, err := p.model.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrProvider, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from %s", models.ErrProvider, p.name)
	}
	return res.Choices[0].Content, nil
}

func (p *LangChainProvider) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := p.embedder.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProvider, err)
	}
	return vectors, nil
}

func (p *LangChainProvider) Close() error { return nil }
