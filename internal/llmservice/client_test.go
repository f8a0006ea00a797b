package llmservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"

	"govgrant-assist/internal/config"
	"govgrant-assist/internal/models"
)

func TestLangChainProviderGenerate(t *testing.T) {
	embed := embeddings.EmbedderClientFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, float32(i)}
		}
		return out, nil
	})
	p := NewLangChainProvider("fake", fake.NewFakeLLM([]string{"first", "second"}), embed)

	msgs := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "hello")}
	got, err := p.Generate(context.Background(), msgs, 0.3)
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = p.Generate(context.Background(), msgs, 0.3)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	vectors, err := p.CreateEmbedding(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, "fake", p.Name())
}

func TestLangChainProviderWrapsErrors(t *testing.T) {
	embed := embeddings.EmbedderClientFunc(func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("quota exceeded")
	})
	p := NewLangChainProvider("fake", fake.NewFakeLLM(nil), embed)

	_, err := p.Generate(context.Background(), []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "hi")}, 0)
	assert.ErrorIs(t, err, models.ErrProvider)

	_, err = p.CreateEmbedding(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, models.ErrProvider)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNewProviderUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = "nope"
	_, err := NewProvider(context.Background(), cfg)
	assert.ErrorIs(t, err, models.ErrUnknownProvider)
}

func TestNewProviderOpenAI(t *testing.T) {
	cfg := config.Default()
	cfg.OpenAI.Key = "sk-test"
	p, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenAI, p.Name())
	assert.NoError(t, p.Close())
}

func TestToGeminiContents(t *testing.T) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "rules"),
		llms.TextParts(llms.ChatMessageTypeHuman, "q1"),
		llms.TextParts(llms.ChatMessageTypeAI, "a1"),
		llms.TextParts(llms.ChatMessageTypeHuman, "q2"),
	}
	system, history, last, err := toGeminiContents(msgs)
	require.NoError(t, err)
	assert.Equal(t, "rules", system)
	assert.Equal(t, "q2", last)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, "a1", partsText(history[1].Parts))
}

func TestToGeminiContentsNeedsTrailingUserMessage(t *testing.T) {
	_, _, _, err := toGeminiContents([]llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "q"),
		llms.TextParts(llms.ChatMessageTypeAI, "a"),
	})
	assert.Error(t, err)
}
