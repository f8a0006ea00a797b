package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/embeddings"

	"govgrant-assist/internal/llmservice/llmtest"
	"govgrant-assist/internal/models"
)

func chunks(texts ...string) []models.Chunk {
	out := make([]models.Chunk, len(texts))
	for i, t := range texts {
		out[i] = models.Chunk{Index: i, Content: t, PageNumber: 1}
	}
	return out
}

func TestGenerateEmbeddingBatches(t *testing.T) {
	var batches []int
	client := embeddings.EmbedderClientFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		batches = append(batches, len(texts))
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = llmtest.Vector(text)
		}
		return out, nil
	})

	e, err := NewEmbedder(client, 2)
	require.NoError(t, err)

	got, err := e.GenerateEmbedding(context.Background(), chunks("alpha\nbeta", "gamma", "delta", "epsilon", "zeta"))
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, []int{2, 2, 1}, batches)
	assert.Equal(t, "alpha\nbeta", got[0].Content, "newlines must be preserved")
	assert.Equal(t, 4, got[4].Index)
	assert.Equal(t, llmtest.Vector("gamma"), got[1].Embedding)
}

func TestGenerateEmbeddingEmpty(t *testing.T) {
	e, err := NewEmbedder(llmtest.New(), 0)
	require.NoError(t, err)
	got, err := e.GenerateEmbedding(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGenerateEmbeddingCountMismatch(t *testing.T) {
	p := llmtest.New()
	p.EmbedShort = true
	e, err := NewEmbedder(p, 10)
	require.NoError(t, err)

	_, err = e.GenerateEmbedding(context.Background(), chunks("a", "b", "c"))
	assert.ErrorIs(t, err, models.ErrProvider)
}

func TestGenerateEmbeddingRejectsBadVectors(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
	}{
		{"ragged", [][]float32{{1, 2}, {1}}},
		{"zero", [][]float32{{1, 2}, {0, 0}}},
		{"empty", [][]float32{{}, {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := embeddings.EmbedderClientFunc(func(context.Context, []string) ([][]float32, error) {
				return tt.vectors, nil
			})
			e, err := NewEmbedder(client, 10)
			require.NoError(t, err)
			_, err = e.GenerateEmbedding(context.Background(), chunks("a", "b"))
			assert.ErrorIs(t, err, models.ErrProvider)
		})
	}
}

func TestEmbedQuery(t *testing.T) {
	e, err := NewEmbedder(llmtest.New(), 4)
	require.NoError(t, err)
	v, err := e.EmbedQuery(context.Background(), "budget limits")
	require.NoError(t, err)
	assert.Equal(t, llmtest.Vector("budget limits"), v)

	p := llmtest.New()
	p.EmbedErr = errors.New("down")
	e, err = NewEmbedder(p, 4)
	require.NoError(t, err)
	_, err = e.EmbedQuery(context.Background(), "q")
	assert.ErrorIs(t, err, models.ErrProvider)
}
