package chromemdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govgrant-assist/internal/embedding"
	"govgrant-assist/internal/llmservice/llmtest"
	"govgrant-assist/internal/models"
)

func newManager(t *testing.T, p *llmtest.Provider, topK int) *VectorDBManager {
	t.Helper()
	e, err := embedding.NewEmbedder(p, 16)
	require.NoError(t, err)
	return NewVectorDBManager(e, topK)
}

func sampleChunks() []models.Chunk {
	texts := []struct {
		page    int
		content string
	}{
		{1, "Eligibility: applicants must be small businesses registered in the state."},
		{2, "Budget limits: the maximum award is 250,000 dollars per project."},
		{3, "Evaluation criteria: innovation, feasibility, and community impact."},
		{4, "Reporting: quarterly progress reports are required."},
	}
	out := make([]models.Chunk, len(texts))
	for i, tt := range texts {
		out[i] = models.Chunk{Index: i, DocumentID: "doc", PageNumber: tt.page, Content: tt.content}
	}
	return out
}

func TestSearchBeforeBuild(t *testing.T) {
	m := newManager(t, llmtest.New(), 3)
	_, err := m.Search(context.Background(), "anything", 3)
	assert.ErrorIs(t, err, models.ErrNotReady)
	assert.False(t, m.IsReady())
	assert.Equal(t, 0, m.Count())
}

func TestBuildAndSearch(t *testing.T) {
	m := newManager(t, llmtest.New(), 3)
	require.NoError(t, m.Build(context.Background(), sampleChunks()))
	assert.True(t, m.IsReady())
	assert.Equal(t, 4, m.Count())

	results, err := m.Search(context.Background(), "what is the maximum budget award", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Chunk.PageNumber)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}

func TestSearchClampsK(t *testing.T) {
	m := newManager(t, llmtest.New(), 3)
	require.NoError(t, m.Build(context.Background(), sampleChunks()[:2]))

	results, err := m.Search(context.Background(), "budget", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = m.Search(context.Background(), "budget", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2, "default k is capped at the chunk count")
}

func TestSearchResultsAreRankedDescending(t *testing.T) {
	m := newManager(t, llmtest.New(), 4)
	require.NoError(t, m.Build(context.Background(), sampleChunks()))

	results, err := m.Search(context.Background(), "evaluation criteria innovation", 4)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, 3, results[0].Chunk.PageNumber)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
}

func TestFailedBuildKeepsPreviousIndex(t *testing.T) {
	p := llmtest.New()
	m := newManager(t, p, 3)
	require.NoError(t, m.Build(context.Background(), sampleChunks()))

	p.EmbedErr = errors.New("provider down")
	err := m.Build(context.Background(), []models.Chunk{{Index: 0, Content: "replacement"}})
	assert.ErrorIs(t, err, models.ErrIndexBuild)
	assert.ErrorIs(t, err, models.ErrProvider)

	p.EmbedErr = nil
	results, err := m.Search(context.Background(), "budget limits", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Chunk.PageNumber)
}

func TestRebuildReplacesIndex(t *testing.T) {
	m := newManager(t, llmtest.New(), 3)
	require.NoError(t, m.Build(context.Background(), sampleChunks()))
	require.NoError(t, m.Build(context.Background(), []models.Chunk{{Index: 0, DocumentID: "new", PageNumber: 7, Content: "Solar panels on schools."}}))

	results, err := m.Search(context.Background(), "budget limits", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Chunk.DocumentID)
	assert.Equal(t, 7, results[0].Chunk.PageNumber)
}

func TestBuildEmpty(t *testing.T) {
	m := newManager(t, llmtest.New(), 3)
	assert.ErrorIs(t, m.Build(context.Background(), nil), models.ErrIndexBuild)
}

func TestReset(t *testing.T) {
	m := newManager(t, llmtest.New(), 3)
	require.NoError(t, m.Build(context.Background(), sampleChunks()))
	require.NoError(t, m.Reset())
	_, err := m.Search(context.Background(), "budget", 1)
	assert.ErrorIs(t, err, models.ErrNotReady)
}

func TestCreateMetadata(t *testing.T) {
	meta := CreateMetadata(models.Chunk{Index: 4, PageNumber: 2, DocumentID: "d"})
	assert.Equal(t, map[string]string{"page": "2", "chunk": "4", "document": "d"}, meta)
}
