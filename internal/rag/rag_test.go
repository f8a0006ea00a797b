package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govgrant-assist/internal/config"
	"govgrant-assist/internal/embedding"
	"govgrant-assist/internal/llmservice/llmtest"
	"govgrant-assist/internal/models"
	"govgrant-assist/internal/parser/parsertest"
)

func newRAG(t *testing.T, p *llmtest.Provider) *RAG {
	t.Helper()
	e, err := embedding.NewEmbedder(p, 8)
	require.NoError(t, err)
	return NewRAG(e, config.RAGConfig{ChunkSize: 120, ChunkOverlap: 20, TopK: 3})
}

func TestIngestAndSearch(t *testing.T) {
	r := newRAG(t, llmtest.New())
	assert.False(t, r.IsReady())

	stats, err := r.Ingest(context.Background(), "guide.pdf", parsertest.GrantGuide(t))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Pages)
	assert.Greater(t, stats.Chunks, 1)
	assert.Equal(t, "guide.pdf", stats.Filename)
	assert.True(t, r.IsReady())
	assert.Len(t, r.Chunks(), stats.Chunks)
	require.NotNil(t, r.Document())

	results, err := r.Search(context.Background(), "maximum award budget dollars", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Chunk.PageNumber)

	ctxText, err := r.RelevantContext(context.Background(), "evaluation criteria innovation", 1)
	require.NoError(t, err)
	assert.Contains(t, ctxText, "[Page 3]\n")
}

func TestSearchBeforeIngest(t *testing.T) {
	r := newRAG(t, llmtest.New())
	_, err := r.RelevantContext(context.Background(), "anything", 2)
	assert.ErrorIs(t, err, models.ErrNotReady)
}

func TestIngestRejectsTextlessPDF(t *testing.T) {
	r := newRAG(t, llmtest.New())
	_, err := r.Ingest(context.Background(), "blank.pdf", parsertest.BuildPDF(t, nil, nil))
	assert.ErrorIs(t, err, models.ErrExtraction)
	assert.False(t, r.IsReady())
}

func TestFailedIngestKeepsPreviousDocument(t *testing.T) {
	p := llmtest.New()
	r := newRAG(t, p)
	first, err := r.Ingest(context.Background(), "guide.pdf", parsertest.GrantGuide(t))
	require.NoError(t, err)

	p.EmbedErr = errors.New("rate limited")
	other := parsertest.BuildPDF(t, []string{"A completely different program about rural broadband access. "})
	_, err = r.Ingest(context.Background(), "other.pdf", other)
	assert.ErrorIs(t, err, models.ErrIndexBuild)

	assert.Equal(t, first.DocumentID, r.Document().ID)
	p.EmbedErr = nil
	results, err := r.Search(context.Background(), "maximum award", 1)
	require.NoError(t, err)
	assert.Equal(t, first.DocumentID, results[0].Chunk.DocumentID)
}

func TestReingestReplacesDocument(t *testing.T) {
	r := newRAG(t, llmtest.New())
	_, err := r.Ingest(context.Background(), "guide.pdf", parsertest.GrantGuide(t))
	require.NoError(t, err)

	second, err := r.Ingest(context.Background(), "broadband.pdf",
		parsertest.BuildPDF(t, []string{"Rural broadband grants fund fiber deployment in counties. "}))
	require.NoError(t, err)

	results, err := r.Search(context.Background(), "maximum award budget", 5)
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, second.DocumentID, res.Chunk.DocumentID)
	}
}

func TestClear(t *testing.T) {
	r := newRAG(t, llmtest.New())
	_, err := r.Ingest(context.Background(), "guide.pdf", parsertest.GrantGuide(t))
	require.NoError(t, err)
	require.NoError(t, r.Clear())
	assert.False(t, r.IsReady())
	assert.Nil(t, r.Document())
}
