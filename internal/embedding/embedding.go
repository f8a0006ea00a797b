package embedding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"govgrant-assist/internal/models"
)

const defaultBatchSize = 64

// Embedder batches texts through a provider and checks the vectors it gets
// back before anything is indexed.
type Embedder struct {
	impl *embeddings.EmbedderImpl
}

// NewEmbedder wraps client. Newlines are kept since page markers and
// paragraph breaks carry meaning in the chunk text.
func NewEmbedder(client embeddings.EmbedderClient, batchSize int) (*Embedder, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	impl, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(false),
		embeddings.WithBatchSize(batchSize),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return &Embedder{impl: impl}, nil
}

// GenerateEmbedding embeds every chunk and pairs it with its vector.
func (e *Embedder) GenerateEmbedding(ctx context.Context, chunks []models.Chunk) ([]models.ChunkEmbedding, error) {
	if len(chunks) == 0 {
		log.Info().Msg("No chunks to embed")
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", models.ErrProvider, len(vectors), len(chunks))
	}
	if err := checkVectors(vectors); err != nil {
		return nil, err
	}

	out := make([]models.ChunkEmbedding, len(chunks))
	for i, c := range chunks {
		out[i] = models.ChunkEmbedding{Chunk: c, Embedding: vectors[i]}
	}
	log.Debug().
		Int("chunks", len(chunks)).
		Int("dimensions", len(vectors[0])).
		Msg("Embedded chunks")
	return out, nil
}

// EmbedQuery embeds a single query string.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.impl.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one query", models.ErrProvider, len(vectors))
	}
	if err := checkVectors(vectors); err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// checkVectors requires non-empty, non-zero vectors sharing one dimension.
func checkVectors(vectors [][]float32) error {
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("%w: empty embedding vector", models.ErrProvider)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", models.ErrProvider, i, len(v), dim)
		}
		if isZero(v) {
			return fmt.Errorf("%w: vector %d is all zeros", models.ErrProvider, i)
		}
	}
	return nil
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
