package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"govgrant-assist/internal/embedding"
	"govgrant-assist/internal/models"
)

const collectionName = "grant_guide"

// metadata keys stored next to every chunk
const (
	metaPage     = "page"
	metaChunk    = "chunk"
	metaDocument = "document"
)

type index struct {
	db         *chromem.DB
	collection *chromem.Collection
	chunks     map[string]models.Chunk
	dimensions int
}

// VectorDBManager owns the in-memory similarity index for one document.
// The index is rebuilt from scratch on every Build and never updated in place.
type VectorDBManager struct {
	mu       sync.RWMutex
	embedder *embedding.Embedder
	current  *index
	topK     int
}

// NewVectorDBManager creates an empty manager; Search fails with
// models.ErrNotReady until Build succeeds.
func NewVectorDBManager(embedder *embedding.Embedder, topK int) *VectorDBManager {
	if topK < 1 {
		topK = 1
	}
	return &VectorDBManager{embedder: embedder, topK: topK}
}

// Build embeds chunks and replaces the current index. A failed build leaves
// the previous index untouched.
func (m *VectorDBManager) Build(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to index", models.ErrIndexBuild)
	}

	embedded, err := m.embedder.GenerateEmbedding(ctx, chunks)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrIndexBuild, err)
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(collectionName, nil, m.embeddingFunc())
	if err != nil {
		return fmt.Errorf("%w: failed to create collection: %v", models.ErrIndexBuild, err)
	}

	docs := make([]chromem.Document, len(embedded))
	byID := make(map[string]models.Chunk, len(embedded))
	for i, ce := range embedded {
		id := strconv.Itoa(ce.Index)
		docs[i] = chromem.Document{
			ID:        id,
			Content:   ce.Content,
			Metadata:  CreateMetadata(ce.Chunk),
			Embedding: ce.Embedding,
		}
		byID[id] = ce.Chunk
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("%w: failed to add documents: %v", models.ErrIndexBuild, err)
	}

	next := &index{
		db:         db,
		collection: collection,
		chunks:     byID,
		dimensions: len(embedded[0].Embedding),
	}

	m.mu.Lock()
	prev := m.current
	m.current = next
	m.mu.Unlock()

	if prev != nil {
		if err := prev.db.Reset(); err != nil {
			log.Warn().Err(err).Msg("Failed to reset previous index")
		}
	}

	log.Info().
		Int("chunks", collection.Count()).
		Int("dimensions", next.dimensions).
		Msg("Built similarity index")
	return nil
}

// Search returns the k chunks most similar to query, most similar first.
// k <= 0 uses the configured default and k is capped at the chunk count.
func (m *VectorDBManager) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	m.mu.RLock()
	idx := m.current
	m.mu.RUnlock()
	if idx == nil {
		return nil, models.ErrNotReady
	}

	if k <= 0 {
		k = m.topK
	}
	if count := idx.collection.Count(); k > count {
		k = count
	}

	vector, err := m.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(vector) != idx.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", models.ErrProvider, len(vector), idx.dimensions)
	}

	results, err := idx.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	out := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		chunk, ok := idx.chunks[r.ID]
		if !ok {
			log.Warn().Str("id", r.ID).Msg("Search result without a matching chunk")
			continue
		}
		out = append(out, models.SearchResult{Chunk: chunk, Similarity: r.Similarity})
	}

	log.Debug().
		Str("query", query).
		Int("k", k).
		Int("results", len(out)).
		Msg("Searched index")
	return out, nil
}

// Count is the number of indexed chunks, 0 when nothing is built.
func (m *VectorDBManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return 0
	}
	return m.current.collection.Count()
}

func (m *VectorDBManager) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Reset drops the current index.
func (m *VectorDBManager) Reset() error {
	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.mu.Unlock()

	if prev == nil {
		return nil
	}
	if err := prev.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	return nil
}

// embeddingFunc lets chromem embed through the same provider if it ever
// receives a document or query without a vector.
func (m *VectorDBManager) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return m.embedder.EmbedQuery(ctx, text)
	}
}

func CreateMetadata(c models.Chunk) map[string]string {
	return map[string]string{
		metaPage:     strconv.Itoa(c.PageNumber),
		metaChunk:    strconv.Itoa(c.Index),
		metaDocument: c.DocumentID,
	}
}
