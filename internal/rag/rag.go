package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"govgrant-assist/internal/chromemdb"
	"govgrant-assist/internal/config"
	"govgrant-assist/internal/embedding"
	"govgrant-assist/internal/models"
	"govgrant-assist/internal/parser"
)

// RAG runs the ingestion pipeline (extract, split, embed, index) for a
// single document and answers retrieval queries against it.
type RAG struct {
	mu     sync.RWMutex
	cfg    config.RAGConfig
	index  *chromemdb.VectorDBManager
	doc    *models.Document
	chunks []models.Chunk
}

func NewRAG(embedder *embedding.Embedder, cfg config.RAGConfig) *RAG {
	return &RAG{
		cfg:   cfg,
		index: chromemdb.NewVectorDBManager(embedder, cfg.TopK),
	}
}

// Ingest replaces the current document with the PDF in data. On any error
// the previously ingested document stays searchable.
func (r *RAG) Ingest(ctx context.Context, filename string, data []byte) (*models.IngestStats, error) {
	start := time.Now()

	doc, err := parser.ExtractPDF(filename, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.FullText) == "" {
		return nil, fmt.Errorf("%w: no extractable text in %s", models.ErrExtraction, filename)
	}

	chunks, err := parser.SplitDocument(doc, r.cfg.ChunkSize, r.cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks produced from %s", models.ErrExtraction, filename)
	}

	if err := r.index.Build(ctx, chunks); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.doc = doc
	r.chunks = chunks
	r.mu.Unlock()

	stats := &models.IngestStats{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Pages:      doc.PageCount,
		Chunks:     len(chunks),
		Characters: doc.TotalChars,
		IngestedAt: time.Now().UTC(),
	}
	log.Info().
		Str("file", filename).
		Int("pages", stats.Pages).
		Int("chunks", stats.Chunks).
		Dur("took", time.Since(start)).
		Msg("Ingested document")
	return stats, nil
}

// Search returns up to k chunks ranked by similarity to query.
func (r *RAG) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	return r.index.Search(ctx, query, k)
}

// RelevantContext retrieves and formats the context block for query.
func (r *RAG) RelevantContext(ctx context.Context, query string, k int) (string, error) {
	results, err := r.Search(ctx, query, k)
	if err != nil {
		return "", err
	}
	return FormatContext(results), nil
}

func (r *RAG) IsReady() bool {
	return r.index.IsReady()
}

// Document returns the ingested document, or nil.
func (r *RAG) Document() *models.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc
}

func (r *RAG) Chunks() []models.Chunk {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chunks
}

// Clear forgets the document and drops the index.
func (r *RAG) Clear() error {
	r.mu.Lock()
	r.doc = nil
	r.chunks = nil
	r.mu.Unlock()
	return r.index.Reset()
}
