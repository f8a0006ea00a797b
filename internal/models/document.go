package models

import "time"

// Document is the text extracted from one uploaded PDF.
type Document struct {
	ID        string
	Filename  string
	PageCount int
	// Pages holds the plain text of every page; index 0 is page 1.
	Pages      []string
	FullText   string
	TotalChars int
	Hash       string
}

// Chunk is a contiguous slice of a document's full text.
type Chunk struct {
	Index      int    `json:"index"`
	DocumentID string `json:"document_id"`
	PageNumber int    `json:"page"`
	Content    string `json:"content"`
	Overlap    int    `json:"-"`
}

type SearchResult struct {
	Chunk      Chunk   `json:"chunk"`
	Similarity float32 `json:"similarity"`
}

type IngestStats struct {
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	Pages      int       `json:"pages"`
	Chunks     int       `json:"chunks"`
	Characters int       `json:"characters"`
	Reused     bool      `json:"reused"`
	IngestedAt time.Time `json:"ingested_at"`
}

type ChunkEmbedding struct {
	Chunk
	Embedding []float32
}
