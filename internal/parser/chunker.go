package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/textsplitter"

	"govgrant-assist/internal/models"
)

const (
	defaultPageNumber = 1
	pageProbeChars    = 100
)

// separators in priority order: paragraph, line, sentence, word, character.
// A separator stays attached to the start of the text that follows it.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// SplitDocument splits the document's full text into chunks of at most
// chunkSize runes, consecutive chunks sharing up to chunkOverlap runes.
func SplitDocument(doc *models.Document, chunkSize, chunkOverlap int) ([]models.Chunk, error) {
	if chunkOverlap < 0 || chunkSize <= chunkOverlap {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", models.ErrInvalidChunking, chunkSize, chunkOverlap)
	}
	if strings.TrimSpace(doc.FullText) == "" {
		return nil, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators(separators),
		textsplitter.WithKeepSeparator(true),
	)
	parts, err := splitter.SplitText(doc.FullText)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	var chunks []models.Chunk
	for _, part := range parts {
		for _, content := range enforceLimit(part, chunkSize) {
			chunks = append(chunks, models.Chunk{
				Index:      len(chunks),
				DocumentID: doc.ID,
				PageNumber: PageForChunk(content, doc.Pages),
				Content:    content,
				Overlap:    chunkOverlap,
			})
		}
	}

	log.Debug().
		Str("document", doc.ID).
		Int("chunks", len(chunks)).
		Int("chunk_size", chunkSize).
		Int("chunk_overlap", chunkOverlap).
		Msg("Split document")
	return chunks, nil
}

// enforceLimit trims content and hard-splits anything still longer than limit.
func enforceLimit(content string, limit int) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if utf8.RuneCountInString(content) <= limit {
		return []string{content}
	}

	var out []string
	runes := []rune(content)
	for start := 0; start < len(runes); start += limit {
		end := min(start+limit, len(runes))
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// PageForChunk attributes a chunk to a 1-based page. The first page marker
// inside the chunk wins; otherwise the first page whose text contains the
// chunk's opening characters; otherwise page 1. Text that repeats verbatim
// on several pages resolves to the earliest of them.
func PageForChunk(content string, pages []string) int {
	if page, ok := markerPage(content, len(pages)); ok {
		return page
	}

	probe := content
	if runes := []rune(content); len(runes) > pageProbeChars {
		probe = string(runes[:pageProbeChars])
	}
	probe = strings.TrimSpace(probe)
	if probe != "" {
		for i, text := range pages {
			if strings.Contains(text, probe) {
				return i + 1
			}
		}
	}
	return defaultPageNumber
}

func markerPage(content string, pageCount int) (int, bool) {
	rest := content
	for {
		idx := strings.Index(rest, models.PageMarkerPrefix)
		if idx < 0 {
			return 0, false
		}
		rest = rest[idx+len(models.PageMarkerPrefix):]
		end := strings.Index(rest, models.PageMarkerSuffix)
		if end < 0 {
			return 0, false
		}
		if n, err := strconv.Atoi(rest[:end]); err == nil && n >= 1 && n <= pageCount {
			return n, true
		}
	}
}
