package rag

import (
	"fmt"
	"strings"

	"govgrant-assist/internal/models"
)

// FormatContext renders results in rank order as page-tagged blocks.
func FormatContext(results []models.SearchResult) string {
	if len(results) == 0 {
		return models.NoContextFound
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf(models.ContextEntry, r.Chunk.PageNumber, strings.TrimSpace(r.Chunk.Content)))
	}
	return strings.Join(parts, models.ContextSeparator)
}
