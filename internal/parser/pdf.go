package parser

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"govgrant-assist/internal/helper"
	"govgrant-assist/internal/models"
)

// ExtractPDF reads the plain text of every page of a PDF held in memory.
// Pages without extractable text are kept as "" in Document.Pages but left
// out of Document.FullText.
func ExtractPDF(filename string, data []byte) (*models.Document, error) {
	pages, err := readPages(data, 0)
	if err != nil {
		return nil, err
	}

	id, err := helper.NewID()
	if err != nil {
		return nil, err
	}

	var parts []string
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf(models.PageMarkerFormat, i+1, text))
	}
	fullText := strings.Join(parts, models.PageSeparator)

	doc := &models.Document{
		ID:         id,
		Filename:   filename,
		PageCount:  len(pages),
		Pages:      pages,
		FullText:   fullText,
		TotalChars: utf8.RuneCountInString(fullText),
		Hash:       ContentHash(data),
	}
	log.Debug().
		Str("file", filename).
		Int("pages", doc.PageCount).
		Int("chars", doc.TotalChars).
		Msg("Extracted pdf text")
	return doc, nil
}

// PreviewPages returns the text of at most the first n pages and the total
// page count.
func PreviewPages(data []byte, n int) ([]string, int, error) {
	var total int
	pages, err := readPages(data, n, func(count int) { total = count })
	if err != nil {
		return nil, 0, err
	}
	return pages, total, nil
}

func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// readPages extracts up to limit pages (all pages when limit <= 0).
func readPages(data []byte, limit int, onCount ...func(int)) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", models.ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtraction, err)
	}

	numPages := reader.NumPage()
	for _, fn := range onCount {
		fn(numPages)
	}
	if limit > 0 && limit < numPages {
		numPages = limit
	}

	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Msg("Failed to read page text")
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages, nil
}
