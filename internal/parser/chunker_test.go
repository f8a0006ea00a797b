package parser

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govgrant-assist/internal/models"
)

func docFromPages(pages ...string) *models.Document {
	var parts []string
	for i, p := range pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf(models.PageMarkerFormat, i+1, p))
	}
	return &models.Document{
		ID:        "doc-1",
		PageCount: len(pages),
		Pages:     pages,
		FullText:  strings.Join(parts, models.PageSeparator),
	}
}

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(w, " ")
}

func TestSplitDocumentRespectsLimits(t *testing.T) {
	text := strings.Repeat("Applicants must describe their project. ", 40) +
		"\n\n" + strings.Repeat("x", 700) + "\n" + words(300)
	doc := docFromPages(text, "Second page.\nWith lines.\n\nAnd a paragraph.")

	for _, size := range []int{2, 10, 57, 200, 1000} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			overlap := size / 4
			chunks, err := SplitDocument(doc, size, overlap)
			require.NoError(t, err)
			require.NotEmpty(t, chunks)
			for i, c := range chunks {
				assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), size)
				assert.NotEmpty(t, strings.TrimSpace(c.Content))
				assert.Equal(t, i, c.Index)
				assert.Equal(t, "doc-1", c.DocumentID)
				assert.GreaterOrEqual(t, c.PageNumber, 1)
				assert.LessOrEqual(t, c.PageNumber, 2)
			}
		})
	}
}

func TestSplitDocumentOverlap(t *testing.T) {
	doc := &models.Document{ID: "d", PageCount: 1, Pages: []string{words(200)}, FullText: words(200)}

	chunks, err := SplitDocument(doc, 50, 10)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)
	for i := 1; i < len(chunks); i++ {
		first := strings.Fields(chunks[i].Content)[0]
		assert.Contains(t, strings.Fields(chunks[i-1].Content), first, "chunk %d should start inside chunk %d", i, i-1)
	}
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestSplitDocumentKeepsSentenceSeparators(t *testing.T) {
	text := strings.Repeat("Applicants must describe the project scope clearly. ", 10)
	doc := &models.Document{ID: "d", PageCount: 1, Pages: []string{text}, FullText: text}

	chunks, err := SplitDocument(doc, 120, 0)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Content)
	}
	assert.Equal(t, 10, strings.Count(joined.String(), "."))
	assert.Equal(t, stripSpace(text), stripSpace(joined.String()))
}

func TestSplitDocumentRebuildsTextWithOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "Section %d requires item %d. ", i, i*7)
	}
	text := sb.String()
	doc := &models.Document{ID: "d", PageCount: 1, Pages: []string{text}, FullText: text}

	const overlap = 30
	chunks, err := SplitDocument(doc, 120, overlap)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	rebuilt := stripSpace(chunks[0].Content)
	for _, c := range chunks[1:] {
		next := stripSpace(c.Content)
		shared := 0
		for k := min(overlap, len(next)); k > 0; k-- {
			if strings.HasSuffix(rebuilt, next[:k]) {
				shared = k
				break
			}
		}
		rebuilt += next[shared:]
	}
	assert.Equal(t, stripSpace(text), rebuilt)
}

func TestSplitDocumentSingleChunk(t *testing.T) {
	doc := docFromPages("Short guide text.")
	chunks, err := SplitDocument(doc, 1000, 100)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "--- Page 1 ---\nShort guide text.", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].PageNumber)
}

func TestSplitDocumentEmpty(t *testing.T) {
	chunks, err := SplitDocument(&models.Document{FullText: "  \n "}, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitDocumentInvalidParameters(t *testing.T) {
	doc := docFromPages("text")
	for _, tt := range []struct{ size, overlap int }{{100, 100}, {10, 20}, {100, -1}, {0, 0}} {
		_, err := SplitDocument(doc, tt.size, tt.overlap)
		assert.ErrorIs(t, err, models.ErrInvalidChunking, "size=%d overlap=%d", tt.size, tt.overlap)
	}
}

func TestSplitDocumentAttributesPages(t *testing.T) {
	page1 := strings.Repeat("Eligibility rules apply to everyone. ", 3)
	page2 := strings.Repeat("Budget caps are strict for all. ", 3)
	doc := docFromPages(page1, page2)

	chunks, err := SplitDocument(doc, 150, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Equal(t, 2, chunks[1].PageNumber)
	assert.True(t, strings.HasPrefix(chunks[1].Content, "--- Page 2 ---"))
}

func TestPageForChunk(t *testing.T) {
	pages := []string{
		"Introduction to the program and its goals.",
		"Budget section: the maximum award is fixed.",
		"Evaluation and scoring details.",
	}
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"marker", "--- Page 3 ---\nEvaluation and scoring", 3},
		{"marker later in chunk", "tail of page one\n\n--- Page 2 ---\nBudget", 2},
		{"marker out of range falls back", "--- Page 9 ---\nnothing", 1},
		{"marker zero ignored", "--- Page 0 ---\nBudget section", 1},
		{"non numeric marker skipped", "--- Page x --- then --- Page 3 ---", 3},
		{"text match", "the maximum award is fixed.", 2},
		{"no match defaults to first page", "completely unrelated words", 1},
		{"empty", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageForChunk(tt.content, pages))
		})
	}
}

func TestPageForChunkUsesFirstHundredRunes(t *testing.T) {
	head := strings.Repeat("a", 100)
	pages := []string{"nothing here", "prefix " + head + " suffix"}
	assert.Equal(t, 2, PageForChunk(head+"DIFFERENT TAIL", pages))
}
