package formatter

import "strings"

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format returns the proposal unchanged; it already carries its header.
func (mf *MarkdownFormatter) Format(_ string, markdown string) ([]byte, error) {
	if !strings.HasSuffix(markdown, "\n") {
		markdown += "\n"
	}
	return []byte(markdown), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
