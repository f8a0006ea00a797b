package formatter

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"govgrant-assist/internal/models"
)

const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
)

// Formatter renders a generated proposal into a downloadable artifact.
type Formatter interface {
	Format(title, markdown string) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format string) (Formatter, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", FormatMarkdown, "markdown":
		return NewMarkdownFormatter(), nil
	case FormatHTML:
		return NewHTMLFormatter(), nil
	case FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, format)
	}
}

// ProposalFilename builds "Proposal_<company>_<YYYYMMDD>" plus ext, with
// every rune of the company name that is not a letter or digit replaced by
// an underscore.
func ProposalFilename(company string, at time.Time, ext string) string {
	safe := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, strings.TrimSpace(company))
	return fmt.Sprintf("Proposal_%s_%s%s", safe, at.Format("20060102"), ext)
}
