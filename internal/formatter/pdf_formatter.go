package formatter

import (
	"bytes"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"
	pdfFontName      = "Helvetica"
)

// the core fonts are cp1252 only
var pdfCleaner = strings.NewReplacer("⚠️ ", "", "⚠️", "", "⚠ ", "", "**", "", "__", "", "`", "")

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// Format lays out the markdown line by line: headings become bold text,
// rules become lines and everything else is wrapped body text.
func (pf *PDFFormatter) Format(title, markdown string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			pdf.Ln(3)
		case trimmed == "---" || trimmed == "***":
			y := pdf.GetY() + 2
			pdf.Line(left, y, pageWidth-right, y)
			pdf.Ln(5)
		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			size := 16.0 - float64(level-1)*2
			if size < 11 {
				size = 11
			}
			pdf.SetFont(pdfFontName, "B", size)
			pdf.MultiCell(0, size*0.5, tr(pdfCleaner.Replace(strings.TrimSpace(trimmed[level:]))), "", "", false)
			pdf.Ln(1)
		default:
			text := trimmed
			if strings.HasPrefix(text, "- ") || strings.HasPrefix(text, "* ") {
				text = "- " + text[2:]
			}
			pdf.SetFont(pdfFontName, "", 11)
			pdf.MultiCell(0, 5.5, tr(pdfCleaner.Replace(text)), "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
