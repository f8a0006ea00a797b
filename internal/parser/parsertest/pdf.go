// Package parsertest builds small text PDFs for tests.
package parsertest

import (
	"bytes"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// BuildPDF returns an uncompressed A4 PDF with one page per entry. Each line
// of a page becomes its own text cell; an empty entry yields a blank page.
func BuildPDF(t testing.TB, pages ...[]string) []byte {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetFont("Helvetica", "", 11)
	for _, lines := range pages {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 11)
		for _, line := range lines {
			pdf.Cell(0, 6, line)
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("failed to build pdf: %v", err)
	}
	return buf.Bytes()
}

// GrantGuide is a three-page guide with distinct eligibility, budget and
// evaluation pages.
func GrantGuide(t testing.TB) []byte {
	return BuildPDF(t,
		[]string{
			"Clean Energy Innovation Grant Guide. ",
			"Eligibility: applicants must be small businesses registered in the state. ",
			"Objectives: reduce municipal energy use and create local jobs. ",
		},
		[]string{
			"Budget requirements: the maximum award is 250000 dollars per project. ",
			"Indirect costs may not exceed ten percent of the requested budget. ",
		},
		[]string{
			"Evaluation criteria: innovation, feasibility and community impact. ",
			"Proposals must use the headers Project Narrative and Budget Justification. ",
		},
	)
}
