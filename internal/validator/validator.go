package validator

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"govgrant-assist/internal/models"
	"govgrant-assist/internal/parser"
)

const (
	maxCompanyNameChars = 100
	minTitleChars       = 5
	maxTitleChars       = 150
	minSolutionChars    = 50
	maxSolutionWords    = 2000
	previewPages        = 5
	minPreviewChars     = 50
)

var companyNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s&\-']+$`)

// Result is the outcome of one check. Reason is empty when Valid is true.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

var ok = Result{Valid: true}

func fail(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Err converts a failing result into an error wrapping models.ErrValidation.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, r.Reason)
}

// FileTooLarge is the result for an upload over maxBytes.
func FileTooLarge(maxBytes int64) Result {
	return fail("File size exceeds %gMB limit.", float64(maxBytes)/(1024*1024))
}

// ValidatePDF checks an upload before ingestion. The returned error is set
// only when the bytes cannot be read as a PDF at all.
func ValidatePDF(filename string, data []byte, maxBytes int64) (Result, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return fail("Invalid File Format. Only PDF files are supported."), nil
	}
	if int64(len(data)) > maxBytes {
		return FileTooLarge(maxBytes), nil
	}
	if len(data) == 0 {
		return fail("File is empty."), nil
	}

	pages, total, err := parser.PreviewPages(data, previewPages)
	if err != nil {
		return fail("Invalid or corrupted PDF file: %v", err), err
	}
	if total == 0 {
		return fail("PDF contains no pages."), nil
	}
	for _, text := range pages {
		if utf8.RuneCountInString(strings.TrimSpace(text)) > minPreviewChars {
			return ok, nil
		}
	}
	return fail("OCR not supported. Please upload text-PDF with extractable content."), nil
}

func ValidateCompanyName(name string) Result {
	if strings.TrimSpace(name) == "" {
		return fail("Company name is required.")
	}
	if utf8.RuneCountInString(name) > maxCompanyNameChars {
		return fail("Company name must be %d characters or less.", maxCompanyNameChars)
	}
	if !companyNamePattern.MatchString(name) {
		return fail("Company name contains invalid characters. Only letters, numbers, spaces, &, -, and ' are allowed.")
	}
	return ok
}

func ValidateProjectTitle(title string) Result {
	if utf8.RuneCountInString(strings.TrimSpace(title)) < minTitleChars {
		return fail("Project title must be at least %d characters long.", minTitleChars)
	}
	if utf8.RuneCountInString(title) > maxTitleChars {
		return fail("Project title must be %d characters or less.", maxTitleChars)
	}
	return ok
}

func ValidateCoreSolution(solution string) Result {
	if utf8.RuneCountInString(strings.TrimSpace(solution)) < minSolutionChars {
		return fail("Core solution must be at least %d characters long.", minSolutionChars)
	}
	if n := len(strings.Fields(solution)); n > maxSolutionWords {
		return fail("Core solution exceeds %d words limit. Current: %d words.", maxSolutionWords, n)
	}
	return ok
}

// ValidateBudget accepts a missing budget; a present one must be a finite
// number greater than zero.
func ValidateBudget(budget *float64) Result {
	if budget == nil {
		return ok
	}
	if math.IsNaN(*budget) || math.IsInf(*budget, 0) {
		return fail("Budget must be a valid number.")
	}
	if *budget <= 0 {
		return fail("Budget must be greater than 0.")
	}
	return ok
}

// ParseBudget reads a user-typed amount such as "$250,000.50". Blank input
// means no budget.
func ParseBudget(raw string) (*float64, Result) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil, ok
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, fail("Budget must be a valid number.")
	}
	if res := ValidateBudget(&v); !res.Valid {
		return nil, res
	}
	return &v, ok
}

// ValidateProposalRequest runs every form check and returns all failures.
func ValidateProposalRequest(req models.ProposalRequest) []string {
	var reasons []string
	for _, r := range []Result{
		ValidateCompanyName(req.CompanyName),
		ValidateProjectTitle(req.ProjectTitle),
		ValidateCoreSolution(req.CoreSolution),
		ValidateBudget(req.Budget),
	} {
		if !r.Valid {
			reasons = append(reasons, r.Reason)
		}
	}
	return reasons
}
