// Package llmtest provides an in-process Provider for tests. Embeddings are
// deterministic bag-of-words vectors so similarity follows word overlap.
package llmtest

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"github.com/tmc/langchaingo/llms"

	"govgrant-assist/internal/models"
)

const defaultDim = 128

type Provider struct {
	mu sync.Mutex

	Responses   []string
	GenerateErr error
	EmbedErr    error
	// EmbedShort drops the last vector of every embedding call.
	EmbedShort bool

	Calls      [][]llms.MessageContent
	EmbedCalls int
	next       int
}

func New(responses ...string) *Provider {
	return &Provider{Responses: responses}
}

func (p *Provider) Name() string { return "fake" }

func (p *Provider) Generate(_ context.Context, messages []llms.MessageContent, _ float64) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, messages)
	if p.GenerateErr != nil {
		return "", fmt.Errorf("%w: %v", models.ErrProvider, p.GenerateErr)
	}
	if len(p.Responses) == 0 {
		return "ok", nil
	}
	res := p.Responses[p.next%len(p.Responses)]
	p.next++
	return res, nil
}

func (p *Provider) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.EmbedCalls++
	if p.EmbedErr != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProvider, p.EmbedErr)
	}
	vectors := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vectors = append(vectors, Vector(t))
	}
	if p.EmbedShort && len(vectors) > 0 {
		vectors = vectors[:len(vectors)-1]
	}
	return vectors, nil
}

func (p *Provider) Close() error { return nil }

// LastCall returns the messages of the most recent Generate call.
func (p *Provider) LastCall() []llms.MessageContent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Calls) == 0 {
		return nil
	}
	return p.Calls[len(p.Calls)-1]
}

// Vector hashes the words of text into a fixed-size count vector. Slot 0 is a
// constant bias so the vector is never all zeros.
func Vector(text string) []float32 {
	v := make([]float32, defaultDim)
	v[0] = 0.01
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		v[1+int(h.Sum32()%(defaultDim-1))]++
	}
	return v
}

// Text concatenates the text parts of a message.
func Text(m llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range m.Parts {
		if tc, ok := part.(llms.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}
