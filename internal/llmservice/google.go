package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/api/option"

	"govgrant-assist/internal/config"
	"govgrant-assist/internal/models"
)

// GoogleProvider talks to Gemini through the generative-ai-go SDK.
type GoogleProvider struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

func newGoogleProvider(ctx context.Context, c *config.GoogleConfig) (*GoogleProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(c.Key))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GoogleProvider{
		client:         client,
		model:          c.Model,
		embeddingModel: c.EmbeddingModel,
	}, nil
}

func (p *GoogleProvider) Name() string { return config.ProviderGoogle }

func (p *GoogleProvider) Generate(ctx context.Context, messages []llms.MessageContent, temperature float64) (string, error) {
	system, history, last, err := toGeminiContents(messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrProvider, err)
	}

	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(float32(temperature))
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	cs := model.StartChat()
	cs.History = history

	log.Debug().
		Str("model", p.model).
		Int("history", len(history)).
		Msg("Sending gemini message")

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrProvider, err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: empty response from gemini", models.ErrProvider)
	}
	return text, nil
}

func (p *GoogleProvider) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	em := p.client.EmbeddingModel(p.embeddingModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProvider, err)
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, e := range res.Embeddings {
		vectors = append(vectors, e.Values)
	}
	return vectors, nil
}

func (p *GoogleProvider) Close() error {
	return p.client.Close()
}

// toGeminiContents folds system messages into one instruction and splits the
// conversation into prior history and the final user message.
func toGeminiContents(messages []llms.MessageContent) (string, []*genai.Content, string, error) {
	var (
		system  []string
		history []*genai.Content
	)
	for _, m := range messages {
		text := messageText(m)
		switch m.Role {
		case llms.ChatMessageTypeSystem:
			system = append(system, text)
		case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(text)}})
		case llms.ChatMessageTypeAI:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(text)}})
		default:
			return "", nil, "", fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	if len(history) == 0 || history[len(history)-1].Role != "user" {
		return "", nil, "", fmt.Errorf("conversation must end with a user message")
	}

	last := history[len(history)-1]
	return strings.Join(system, "\n\n"), history[:len(history)-1], partsText(last.Parts), nil
}

func messageText(m llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range m.Parts {
		if tc, ok := part.(llms.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func partsText(parts []genai.Part) string {
	var sb strings.Builder
	for _, part := range parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		sb.WriteString(partsText(candidate.Content.Parts))
		break
	}
	return sb.String()
}
