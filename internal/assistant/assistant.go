package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"govgrant-assist/internal/config"
	"govgrant-assist/internal/llmservice"
	"govgrant-assist/internal/models"
)

// Retriever supplies formatted document context for a query.
type Retriever interface {
	IsReady() bool
	RelevantContext(ctx context.Context, query string, k int) (string, error)
}

// Assistant answers questions and drafts proposals grounded in the ingested
// document. Every method returns text that is safe to show the user, even
// when it also returns an error.
type Assistant struct {
	provider    llmservice.Provider
	retriever   Retriever
	topK        int
	temperature float64
	now         func() time.Time
}

type Option func(*Assistant)

// WithClock overrides the time source used for proposal headers.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

func New(provider llmservice.Provider, retriever Retriever, cfg *config.Config, opts ...Option) *Assistant {
	a := &Assistant{
		provider:    provider,
		retriever:   retriever,
		topK:        cfg.RAG.TopK,
		temperature: cfg.LLM.Temperature,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Chat answers question from the document context and the most recent turns
// of history.
func (a *Assistant) Chat(ctx context.Context, question string, history []models.Turn) (string, error) {
	if !a.retriever.IsReady() {
		return models.NotReadyMessage, models.ErrNotReady
	}

	docContext, err := a.retriever.RelevantContext(ctx, question, a.topK)
	if err != nil {
		if errors.Is(err, models.ErrNotReady) {
			return models.NotReadyMessage, err
		}
		log.Error().Err(err).Msg("Failed to retrieve context")
		return fmt.Sprintf(models.RetrievalErrorFormat, err), err
	}

	messages := ChatMessages(docContext, question, history)
	answer, err := a.provider.Generate(ctx, messages, a.temperature)
	if err != nil {
		log.Error().Err(err).Str("provider", a.provider.Name()).Msg("Failed to generate answer")
		return fmt.Sprintf(models.ChatErrorFormat, err), err
	}
	return answer, nil
}

// ChatMessages builds the system instruction, the trailing history window and
// the new question, oldest first.
func ChatMessages(docContext, question string, history []models.Turn) []llms.MessageContent {
	if len(history) > models.ChatHistoryTurns {
		history = history[len(history)-models.ChatHistoryTurns:]
	}

	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, fmt.Sprintf(models.ChatSystemPrompt, docContext)))
	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Content))
	}
	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, question))
}

// GenerateProposal drafts a proposal for req. On failure the proposal is nil
// and the returned string explains what went wrong.
func (a *Assistant) GenerateProposal(ctx context.Context, req models.ProposalRequest) (*models.Proposal, string, error) {
	if !a.retriever.IsReady() {
		return nil, models.NotReadyMessage, models.ErrNotReady
	}

	guide := a.proposalContext(ctx)
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, fmt.Sprintf(models.ProposalSystemPrompt, guide)),
		llms.TextParts(llms.ChatMessageTypeHuman, ProposalUserMessage(req)),
	}

	body, err := a.provider.Generate(ctx, messages, a.temperature)
	if err != nil {
		log.Error().Err(err).Str("provider", a.provider.Name()).Msg("Failed to generate proposal")
		return nil, fmt.Sprintf(models.ProposalErrorFormat, err), err
	}

	generatedAt := a.now()
	proposal := &models.Proposal{
		ProposalRequest: req,
		Content:         ProposalHeader(req, generatedAt) + body,
		GeneratedAt:     generatedAt,
	}
	log.Info().
		Str("company", req.CompanyName).
		Str("title", req.ProjectTitle).
		Int("length", len(proposal.Content)).
		Msg("Generated proposal")
	return proposal, proposal.Content, nil
}

// proposalContext runs the fixed guide queries; failed queries are skipped.
func (a *Assistant) proposalContext(ctx context.Context) string {
	var parts []string
	for _, q := range models.ProposalQueries {
		c, err := a.retriever.RelevantContext(ctx, q, models.ProposalTopK)
		if err != nil {
			log.Warn().Err(err).Str("query", q).Msg("Skipping proposal context query")
			continue
		}
		parts = append(parts, c)
	}
	return strings.Join(parts, "\n\n")
}

func ProposalUserMessage(req models.ProposalRequest) string {
	msg := fmt.Sprintf(models.ProposalUserPrompt, req.CompanyName, req.ProjectTitle, req.CoreSolution)
	if req.Budget != nil {
		msg += fmt.Sprintf(models.ProposalBudgetLine, FormatBudget(*req.Budget))
	}
	return msg
}

func ProposalHeader(req models.ProposalRequest, at time.Time) string {
	return fmt.Sprintf(models.ProposalHeader, req.ProjectTitle, req.CompanyName, at.Format(models.ProposalDate))
}

// FormatBudget renders an amount with thousands separators and two decimals.
func FormatBudget(amount float64) string {
	return humanize.FormatFloat("#,###.##", amount)
}
