package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"govgrant-assist/internal/assistant"
	"govgrant-assist/internal/config"
	"govgrant-assist/internal/embedding"
	"govgrant-assist/internal/llmservice"
	"govgrant-assist/internal/models"
	"govgrant-assist/internal/parser"
	"govgrant-assist/internal/rag"
	"govgrant-assist/internal/validator"
)

// Session is the state of one user: the ingested document and its index,
// the conversation and the last generated proposal. Operations on a session
// are serialized.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	cfg          *config.Config
	rag          *rag.RAG
	assistant    *assistant.Assistant
	conversation []models.Turn
	proposal     *models.Proposal
	stats        *models.IngestStats
	hash         string
}

type Info struct {
	ID          string              `json:"id"`
	Ready       bool                `json:"ready"`
	Document    *models.IngestStats `json:"document,omitempty"`
	Turns       int                 `json:"turns"`
	HasProposal bool                `json:"has_proposal"`
	CreatedAt   time.Time           `json:"created_at"`
}

func New(id string, provider llmservice.Provider, cfg *config.Config, opts ...assistant.Option) (*Session, error) {
	embedder, err := embedding.NewEmbedder(provider, cfg.RAG.EmbedBatchSize)
	if err != nil {
		return nil, err
	}
	r := rag.NewRAG(embedder, cfg.RAG)
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		cfg:       cfg,
		rag:       r,
		assistant: assistant.New(provider, r, cfg, opts...),
	}, nil
}

// Ingest validates and indexes a PDF. Uploading the same bytes again keeps
// the current index; a new document clears the conversation. Failures leave
// the session as it was.
func (s *Session) Ingest(ctx context.Context, filename string, data []byte) (*models.IngestStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := validator.ValidatePDF(filename, data, s.cfg.MaxFileBytes())
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, res.Err()
	}

	hash := parser.ContentHash(data)
	if hash == s.hash && s.stats != nil && s.rag.IsReady() {
		log.Info().Str("session", s.ID).Str("file", filename).Msg("Document unchanged, keeping index")
		reused := *s.stats
		reused.Reused = true
		return &reused, nil
	}

	stats, err := s.rag.Ingest(ctx, filename, data)
	if err != nil {
		log.Error().Err(err).Str("session", s.ID).Str("file", filename).Msg("Ingestion failed")
		return nil, err
	}

	s.hash = hash
	s.stats = stats
	s.conversation = nil
	return stats, nil
}

// Chat answers question and records the exchange when it succeeded.
func (s *Session) Chat(ctx context.Context, question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	question = strings.TrimSpace(question)
	if question == "" {
		return "Question is required.", fmt.Errorf("%w: empty question", models.ErrValidation)
	}

	answer, err := s.assistant.Chat(ctx, question, s.conversation)
	if err != nil {
		return answer, err
	}
	s.conversation = append(s.conversation,
		models.Turn{Role: models.RoleUser, Content: question},
		models.Turn{Role: models.RoleAssistant, Content: answer},
	)
	return answer, nil
}

func (s *Session) Conversation() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Turn(nil), s.conversation...)
}

func (s *Session) ClearConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = nil
}

// GenerateProposal validates req and replaces the retained proposal on
// success.
func (s *Session) GenerateProposal(ctx context.Context, req models.ProposalRequest) (*models.Proposal, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reasons := validator.ValidateProposalRequest(req); len(reasons) > 0 {
		msg := strings.Join(reasons, " ")
		return nil, msg, fmt.Errorf("%w: %s", models.ErrValidation, msg)
	}

	proposal, text, err := s.assistant.GenerateProposal(ctx, req)
	if err != nil {
		return nil, text, err
	}
	s.proposal = proposal
	return proposal, text, nil
}

// Proposal returns the retained proposal, or nil.
func (s *Session) Proposal() *models.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proposal
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:          s.ID,
		Ready:       s.rag.IsReady(),
		Document:    s.stats,
		Turns:       len(s.conversation),
		HasProposal: s.proposal != nil,
		CreatedAt:   s.CreatedAt,
	}
}

// Close releases the index and forgets everything the session held.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = nil
	s.proposal = nil
	s.stats = nil
	s.hash = ""
	return s.rag.Clear()
}
