package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"govgrant-assist/internal/formatter"
	"govgrant-assist/internal/models"
	grant "govgrant-assist/internal/session"
	inputvalidator "govgrant-assist/internal/validator"
)

// multipart overhead allowed on top of the file limit
const formSlack = 1 << 20

// Store is the part of the session store the handler needs.
type Store interface {
	Create() (*grant.Session, error)
	Get(id string) (*grant.Session, error)
	Delete(id string) error
}

type Handler struct {
	store      Store
	formatters *formatter.Factory
	validate   *validator.Validate
	maxBytes   int64
}

func NewHandler(store Store, maxBytes int64) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		store:      store,
		formatters: formatter.NewFactory(),
		validate:   v,
		maxBytes:   maxBytes,
	}
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Create()
	if err != nil {
		handleError(r.Context(), w, err, "Failed to create session")
		return
	}
	respondJSON(w, http.StatusCreated, s.Info())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.Info())
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		handleError(r.Context(), w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadDocument ingests the multipart field "file" as the session's grant
// guide.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+formSlack)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(r.Context(), w, inputvalidator.FileTooLarge(h.maxBytes).Err(), "")
			return
		}
		respondError(r.Context(), w, http.StatusBadRequest, "A PDF file is required in the \"file\" field.", err)
		return
	}
	defer file.Close()

	// one extra byte lets the validator see an oversized upload
	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		respondError(r.Context(), w, http.StatusBadRequest, "Failed to read uploaded file.", err)
		return
	}

	stats, err := s.Ingest(r.Context(), header.Filename, data)
	if err != nil {
		handleError(r.Context(), w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if !h.decode(w, r, &req) {
		return
	}

	answer, err := s.Chat(r.Context(), req.Question)
	if err != nil {
		handleError(r.Context(), w, err, answer)
		return
	}
	respondJSON(w, http.StatusOK, ChatResponse{Answer: answer, Turns: len(s.Conversation())})
}

func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	turns := s.Conversation()
	if turns == nil {
		turns = []models.Turn{}
	}
	respondJSON(w, http.StatusOK, ConversationResponse{Turns: turns})
}

func (h *Handler) ClearConversation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.ClearConversation()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GenerateProposal(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ProposalRequest
	if !h.decode(w, r, &req) {
		return
	}
	input, err := req.toModel()
	if err != nil {
		handleError(r.Context(), w, err, "")
		return
	}

	proposal, msg, err := s.GenerateProposal(r.Context(), input)
	if err != nil {
		handleError(r.Context(), w, err, msg)
		return
	}
	respondJSON(w, http.StatusOK, ProposalResponse{
		Proposal: proposal,
		Filename: formatter.ProposalFilename(proposal.CompanyName, proposal.GeneratedAt, ".md"),
	})
}

func (h *Handler) GetProposal(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	proposal := s.Proposal()
	if proposal == nil {
		handleError(r.Context(), w, models.ErrNoProposal, "")
		return
	}
	respondJSON(w, http.StatusOK, ProposalResponse{
		Proposal: proposal,
		Filename: formatter.ProposalFilename(proposal.CompanyName, proposal.GeneratedAt, ".md"),
	})
}

// DownloadProposal renders the retained proposal as md (default), html or
// pdf according to the "format" query parameter.
func (h *Handler) DownloadProposal(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	proposal := s.Proposal()
	if proposal == nil {
		handleError(r.Context(), w, models.ErrNoProposal, "")
		return
	}

	f, err := h.formatters.Create(r.URL.Query().Get("format"))
	if err != nil {
		handleError(r.Context(), w, err, "")
		return
	}
	data, err := f.Format(proposal.ProjectTitle, proposal.Content)
	if err != nil {
		handleError(r.Context(), w, err, "Failed to render proposal")
		return
	}

	filename := formatter.ProposalFilename(proposal.CompanyName, proposal.GeneratedAt, f.FileExtension())
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to write proposal download")
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*grant.Session, bool) {
	s, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleError(r.Context(), w, err, "")
		return nil, false
	}
	return s, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(r.Context(), w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		details := []string{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details = append(details, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
			}
		}
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   http.StatusText(http.StatusBadRequest),
			Message: "Request validation failed",
			Details: details,
		})
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	logger := zerolog.Ctx(ctx)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Msg(message)

	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// handleError maps domain errors onto HTTP statuses. message overrides the
// error text when the caller already has a user-facing explanation.
func handleError(ctx context.Context, w http.ResponseWriter, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrSessionNotFound), errors.Is(err, models.ErrNoProposal):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrExtraction), errors.Is(err, models.ErrInvalidChunking):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNotReady):
		status = http.StatusConflict
	case errors.Is(err, models.ErrProvider), errors.Is(err, models.ErrIndexBuild):
		status = http.StatusBadGateway
	}

	if message == "" {
		switch status {
		case http.StatusNotFound:
			message = strings.ToUpper(err.Error()[:1]) + err.Error()[1:]
		case http.StatusBadRequest:
			message = strings.TrimPrefix(err.Error(), models.ErrValidation.Error()+": ")
		case http.StatusInternalServerError:
			message = "Internal server error"
		default:
			message = err.Error()
		}
	}
	respondError(ctx, w, status, message, err)
}
