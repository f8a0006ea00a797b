package session

import (
	"fmt"

	"govgrant-assist/internal/models"
	"govgrant-assist/internal/validator"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type ChatRequest struct {
	Question string `json:"question" validate:"required"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
	Turns  int    `json:"turns"`
}

type ConversationResponse struct {
	Turns []models.Turn `json:"turns"`
}

// ProposalRequest accepts the budget either as a JSON number or as typed
// text such as "$250,000".
type ProposalRequest struct {
	CompanyName  string      `json:"company_name" validate:"required"`
	ProjectTitle string      `json:"project_title" validate:"required"`
	CoreSolution string      `json:"core_solution" validate:"required"`
	Budget       interface{} `json:"budget,omitempty"`
}

type ProposalResponse struct {
	Proposal *models.Proposal `json:"proposal"`
	Filename string           `json:"filename"`
}

func (r ProposalRequest) toModel() (models.ProposalRequest, error) {
	req := models.ProposalRequest{
		CompanyName:  r.CompanyName,
		ProjectTitle: r.ProjectTitle,
		CoreSolution: r.CoreSolution,
	}

	switch b := r.Budget.(type) {
	case nil:
	case float64:
		req.Budget = &b
	case string:
		v, res := validator.ParseBudget(b)
		if !res.Valid {
			return req, res.Err()
		}
		req.Budget = v
	default:
		return req, fmt.Errorf("%w: Budget must be a valid number.", models.ErrValidation)
	}
	return req, nil
}
