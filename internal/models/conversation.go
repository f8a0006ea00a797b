package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ProposalRequest carries the applicant inputs. Budget is optional.
type ProposalRequest struct {
	CompanyName  string   `json:"company_name"`
	ProjectTitle string   `json:"project_title"`
	CoreSolution string   `json:"core_solution"`
	Budget       *float64 `json:"budget,omitempty"`
}

type Proposal struct {
	ProposalRequest
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generated_at"`
}
