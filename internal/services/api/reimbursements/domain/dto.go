// Package domain holds DTOs for the reimbursements read endpoint
package domain

// GetInput is the path input of GET /reimbursements/{document_id}
type GetInput struct {
	DocumentID string `param:"document_id" validate:"required,number,max=19" example:"5958154"`
}

// Reimbursement is the public view of a reimbursement's classifier output
type Reimbursement struct {
	DocumentID  int64           `json:"document_id" example:"5958154"`
	Probability *float64        `json:"probability" example:"0.91"`
	Suspicions  map[string]bool `json:"suspicions"`
}
