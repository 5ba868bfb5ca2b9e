package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Get(ctx context.Context, in GetInput) (Reimbursement, error)
}
