// Package service contains the reimbursements read workflow
package service

import (
	"context"
	"strconv"

	"jarbas/internal/modkit/repokit"
	perr "jarbas/internal/platform/errors"
	"jarbas/internal/services/api/reimbursements/domain"
	"jarbas/internal/services/api/reimbursements/repo"
)

// Service defines the reimbursements service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the reimbursements service
type Svc struct {
	Repo repo.Repo
}

// New constructs a reimbursements service
func New(db repokit.Queryer, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("reimbursements.Service requires a non nil Queryer")
	}
	if binder == nil {
		panic("reimbursements.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db)}
}

// Get returns the classifier output stored for one document
func (s *Svc) Get(ctx context.Context, in domain.GetInput) (domain.Reimbursement, error) {
	id, err := strconv.ParseInt(in.DocumentID, 10, 64)
	if err != nil {
		return domain.Reimbursement{}, perr.WithField(
			perr.Newf(perr.ErrorCodeMalformedIdentifier, "malformed document_id %q", in.DocumentID),
			"document_id",
		)
	}
	row, err := s.Repo.ByDocumentID(ctx, id)
	if err != nil {
		return domain.Reimbursement{}, err
	}
	return domain.Reimbursement{
		DocumentID:  row.DocumentID,
		Probability: row.Probability,
		Suspicions:  row.Suspicions,
	}, nil
}
