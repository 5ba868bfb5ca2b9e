// Package http provides http transport for reimbursements
package http

import (
	stdhttp "net/http"

	"jarbas/internal/modkit/httpkit"
	"jarbas/internal/services/api/reimbursements/domain"
	svc "jarbas/internal/services/api/reimbursements/service"
)

// Register mounts reimbursement endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.GetParams[domain.GetInput](r, "/{document_id}", h.get)
}

type handlers struct{ svc svc.Service }

// get answers GET /reimbursements/{document_id}.
// 404 when nothing matches, 409 when several rows share the id, 422 for a non numeric id
func (h *handlers) get(r *stdhttp.Request, in domain.GetInput) (any, error) {
	return h.svc.Get(r.Context(), in)
}
