// Package repo provides read only postgres access for reimbursements
package repo

import (
	"context"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"

	"jarbas/internal/modkit/repokit"
	perr "jarbas/internal/platform/errors"
	"jarbas/internal/platform/store"
)

// Repo is the minimal persistence surface for the read endpoint
type Repo interface {
	ByDocumentID(ctx context.Context, documentID int64) (Row, error)
}

// Row is a reimbursement as stored
type Row struct {
	DocumentID  int64
	Probability *float64
	Suspicions  map[string]bool
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{ table string }
	// queries implements the Repo interface
	queries struct {
		q     repokit.Queryer
		table string
	}
)

// NewPG returns a binder reading from table, "reimbursements" when empty
func NewPG(table string) repokit.Binder[Repo] {
	if table == "" {
		table = "reimbursements"
	}
	return PG{table: pgx.Identifier(strings.Split(table, ".")).Sanitize()}
}

// Bind wires a Queryer to the repo
func (p PG) Bind(q repokit.Queryer) Repo { return &queries{q: q, table: p.table} }

func (r *queries) ByDocumentID(ctx context.Context, documentID int64) (Row, error) {
	sql := `
select document_id, probability, suspicions
from ` + r.table + `
where document_id = $1
limit 2
`
	row, err := store.One(ctx, r.q, scanRow, sql, documentID)
	switch {
	case err == nil:
		return row, nil
	case perr.IsNotFound(err):
		return Row{}, perr.NotFoundf("no reimbursement with document_id %d", documentID)
	case perr.IsAmbiguous(err):
		return Row{}, perr.Ambiguousf("document_id %d matches more than one reimbursement", documentID)
	}
	return Row{}, perr.FromPostgresf(err, "read reimbursement %d", documentID)
}

// scanRow lets pgx decode jsonb straight into the map; sql null leaves it nil.
// A NaN or infinite probability reads as nil since JSON cannot carry it
func scanRow(row store.Row) (Row, error) {
	var out Row
	if err := row.Scan(&out.DocumentID, &out.Probability, &out.Suspicions); err != nil {
		return Row{}, perr.FromPostgres(err, "scan reimbursement")
	}
	if p := out.Probability; p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0)) {
		out.Probability = nil
	}
	return out, nil
}
