// Package repo provides postgres access for the suspicions loader
package repo

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jackc/pgx/v5"

	"jarbas/internal/modkit/repokit"
	perr "jarbas/internal/platform/errors"
	"jarbas/internal/platform/store"
	pstrings "jarbas/internal/platform/strings"
	"jarbas/internal/services/suspicions/domain"
)

// DefaultTable is the reimbursements table the loader updates
const DefaultTable = "reimbursements"

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG struct{ table string }

	queries struct {
		q     repokit.Queryer
		table string
	}
)

// NewPG returns a Postgres binder for domain.StorageRepo over table,
// which may be schema qualified ("public.reimbursements")
func NewPG(table string) repokit.Binder[domain.StorageRepo] {
	if table == "" {
		table = DefaultTable
	}
	return PG{table: quoteIdent(table)}
}

// Bind implements repokit.Binder
func (p PG) Bind(q repokit.Queryer) domain.StorageRepo {
	return &queries{q: repokit.RequireQueryer(q), table: p.table}
}

// FindByDocumentID loads at most two rows so ambiguity is detectable without a count
func (r *queries) FindByDocumentID(ctx context.Context, documentID int64) (domain.Reimbursement, error) {
	sql := `
		SELECT id, document_id, probability, suspicions
		FROM ` + r.table + `
		WHERE document_id = $1
		LIMIT 2
	`
	got, err := store.One(ctx, r.q, scanReimbursement, sql, documentID)
	switch {
	case err == nil:
		return got, nil
	case perr.IsNotFound(err):
		return domain.Reimbursement{}, perr.NotFoundf("reimbursement with document_id %d not found", documentID)
	case perr.IsAmbiguous(err):
		return domain.Reimbursement{}, perr.Ambiguousf("more than one reimbursement with document_id %d", documentID)
	case perr.IsUndefinedTable(err):
		return domain.Reimbursement{}, perr.FromPostgresf(err, "reimbursements table %s is missing", r.table)
	}
	return domain.Reimbursement{}, perr.FromPostgresf(err, "find reimbursement %d", documentID)
}

func scanReimbursement(row store.Row) (domain.Reimbursement, error) {
	var (
		out  domain.Reimbursement
		flag []byte
	)
	if err := row.Scan(&out.ID, &out.DocumentID, &out.Probability, &flag); err != nil {
		return out, perr.FromPostgres(err, "scan reimbursement")
	}
	s, err := decodeSuspicions(flag)
	if err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeDB, "reimbursement %d: decode suspicions", out.ID)
	}
	out.Suspicions = s
	return out, nil
}

// BulkUpdate writes probability and suspicions for every row in one UPDATE joined
// against UNNEST arrays; other columns are never touched
func (r *queries) BulkUpdate(ctx context.Context, rs []domain.Reimbursement) (int, error) {
	if len(rs) == 0 {
		return 0, nil
	}
	ids := make([]int64, len(rs))
	probs := make([]*float64, len(rs))
	flags := make([]*string, len(rs))
	for i, x := range rs {
		ids[i] = x.ID
		probs[i] = x.Probability
		enc, err := encodeSuspicions(x.Suspicions)
		if err != nil {
			return 0, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "reimbursement %d: encode suspicions", x.ID)
		}
		flags[i] = enc
	}

	sql := `
		UPDATE ` + r.table + ` AS t
		SET probability = u.probability,
		    suspicions  = u.suspicions::jsonb
		FROM UNNEST($1::bigint[], $2::double precision[], $3::text[])
		     AS u(id, probability, suspicions)
		WHERE t.id = u.id
	`
	n, err := store.Exec(ctx, r.q, sql, ids, probs, flags)
	if err != nil {
		return 0, perr.FromPostgresf(err, "bulk update %d reimbursements", len(rs))
	}
	return int(n), nil
}

// EnsureJournal creates the run journal table when it does not exist
func EnsureJournal(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS suspicion_runs (
			id          uuid PRIMARY KEY,
			dataset     text NOT NULL,
			batch_size  int NOT NULL,
			workers     int NOT NULL,
			started_at  timestamptz NOT NULL,
			finished_at timestamptz,
			status      text NOT NULL,
			batches     int NOT NULL DEFAULT 0,
			rows_read   bigint NOT NULL DEFAULT 0,
			updated     bigint NOT NULL DEFAULT 0,
			bytes_read  bigint NOT NULL DEFAULT 0,
			elapsed_ms  int NOT NULL DEFAULT 0,
			error       text
		)
	`)
	return perr.FromPostgres(err, "create suspicion_runs")
}

// StartRun inserts the journal row for a run
func (r *queries) StartRun(ctx context.Context, run domain.RunStart) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO suspicion_runs (id, dataset, batch_size, workers, started_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.ID, run.Dataset, run.BatchSize, run.Workers, run.StartedAt.UTC(), domain.RunRunning)
	return perr.FromPostgres(err, "start run")
}

// FinishRun records the outcome of a run
func (r *queries) FinishRun(ctx context.Context, run domain.RunStart, fin domain.RunFinish) error {
	_, err := r.q.Exec(ctx, `
		UPDATE suspicion_runs SET
			finished_at = now(),
			status      = $2,
			batches     = $3,
			rows_read   = $4,
			updated     = $5,
			bytes_read  = $6,
			elapsed_ms  = $7,
			error       = $8
		WHERE id = $1
	`, run.ID, fin.Status, fin.Batches, fin.Rows, fin.Updated, fin.Bytes, fin.ElapsedMS, pstrings.SQLNull(fin.ErrText))
	return perr.FromPostgres(err, "finish run")
}

// encodeSuspicions renders the flag set as a JSON object, nil for SQL NULL
func encodeSuspicions(s map[string]bool) (*string, error) {
	if len(s) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	out := string(b)
	return &out, nil
}

// decodeSuspicions parses a stored flag set; NULL and JSON null give nil
func decodeSuspicions(b []byte) (map[string]bool, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var out map[string]bool
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// quoteIdent sanitizes a possibly schema qualified table name
func quoteIdent(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}
