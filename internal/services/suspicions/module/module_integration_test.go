//go:build integration_pg

package module

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"testing"
	"time"

	"jarbas/internal/modkit"
	"jarbas/internal/platform/store"
	"jarbas/internal/platform/store/pg/pgtest"
	"jarbas/internal/platform/testkit"
)

func TestRun_Postgres_Integration(t *testing.T) {
	dsn := pgtest.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "jarbas-suspicions-integration",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4},
	})
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if _, err := st.PG.Exec(ctx, `
		CREATE TABLE reimbursements (
			id          bigserial PRIMARY KEY,
			document_id bigint NOT NULL,
			probability double precision,
			suspicions  jsonb
		)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.PG.Exec(ctx, `
		INSERT INTO reimbursements (document_id, probability, suspicions)
		VALUES (111, NULL, NULL), (222, 0.5, '{"stale": true}'), (333, 0.3, NULL), (444, NULL, NULL), (444, NULL, NULL)`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, _ = w.Write([]byte("document_id,probability,bolsa_familia,year\n" +
		"111,0.9,True,2017\n" +
		"222,0.1,False,2017\n" +
		"444,0.7,True,2017\n" +
		"999,0.5,True,2017\n"))
	_ = w.Close()
	path := testkit.TempFile(t, "suspicions.csv.gz", gz.Bytes())

	var out bytes.Buffer
	m := NewWithOptions(modkit.Deps{PG: st.PG, Out: &out}, Options{
		BatchSize: 2, Workers: 2, Journal: true, Table: "reimbursements", LockTimeout: time.Second,
	})
	m.EnsureJournal(ctx)

	for i := 0; i < 2; i++ {
		res, err := m.Ports().(Ports).Runner.Run(ctx, path)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if res.Updated != 2 || res.Rows != 4 {
			t.Fatalf("run %d: %+v", i, res)
		}
	}

	type row struct {
		p *float64
		s []byte
	}
	read := func(doc int64) row {
		var r row
		if err := st.PG.QueryRow(ctx, `SELECT probability, suspicions FROM reimbursements WHERE document_id=$1 LIMIT 1`, doc).Scan(&r.p, &r.s); err != nil {
			t.Fatalf("read %d: %v", doc, err)
		}
		return r
	}

	r111 := read(111)
	var s map[string]bool
	if err := json.Unmarshal(r111.s, &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r111.p == nil || *r111.p != 0.9 || len(s) != 1 || !s["bolsa_familia"] {
		t.Fatalf("111 = %v %s", r111.p, r111.s)
	}
	if r222 := read(222); r222.p == nil || *r222.p != 0.1 || r222.s != nil {
		t.Fatalf("222 = %v %s", r222.p, r222.s)
	}
	if r333 := read(333); *r333.p != 0.3 {
		t.Fatalf("333 touched: %v", *r333.p)
	}
	if r444 := read(444); r444.p != nil {
		t.Fatal("ambiguous 444 was written")
	}

	var runs, done int
	if err := st.PG.QueryRow(ctx, `SELECT count(*), count(*) FILTER (WHERE status = 'done' AND updated = 2) FROM suspicion_runs`).Scan(&runs, &done); err != nil {
		t.Fatalf("journal: %v", err)
	}
	if runs != 2 || done != 2 {
		t.Fatalf("journal runs=%d done=%d", runs, done)
	}
}
