package dataset

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	perr "jarbas/internal/platform/errors"
	"jarbas/internal/platform/testkit"
)

const sample = "document_id,probability,bolsa_familia,year\n" +
	"111,0.9,True,2017\n" +
	"222,0.1,False,2017\n" +
	"999,0.5,True,2017\n"

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := io.WriteString(w, s); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func xzed(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	if _, err := io.WriteString(w, s); err != nil {
		t.Fatalf("xz write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("xz close: %v", err)
	}
	return buf.Bytes()
}

func zstded(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := io.WriteString(w, s); err != nil {
		t.Fatalf("zstd write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zstd close: %v", err)
	}
	return buf.Bytes()
}

func readAll(t *testing.T, rd *Reader) []Row {
	t.Helper()
	var out []Row
	for {
		row, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, row)
	}
}

func TestOpen_Formats(t *testing.T) {
	cases := []struct {
		name string
		kind Compression
		data func(*testing.T, string) []byte
	}{
		{"suspicions.xz", XZ, xzed},
		{"suspicions.gz", Gzip, gzipped},
		{"suspicions.zst", Zstd, zstded},
	}
	for _, c := range cases {
		t.Run(string(c.kind), func(t *testing.T) {
			path := testkit.TempFile(t, c.name, c.data(t, sample))

			var display bytes.Buffer
			rd, err := Open(path, &display)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer func() { _ = rd.Close() }()

			if rd.Compression() != c.kind {
				t.Fatalf("compression = %q, want %q", rd.Compression(), c.kind)
			}
			if got := display.String(); got != LoadingLine+"\r" {
				t.Fatalf("display = %q", got)
			}
			if h := strings.Join(rd.Header(), ","); h != "document_id,probability,bolsa_familia,year" {
				t.Fatalf("header = %q", h)
			}

			rows := readAll(t, rd)
			if len(rows) != 3 {
				t.Fatalf("rows = %d, want 3", len(rows))
			}
			if rows[0]["document_id"] != "111" || rows[0]["bolsa_familia"] != "True" {
				t.Fatalf("row 0 = %v", rows[0])
			}
			if rows[2]["probability"] != "0.5" {
				t.Fatalf("row 2 = %v", rows[2])
			}

			n, b := rd.Stats()
			if n != 3 || b != int64(len(sample)) {
				t.Fatalf("stats = (%d, %d), want (3, %d)", n, b, len(sample))
			}

			// stays at EOF
			if _, err := rd.Next(); !errors.Is(err, io.EOF) {
				t.Fatalf("Next after EOF = %v", err)
			}
		})
	}
}

func TestOpen_RowsAreIndependent(t *testing.T) {
	path := testkit.TempFile(t, "s.gz", gzipped(t, sample))
	rd, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = rd.Close() }()

	rows := readAll(t, rd)
	if rows[0]["document_id"] == rows[1]["document_id"] {
		t.Fatalf("rows share backing storage: %v", rows)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.xz")
	var display bytes.Buffer
	_, err := Open(path, &display)
	if !perr.IsCode(err, perr.ErrorCodeMissingInput) {
		t.Fatalf("err = %v, want missing input", err)
	}
	testkit.MustContain(t, err.Error(), path)
	if display.Len() != 0 {
		t.Fatalf("display written before failing: %q", display.String())
	}
}

func TestOpen_RelativePathReportedAbsolute(t *testing.T) {
	_, err := Open("definitely-not-here.xz", nil)
	if !perr.IsCode(err, perr.ErrorCodeMissingInput) {
		t.Fatalf("err = %v", err)
	}
	abs, _ := filepath.Abs("definitely-not-here.xz")
	testkit.MustContain(t, err.Error(), abs)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope.xz")
	err := Check(missing)
	if !perr.IsCode(err, perr.ErrorCodeMissingInput) {
		t.Fatalf("missing: err = %v", err)
	}
	testkit.MustContain(t, err.Error(), missing)

	if err := Check(dir); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("directory: err = %v", err)
	}

	// Check looks at the path only, so content is not sniffed
	if err := Check(testkit.TempFile(t, "plain.csv", []byte(sample))); err != nil {
		t.Fatalf("existing file: %v", err)
	}
}

func TestOpen_UnknownMagic(t *testing.T) {
	path := testkit.TempFile(t, "plain.csv", []byte(sample))
	_, err := Open(path, nil)
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
	testkit.MustContain(t, err.Error(), "unrecognized compression")
}

func TestOpen_Directory(t *testing.T) {
	_, err := Open(t.TempDir(), nil)
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

func TestNext_ShortRowIsFatal(t *testing.T) {
	data := "document_id,probability\n111,0.9\n222\n333,0.1\n"
	path := testkit.TempFile(t, "short.gz", gzipped(t, data))
	rd, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = rd.Close() }()

	if _, err := rd.Next(); err != nil {
		t.Fatalf("first row: %v", err)
	}
	_, err = rd.Next()
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("short row err = %v", err)
	}
	// sticky
	if _, again := rd.Next(); again != err {
		t.Fatalf("error not sticky: %v", again)
	}
}

func TestOpen_EmptyStream(t *testing.T) {
	path := testkit.TempFile(t, "empty.gz", gzipped(t, ""))
	rd, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = rd.Close() }()
	if _, err := rd.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next = %v, want EOF", err)
	}
}

func TestOpen_HeaderWithoutDocumentID(t *testing.T) {
	path := testkit.TempFile(t, "nodoc.gz", gzipped(t, "probability,x\n0.3,1\n"))
	rd, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = rd.Close() }()
	rows := readAll(t, rd)
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	if _, ok := rows[0]["document_id"]; ok {
		t.Fatalf("unexpected document_id column: %v", rows[0])
	}
}

func TestOpen_StripsBOM(t *testing.T) {
	path := testkit.TempFile(t, "bom.gz", gzipped(t, "\ufeffdocument_id\n7\n"))
	rd, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = rd.Close() }()
	rows := readAll(t, rd)
	if rows[0]["document_id"] != "7" {
		t.Fatalf("row = %v", rows[0])
	}
}

func TestClose_Idempotent(t *testing.T) {
	path := testkit.TempFile(t, "s.zst", zstded(t, sample))
	rd, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := rd.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := rd.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
