package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	perr "jarbas/internal/platform/errors"
	"jarbas/internal/platform/logger"
)

// LoadingLine is written to the operator display once the file is open
const LoadingLine = "Loading suspicions dataset…"

// Row maps column name to its raw string value
type Row = map[string]string

// Reader streams rows from a compressed CSV file
type Reader struct {
	f      *os.File
	dec    io.ReadCloser
	cr     *csv.Reader
	cnt    *counter
	header []string
	kind   Compression
	err    error
	rows   int
}

// counter tallies bytes handed to the csv parser
type counter struct {
	r io.Reader
	n int64
}

func (c *counter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Check resolves path and reports a MissingInput error naming the absolute
// path when no file is there. It touches nothing but the filesystem
func Check(path string) error {
	_, _, err := stat(path)
	return err
}

func stat(path string) (string, os.FileInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	fi, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return abs, nil, perr.MissingInputf("dataset not found: %s", abs)
		}
		return abs, nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "dataset: stat %s", abs)
	}
	if fi.IsDir() {
		return abs, nil, perr.InvalidArgf("dataset: %s is a directory", abs)
	}
	return abs, fi, nil
}

// Open checks that path exists, sniffs its compression and reads the header row.
// LoadingLine is written to display (nil discards it) before any row is decoded
func Open(path string, display io.Writer) (*Reader, error) {
	abs, fi, err := stat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "dataset: open %s", abs)
	}
	rd, err := newReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	logger.Named("dataset").Debug().
		Str("path", abs).
		Str("compression", string(rd.kind)).
		Str("size", humanize.Bytes(uint64(fi.Size()))).
		Msg("dataset: opened")

	if display != nil {
		_, _ = fmt.Fprint(display, LoadingLine+"\r")
	}

	if err := rd.readHeader(); err != nil {
		_ = rd.Close()
		return nil, err
	}
	return rd, nil
}

func newReader(f *os.File) (*Reader, error) {
	br := bufio.NewReaderSize(f, 256*1024)
	kind, err := sniff(br)
	if err != nil {
		return nil, err
	}
	dec, err := decompress(kind, br)
	if err != nil {
		return nil, err
	}
	cnt := &counter{r: dec}
	cr := csv.NewReader(cnt)
	cr.ReuseRecord = true
	return &Reader{f: f, dec: dec, cr: cr, cnt: cnt, kind: kind}, nil
}

func (rd *Reader) readHeader() error {
	if rd.header != nil || rd.err != nil {
		return nil
	}
	rec, err := rd.cr.Read()
	if errors.Is(err, io.EOF) {
		rd.err = io.EOF
		return nil
	}
	if err != nil {
		rd.err = perr.Wrap(err, perr.ErrorCodeInvalidArgument, "dataset: read header")
		return rd.err
	}
	rd.header = make([]string, len(rec))
	for i, name := range rec {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		rd.header[i] = name
	}
	return nil
}

// Next returns the next row keyed by header column; io.EOF when done
func (rd *Reader) Next() (Row, error) {
	if err := rd.readHeader(); err != nil {
		return nil, err
	}
	if rd.err != nil {
		return nil, rd.err
	}
	rec, err := rd.cr.Read()
	if errors.Is(err, io.EOF) {
		rd.err = io.EOF
		return nil, io.EOF
	}
	if err != nil {
		rd.err = perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "dataset: parse row %d", rd.rows+1)
		return nil, rd.err
	}
	row := make(Row, len(rd.header))
	for i, name := range rd.header {
		row[name] = rec[i]
	}
	rd.rows++
	return row, nil
}

// Header returns the column names in source order
func (rd *Reader) Header() []string { return rd.header }

// Compression reports the sniffed container format
func (rd *Reader) Compression() Compression { return rd.kind }

// Stats returns the number of rows parsed and total uncompressed bytes read so far
func (rd *Reader) Stats() (rows int, bytes int64) {
	return rd.rows, rd.cnt.n
}

// Close closes the decompressor and the underlying file
func (rd *Reader) Close() error {
	var first error
	if rd.dec != nil {
		if err := rd.dec.Close(); err != nil {
			first = err
		}
		rd.dec = nil
	}
	if rd.f != nil {
		if err := rd.f.Close(); err != nil && first == nil {
			first = err
		}
		rd.f = nil
	}
	return first
}
