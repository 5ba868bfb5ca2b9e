package dataset

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	perr "jarbas/internal/platform/errors"
)

// Compression names a supported container format
type Compression string

const (
	// XZ is the format the dataset is published in
	XZ Compression = "xz"
	// Gzip is accepted for locally recompressed copies
	Gzip Compression = "gzip"
	// Zstd is accepted for locally recompressed copies
	Zstd Compression = "zstd"
)

var magics = []struct {
	kind  Compression
	magic []byte
}{
	{XZ, []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}},
	{Gzip, []byte{0x1F, 0x8B}},
	{Zstd, []byte{0x28, 0xB5, 0x2F, 0xFD}},
}

// sniff peeks at the leading bytes of br without consuming them
func sniff(br *bufio.Reader) (Compression, error) {
	head, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "dataset: read header bytes")
	}
	for _, m := range magics {
		if bytes.HasPrefix(head, m.magic) {
			return m.kind, nil
		}
	}
	return "", perr.InvalidArgf("dataset: unrecognized compression (magic % x)", head)
}

// decompress returns a stream of uncompressed bytes for kind
func decompress(kind Compression, r io.Reader) (io.ReadCloser, error) {
	switch kind {
	case XZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "dataset: open xz stream")
		}
		return io.NopCloser(xr), nil
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "dataset: open gzip stream")
		}
		return gz, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "dataset: open zstd stream")
		}
		return zr.IOReadCloser(), nil
	}
	return nil, perr.InvalidArgf("dataset: unsupported compression %q", kind)
}
