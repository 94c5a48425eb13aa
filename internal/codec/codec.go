// Package codec provides transparent decompression for analysis inputs.
//
// PGN archives and opening book files are commonly distributed zstd- or
// gzip-compressed. NewReader picks a decompressor from the file name so
// callers can treat compressed and plain inputs uniformly.
package codec

import (
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// NewReader wraps r with a decompressor chosen from the extension of name.
// Files ending in .zst are zstd-decoded, .gz gzip-decoded; anything else is
// passed through unchanged. The returned ReadCloser must be closed by the
// caller; closing it does not close r.
func NewReader(name string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	case ".gz":
		dec, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return dec, nil
	default:
		return io.NopCloser(r), nil
	}
}
