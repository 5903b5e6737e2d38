// Package ledger reads immutable snapshots of the duel ledger from the
// stores the arena writes to.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

//go:generate go tool mockgen -destination=mock_source.go -package=ledger . Source

// ErrUnsupportedSource is returned by [Open] for locations it cannot read.
var ErrUnsupportedSource = errors.New("unsupported ledger source")

// Source yields a snapshot of every duel record. Implementations must
// return a fresh slice per call that the caller may keep.
type Source interface {
	Snapshot(ctx context.Context) ([]duel.Record, error)
}

// Format is an on-disk encoding of the ledger.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
	FormatJSON  Format = "json"
)

// Compression wraps a Format.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Open returns the Source for location:
//
//   - sqlite:<path>, *.db, *.sqlite: the arena's evaluations table, opened read-only
//   - https://<account>.blob.core.windows.net/<container>/<blob>: an Azure blob export
//   - *.csv, *.jsonl, *.ndjson, *.json, optionally with .gz or .zst: a local export
//
// The caller must Close sources that implement io.Closer.
func Open(location string) (Source, error) {
	switch {
	case strings.HasPrefix(location, "sqlite:"):
		return OpenSQLiteReadOnly(strings.TrimPrefix(strings.TrimPrefix(location, "sqlite:"), "//"))
	case strings.HasPrefix(location, "https://") && strings.Contains(location, ".blob."):
		return NewBlobSource(location, nil)
	}

	switch strings.ToLower(path.Ext(location)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLiteReadOnly(location)
	}

	if _, _, err := DetectFormat(location); err != nil {
		return nil, err
	}
	return &FileSource{Path: location}, nil
}

// DetectFormat infers the encoding of name from its extensions.
func DetectFormat(name string) (Format, Compression, error) {
	lower := strings.ToLower(name)
	comp := CompressionNone
	switch {
	case strings.HasSuffix(lower, ".gz"):
		comp = CompressionGzip
		lower = strings.TrimSuffix(lower, ".gz")
	case strings.HasSuffix(lower, ".zst"):
		comp = CompressionZstd
		lower = strings.TrimSuffix(lower, ".zst")
	}

	switch path.Ext(lower) {
	case ".csv":
		return FormatCSV, comp, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, comp, nil
	case ".json":
		return FormatJSON, comp, nil
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedSource, name)
}

// Decompress wraps r according to c.
func Decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

// Decode reads every record of r in the given format and validates it.
func Decode(r io.Reader, f Format) ([]duel.Record, error) {
	switch f {
	case FormatCSV:
		rows, err := ReadCSV(r)
		if err != nil {
			return nil, err
		}
		return DecodeRows(rows)
	case FormatJSONL:
		return ReadJSONL(r)
	case FormatJSON:
		return ReadJSON(r)
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedSource, f)
	}
}

// decodeNamed detects the format of name and decodes r accordingly.
func decodeNamed(r io.Reader, name string) ([]duel.Record, error) {
	format, comp, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	rc, err := Decompress(r, comp)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", name, err)
	}
	defer rc.Close() //nolint:errcheck

	return Decode(rc, format)
}
