package ledger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSONL = `{"model_a":"m1","model_b":"m2","species":"tapir","result_code":"A>B"}
{"model_a":"m2","model_b":"m1","species":"tapir","result_code":"A=B"}
`

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		wantFmt  Format
		wantComp Compression
		wantErr  bool
	}{
		{name: "duels.csv", wantFmt: FormatCSV},
		{name: "duels.CSV.gz", wantFmt: FormatCSV, wantComp: CompressionGzip},
		{name: "export/duels.jsonl.zst", wantFmt: FormatJSONL, wantComp: CompressionZstd},
		{name: "duels.ndjson", wantFmt: FormatJSONL},
		{name: "duels.json", wantFmt: FormatJSON},
		{name: "duels.parquet", wantErr: true},
		{name: "duels.gz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, c, err := DetectFormat(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedSource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFmt, f)
			assert.Equal(t, tt.wantComp, c)
		})
	}
}

func TestFileSource_Compressed(t *testing.T) {
	dir := t.TempDir()

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write([]byte(sampleJSONL))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	require.NoError(t, err)
	_, err = zw.Write([]byte(sampleJSONL))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	files := map[string][]byte{
		"plain.jsonl":    []byte(sampleJSONL),
		"gzip.jsonl.gz":  gz.Bytes(),
		"zstd.jsonl.zst": zs.Bytes(),
	}
	for name, data := range files {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(p, data, 0o644))

			src, err := Open(p)
			require.NoError(t, err)

			records, err := src.Snapshot(context.Background())
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "m1", records[0].ModelA)
		})
	}
}

func TestFileSource_ReflectsAppends(t *testing.T) {
	p := filepath.Join(t.TempDir(), "duels.csv")
	require.NoError(t, os.WriteFile(p, []byte("model_a,model_b,species,result_code\nm1,m2,tapir,A>B\n"), 0o644))

	src := &FileSource{Path: p}
	first, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("m2,m3,ocelot,A<B\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	second, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Len(t, first, 1, "earlier snapshot must not change")
}

func TestFileSource_EmptyExports(t *testing.T) {
	for _, name := range []string{"duels.csv", "duels.jsonl", "duels.csv.gz"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), name)
			var data []byte
			if name == "duels.csv.gz" {
				var buf bytes.Buffer
				zw := gzip.NewWriter(&buf)
				require.NoError(t, zw.Close())
				data = buf.Bytes()
			}
			require.NoError(t, os.WriteFile(p, data, 0o644))

			records, err := (&FileSource{Path: p}).Snapshot(context.Background())
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "nope.csv")}
	_, err := src.Snapshot(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_Unsupported(t *testing.T) {
	_, err := Open("duels.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}
