package ledger

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	body      string
	err       error
	container string
	blob      string
}

func (f *fakeDownloader) DownloadStream(_ context.Context, containerName, blobName string, _ *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error) {
	f.container, f.blob = containerName, blobName
	if f.err != nil {
		return azblob.DownloadStreamResponse{}, f.err
	}
	return azblob.DownloadStreamResponse{
		DownloadResponse: blob.DownloadResponse{Body: io.NopCloser(strings.NewReader(f.body))},
	}, nil
}

func TestBlobSource_Snapshot(t *testing.T) {
	fake := &fakeDownloader{body: sampleJSONL}
	src := &BlobSource{client: fake, container: "arena", blob: "exports/duels.jsonl"}

	records, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "arena", fake.container)
	assert.Equal(t, "exports/duels.jsonl", fake.blob)
}

func TestBlobSource_DownloadError(t *testing.T) {
	boom := errors.New("boom")
	src := &BlobSource{client: &fakeDownloader{err: boom}, container: "arena", blob: "duels.csv"}

	_, err := src.Snapshot(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSplitBlobURL(t *testing.T) {
	svc, container, name, err := splitBlobURL("https://acct.blob.core.windows.net/arena/exports/duels.csv.gz")
	require.NoError(t, err)
	assert.Equal(t, "https://acct.blob.core.windows.net/", svc)
	assert.Equal(t, "arena", container)
	assert.Equal(t, "exports/duels.csv.gz", name)

	_, _, _, err = splitBlobURL("https://acct.blob.core.windows.net/arena")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}
