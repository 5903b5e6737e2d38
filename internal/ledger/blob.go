package ledger

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/camtrap-arena/duelrank/internal/duel"
)

// blobDownloader is the subset of *azblob.Client used by BlobSource.
type blobDownloader interface {
	DownloadStream(ctx context.Context, containerName, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// BlobSource reads a ledger export stored in Azure Blob Storage. The blob
// name decides the format, as for [FileSource].
type BlobSource struct {
	client    blobDownloader
	container string
	blob      string
}

// NewBlobSource builds a source for a blob URL of the form
// https://<account>.blob.core.windows.net/<container>/<blob>.
// A nil cred falls back to the default Azure credential chain.
func NewBlobSource(blobURL string, cred azcore.TokenCredential) (*BlobSource, error) {
	serviceURL, container, blob, err := splitBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	if cred == nil {
		cred, err = azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("azure credential: %w", err)
		}
	}

	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azure blob client: %w", err)
	}
	return &BlobSource{client: client, container: container, blob: blob}, nil
}

func splitBlobURL(raw string) (serviceURL, container, blob string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", "", fmt.Errorf("blob url: %w", err)
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if u.Host == "" || len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("%w: blob url %q needs a container and blob name", ErrUnsupportedSource, raw)
	}
	return u.Scheme + "://" + u.Host + "/", parts[0], parts[1], nil
}

// Snapshot implements [Source].
func (s *BlobSource) Snapshot(ctx context.Context) ([]duel.Record, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, s.blob, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: download %s/%s: %w", s.container, s.blob, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	records, err := decodeNamed(resp.Body, s.blob)
	if err != nil {
		return nil, fmt.Errorf("ledger: %s/%s: %w", s.container, s.blob, err)
	}
	return records, nil
}
