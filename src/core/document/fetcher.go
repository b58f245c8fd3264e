package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const blobScheme = "blob://"

// BlobStore reads raw document bytes from object storage, for sources of the
// form blob://object-name.
type BlobStore interface {
	GetObject(ctx context.Context, name string) ([]byte, error)
}

// HTTPFetcher downloads a source document into a scratch directory and
// returns the local path. Sources may be http(s) URLs or blob:// references
// into object storage.
type HTTPFetcher struct {
	client     *http.Client
	blobs      BlobStore // nil disables blob:// sources
	scratchDir string
}

func NewHTTPFetcher(client *http.Client, blobs BlobStore, scratchDir string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if scratchDir == "" {
		scratchDir = "temp_docs"
	}

	return &HTTPFetcher{
		client:     client,
		blobs:      blobs,
		scratchDir: scratchDir,
	}
}

// Fetch resolves the source to raw bytes and writes them to a uniquely named
// file under the scratch directory, keeping the source's file extension so
// loaders can dispatch on it.
func (f *HTTPFetcher) Fetch(ctx context.Context, source string) (string, error) {
	var data []byte
	var err error

	switch {
	case strings.HasPrefix(source, blobScheme):
		if f.blobs == nil {
			return "", &LoadError{Source: source, Err: fmt.Errorf("blob sources are not configured")}
		}
		data, err = f.blobs.GetObject(ctx, strings.TrimPrefix(source, blobScheme))
	default:
		data, err = f.download(ctx, source)
	}
	if err != nil {
		return "", &LoadError{Source: source, Err: err}
	}

	if err := os.MkdirAll(f.scratchDir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}

	name := uuid.New().String() + sourceExtension(source)
	localPath := filepath.Join(f.scratchDir, name)
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write document to scratch dir: %w", err)
	}

	return localPath, nil
}

func (f *HTTPFetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// sourceExtension extracts the lowercased file extension from a source
// locator, ignoring any query string.
func sourceExtension(source string) string {
	source = strings.TrimPrefix(source, blobScheme)
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		source = source[:i]
	}
	return strings.ToLower(path.Ext(source))
}
