package metadata

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// ImageCache optionally mirrors remote artwork into a local directory so the
// stored metadata doesn't depend on the provider's CDN staying up.
type ImageCache struct {
	dir    string
	client *http.Client
}

func NewImageCache(dir string) *ImageCache {
	return &ImageCache{
		dir:    dir,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// MaybeDownload fetches a remote image into dir/subdir/ under the given base
// name, with the extension sniffed from the bytes. It returns the local
// relative path. Any failure falls back to the original URL so a flaky
// download never blocks a scan.
func (c *ImageCache) MaybeDownload(ctx context.Context, rawURL, subdir, baseName string) string {
	if rawURL == "" {
		return ""
	}

	local, err := c.download(ctx, rawURL, subdir, baseName)
	if err != nil {
		return rawURL
	}
	return local
}

func (c *ImageCache) download(ctx context.Context, rawURL, subdir, baseName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.WithStack(err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("image download returned %d", resp.StatusCode)
	}

	// Artwork is small enough to buffer, and sniffing the content gives the
	// real extension regardless of what the URL claims.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.WithStack(err)
	}
	filename := baseName + mimetype.Detect(body).Extension()

	targetDir := filepath.Join(c.dir, subdir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", errors.WithStack(err)
	}

	target := filepath.Join(targetDir, filename)
	if err := os.WriteFile(target, body, 0o644); err != nil {
		return "", errors.WithStack(err)
	}

	return filepath.Join(subdir, filename), nil
}
