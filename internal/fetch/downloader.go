// Package fetch downloads published workbooks and caches them per document
// type so concurrent dashboard sessions never stampede the remote host.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"oresync/pkg/telemetry"
)

// The file host serves an HTML interstitial to clients that do not look like
// a desktop browser, so every request carries a browser user-agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultTimeout bounds a single workbook download.
const DefaultTimeout = 60 * time.Second

// Downloader issues single HTTP GETs for resolved workbook URLs. It performs
// no retries; retry policy belongs to the caller.
type Downloader struct {
	client *http.Client
}

// NewDownloader builds a Downloader with the given request timeout
// (DefaultTimeout when zero) and traced outbound transport.
func NewDownloader(timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Downloader{
		client: &http.Client{
			Timeout:   timeout,
			Transport: telemetry.Transport(nil),
		},
	}
}

// Download fetches the raw bytes at url. Any non-2xx status is an error.
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
