package blast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ErrNotFound is returned for downloads the server doesn't have.
var ErrNotFound = errors.New("not found")

// Downloader streams files over HTTP.
type Downloader struct {
	client *http.Client
}

// NewDownloader returns a Downloader whose requests time out after timeout.
func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{client: &http.Client{Timeout: timeout}}
}

// Download saves the file at url to filename. A partial file is removed
// when the download fails.
func (d *Downloader) Download(ctx context.Context, url, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err = d.Stream(ctx, url, f); err != nil {
		f.Close()
		os.Remove(filename)
		return err
	}
	return f.Close()
}

// Stream writes the body of a GET of url to w.
func (d *Downloader) Stream(ctx context.Context, url string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	rlog.Debugf("GET %s", url)
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("download of %s failed (status %d): %s", url, resp.StatusCode, string(body))
	}

	_, err = io.Copy(w, resp.Body)
	return err
}
