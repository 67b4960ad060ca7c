package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"nova/internal/domain"
)

const (
	defaultRequestTimeout = 5 * time.Minute
	fetchMaxRetries       = 2
	fetchRetryBase        = 500 * time.Millisecond
)

// Fetcher downloads artifacts into memory and verifies their integrity.
// Nothing is written to disk here; verification always precedes persistence.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a Fetcher. If httpClient is nil, a client with the
// default transfer timeout is used.
func NewFetcher(httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Fetcher{httpClient: httpClient}
}

// Fetch retrieves the payload at url. Transport errors and 5xx responses are
// retried with capped backoff; any other non-2xx status fails immediately.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var data []byte

	backoff := retry.WithMaxRetries(fetchMaxRetries, retry.NewFibonacci(fetchRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("%w: HTTP %d %s", domain.ErrDownloadFailed, resp.StatusCode, resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: HTTP %d %s", domain.ErrDownloadFailed, resp.StatusCode, resp.Status)
		}

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: reading body: %v", domain.ErrDownloadFailed, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}

// ProgressFunc receives staged progress updates during long-running work.
type ProgressFunc func(domain.ProgressEvent)

// FetchWithProgress retrieves the payload at url, reporting download progress
// through progressFn as bytes arrive. Progress is fractional when the server
// declares a Content-Length and stays at 0 otherwise. No retries: callers of
// this path surface failure to their own supervisor instead.
func (f *Fetcher) FetchWithProgress(ctx context.Context, url string, progressFn ProgressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d %s", domain.ErrDownloadFailed, resp.StatusCode, resp.Status)
	}

	reader := &progressReader{
		reader:     resp.Body,
		totalBytes: resp.ContentLength,
		progressFn: progressFn,
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrDownloadFailed, err)
	}
	return data, nil
}

// progressReader wraps a response body to report download progress.
type progressReader struct {
	reader     io.Reader
	totalBytes int64
	downloaded int64
	progressFn ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.downloaded += int64(n)
		if r.progressFn != nil {
			var fraction float64
			if r.totalBytes > 0 {
				fraction = float64(r.downloaded) / float64(r.totalBytes)
			}
			r.progressFn(domain.ProgressEvent{
				Stage:    domain.StageDownloading,
				Progress: fraction,
				Message:  fmt.Sprintf("Downloading... %.1f%%", fraction*100),
			})
		}
	}
	return n, err
}

// Verify checks data against the registry-declared SHA-256 checksum
// (lowercase hex, exact string equality).
func Verify(data []byte, expected string) error {
	sum := sha256.Sum256(data)
	got := hex.EncodeToString(sum[:])
	if got != expected {
		return fmt.Errorf("%w: expected %s, got %s", domain.ErrChecksumMismatch, expected, got)
	}
	return nil
}

// FetchVerified fetches url and verifies the payload before returning it.
func (f *Fetcher) FetchVerified(ctx context.Context, url, checksum string) ([]byte, error) {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := Verify(data, checksum); err != nil {
		return nil, err
	}
	return data, nil
}
