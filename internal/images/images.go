// Package images fetches drill images over HTTP for embedding in exports.
// Failures are returned to the caller, which decides to skip the image.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// defaultTimeout bounds a single request when no client is injected.
	defaultTimeout = 10 * time.Second
	// defaultMaxBytes caps the size of a downloaded image.
	defaultMaxBytes = 10 << 20
)

var (
	// ErrUnsupported is returned for content that is not PNG, JPEG or GIF.
	ErrUnsupported = errors.New("images: unsupported image type")
	// ErrTooLarge is returned when the body exceeds the size limit.
	ErrTooLarge = errors.New("images: image too large")
)

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("images: GET %s: status %d", e.URL, e.StatusCode)
}

// Image is a downloaded image with its type in the form fpdf expects
// ("PNG", "JPG" or "GIF").
type Image struct {
	Data []byte
	Type string
}

// Opts holds parameters for creating a Fetcher.
type Opts struct {
	Client   *http.Client  // optional; defaults to a client with Timeout
	Timeout  time.Duration // per-request timeout for the default client
	Retries  int           // extra attempts after the first for retryable failures
	Backoff  time.Duration // wait before the first retry, doubled each time
	MaxBytes int64         // optional body size cap
}

// Fetcher downloads images, retrying network errors, 5xx and 429 responses.
// A Retry-After header on 429 and 503 responses is honoured.
type Fetcher struct {
	client   *retryablehttp.Client
	maxBytes int64
}

// New creates a Fetcher.
func New(opts Opts) *Fetcher {
	hc := opts.Client
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	retries := max(opts.Retries, 0)

	rc := retryablehttp.NewClient()
	rc.HTTPClient = hc
	rc.Logger = nil
	rc.RetryMax = retries
	rc.RetryWaitMin = opts.Backoff
	rc.RetryWaitMax = opts.Backoff << retries
	rc.CheckRetry = retryablehttp.DefaultRetryPolicy
	rc.Backoff = retryablehttp.DefaultBackoff
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	f := &Fetcher{client: rc, maxBytes: opts.MaxBytes}
	if f.maxBytes <= 0 {
		f.maxBytes = defaultMaxBytes
	}
	return f
}

// Fetch downloads the image at url. Content checks happen after the
// transfer, so an unsupported or oversized image is never fetched twice.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Image, error) {
	if url == "" {
		return nil, fmt.Errorf("images: empty url")
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("images: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("images: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("images: read %s: %w", url, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, url)
	}
	typ, ok := DetectType(data)
	if !ok {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupported, url, http.DetectContentType(data))
	}
	return &Image{Data: data, Type: typ}, nil
}

// DetectType sniffs data and returns the fpdf image type.
func DetectType(data []byte) (string, bool) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", true
	case "image/jpeg":
		return "JPG", true
	case "image/gif":
		return "GIF", true
	}
	return "", false
}
