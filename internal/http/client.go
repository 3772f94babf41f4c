package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// ErrMaxRetries is returned when a request keeps failing at the transport
// level (or with a transient status) until the retry budget is exhausted.
var ErrMaxRetries = errors.New("max retries exceeded")

// StatusError is a non-transient HTTP error status. It is returned
// immediately, without retrying, for any status the client does not treat
// as retryable.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// transient reports whether a status code is worth retrying. The origin
// sits behind a flaky gateway that intermittently answers 502; every other
// error status is considered permanent.
func transient(code int) bool {
	return code == http.StatusBadGateway
}

// Client wraps HTTP operations with retry/backoff behaviour shared by every
// network-facing component.
//
// Client provides:
//   - GET and POST-with-JSON-body requests with bounded linear-backoff retry
//   - Content-Length resolution via HEAD with a streamed-GET fallback
//   - File download streaming with progress tracking
//
// Transport failures and transient statuses are retried up to the configured
// count, sleeping baseDelay × attempt between tries; retry exhaustion yields
// an error wrapping ErrMaxRetries. Permanent error statuses surface as
// *StatusError without any retry.
type Client struct {
	httpClient *http.Client
	userAgent  string
	retries    int
	baseDelay  time.Duration
}

// NewClient creates a Client.
//
// timeout bounds each individual attempt, retries is the per-call attempt
// budget and baseDelay is the first backoff sleep (later sleeps grow
// linearly with the attempt number).
func NewClient(timeout time.Duration, retries int, baseDelay time.Duration) *Client {
	if retries < 1 {
		retries = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		retries:   retries,
		baseDelay: baseDelay,
	}
}

// Get performs a GET request and returns the response body as bytes.
// params, if non-nil, is encoded into the query string.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL, params, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// PostJSON performs a POST request with a JSON-encoded body and returns the
// response body as bytes.
func (c *Client) PostJSON(ctx context.Context, rawURL string, params url.Values, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, rawURL, params, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// ContentLength resolves the remote size of a file.
//
// A HEAD request is tried first. Some origins disallow HEAD, so any HEAD
// failure falls back to a GET whose body is closed right after the headers
// arrive. If both fail, or no Content-Length is reported, the size resolves
// to 0, meaning "unknown"; ContentLength never returns an error.
func (c *Client) ContentLength(ctx context.Context, rawURL string) int64 {
	resp, err := c.do(ctx, http.MethodHead, rawURL, nil, nil)
	if err == nil {
		resp.Body.Close()
		if resp.ContentLength > 0 {
			return resp.ContentLength
		}
	}

	// HEAD rejected or size missing, probe with a streamed GET.
	resp, err = c.do(ctx, http.MethodGet, rawURL, nil, nil)
	if err != nil {
		return 0
	}
	resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0
	}
	return resp.ContentLength
}

// ProgressWriter wraps a writer to track download progress.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// DownloadFile streams a URL to the given path, overwriting any existing
// (possibly partial) file.
//
// Establishing the response goes through the usual retry policy; a failure
// while streaming the body is returned as-is and is the caller's to classify.
// onProgress may be nil.
func (c *Client) DownloadFile(ctx context.Context, rawURL, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer file.Close()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	_, err = io.Copy(writer, resp.Body)
	return err
}

// do runs one logical request through the retry loop. On success the caller
// owns resp.Body.
func (c *Client) do(ctx context.Context, method, rawURL string, params url.Values, body []byte) (*http.Response, error) {
	reqURL := rawURL
	if len(params) > 0 {
		sep := "?"
		if u, err := url.Parse(rawURL); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		reqURL = rawURL + sep + params.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if serr := c.sleepBeforeRetry(ctx, attempt); serr != nil {
				return nil, serr
			}
			continue
		}

		if transient(resp.StatusCode) {
			resp.Body.Close()
			lastErr = &StatusError{Code: resp.StatusCode, Status: resp.Status}
			if serr := c.sleepBeforeRetry(ctx, attempt); serr != nil {
				return nil, serr
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrMaxRetries, c.retries, lastErr)
}

// sleepBeforeRetry waits baseDelay times the attempt number, honouring
// context cancellation. The last attempt exits without sleeping.
func (c *Client) sleepBeforeRetry(ctx context.Context, attempt int) error {
	if attempt >= c.retries {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.baseDelay * time.Duration(attempt)):
		return nil
	}
}
