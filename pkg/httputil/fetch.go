package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxBodySize caps the size of a fetched document.
const MaxBodySize = 64 << 20

// DefaultTimeout bounds a single attempt when Fetch builds its own client.
const DefaultTimeout = 30 * time.Second

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// Fetch GETs url and returns the body. A nil client uses one with
// [DefaultTimeout]. Transient failures are retried with [RetryWithBackoff].
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		b, err := get(ctx, client, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		serr := &StatusError{URL: url, Status: resp.StatusCode}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, &RetryableError{Err: serr}
		}
		return nil, serr
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if len(b) > MaxBodySize {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", url, MaxBodySize)
	}
	return b, nil
}
