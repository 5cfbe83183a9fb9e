package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const userAgent = "openstress/1.0"

var (
	clientMu sync.RWMutex
	client   = &http.Client{Timeout: 30 * time.Second}
)

// HTTPError is returned by DoGet for non-2xx responses.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string // first bytes of the response body
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// SetTimeout replaces the shared HTTP client with one using the given timeout.
func SetTimeout(d time.Duration) {
	clientMu.Lock()
	client = &http.Client{Timeout: d}
	clientMu.Unlock()
}

func httpClient() *http.Client {
	clientMu.RLock()
	defer clientMu.RUnlock()
	return client
}

// DoGet performs a GET request and returns the open response body and status
// code. The caller must close the body. Non-2xx statuses are returned as
// *HTTPError with the body already closed.
func DoGet(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode, &HTTPError{URL: redact(rawURL), StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	return resp.Body, resp.StatusCode, nil
}

// redact masks credentials passed as query parameters so errors can be logged.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	masked := false
	for _, k := range []string{"api_key", "apikey", "token"} {
		if q.Has(k) {
			q.Set(k, "***")
			masked = true
		}
	}
	if !masked {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return u.String()
}
