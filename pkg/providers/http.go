package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxErrorBody caps how much of a failed response is kept for display.
const maxErrorBody = 64 * 1024

// HTTPError is returned when a provider answers with a non-2xx status.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s API error: HTTP %d", e.Provider, e.StatusCode)
	if e.Body != "" {
		msg += " - " + e.Body
	}
	return msg
}

// Request describes one JSON POST to a provider endpoint.
type Request struct {
	Provider string
	URL      string
	Headers  map[string]string
	Client   *http.Client
}

// PostJSON marshals payload, posts it, checks for a 2xx status and decodes
// the response into dest.
func PostJSON(ctx context.Context, r Request, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal payload: %w", r.Provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", r.Provider, redactURL(err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", r.Provider, redactURL(err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			Provider:   r.Provider,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%s: decode response: %w", r.Provider, err)
	}
	return nil
}

// redactURL drops the request URL from transport errors. Some providers
// carry the API key in the query string.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
