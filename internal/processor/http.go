package processor

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	maxResponseBytes = 32 << 20
	maxErrorBody     = 512
)

// caller issues one bounded HTTP POST per call.
type caller struct {
	client  *http.Client
	timeout time.Duration
}

func newCaller(timeout time.Duration) *caller {
	return &caller{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// post sends body to url and returns the response body of a 2xx reply.
// The whole exchange, including reading the body, is bounded by c.timeout.
func (c *caller) post(ctx context.Context, url string, header http.Header, body io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, classifyCall(ctx, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyCall(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyCall(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(strings.TrimSpace(string(data)), maxErrorBody)}
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
