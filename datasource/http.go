package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTP reads resources from a web server.
type HTTP struct {
	base   string
	client *http.Client
}

// NewHTTP returns a Source reading "<base>/<name>" with client, or a default client
// with a 30s timeout when nil.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTP{base: base, client: client}
}

func (h *HTTP) String() string { return h.base }

func (h *HTTP) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	addr := joinPath(h.base, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid resource address %q: %w", addr, err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &StatusError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Location:   fmt.Sprintf("%v%v", resp.Request.URL.Host, resp.Request.URL.Path),
		}
	}
	return resp.Body, nil
}
