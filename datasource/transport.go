package datasource

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// loggingTransport logs every round trip to the bot's web server.
type loggingTransport struct {
	base http.RoundTripper
	log  zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.log.Debug().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("request failed")
		return nil, err
	}
	t.log.Debug().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration_ms", time.Since(start)).
		Msg("fetched")
	return resp, nil
}

// newClient returns the client used by web sources, logging to log.
func newClient(log zerolog.Logger) *http.Client {
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: &loggingTransport{base: http.DefaultTransport, log: log},
	}
}
