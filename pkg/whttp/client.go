package whttp

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// query parameters that carry vendor credentials and must never hit the logs.
var redactedParams = []string{"key", "access_token", "access_key", "token"}

type LoggingRoundTripper struct {
	Proxied http.RoundTripper
}

func (lrt LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	slog.Info("outbound request", "method", req.Method, "url", redactURL(req.URL))

	res, err := lrt.Proxied.RoundTrip(req)
	if err != nil {
		slog.Error("outbound request failed", "method", req.Method, "url", redactURL(req.URL), "error", err.Error())
		return res, err
	}

	b := bytes.NewBuffer(make([]byte, 0))
	reader := io.TeeReader(res.Body, b)

	body, _ := io.ReadAll(reader)
	slog.Debug("outbound response", "status", res.Status, "body", string(body))

	defer res.Body.Close()

	res.Body = io.NopCloser(b)

	return res, nil
}

func redactURL(u *url.URL) string {
	q := u.Query()
	for _, p := range redactedParams {
		if q.Has(p) {
			q.Set(p, "*****")
		}
	}

	redacted := *u
	redacted.RawQuery = q.Encode()
	return redacted.String()
}

func NewLoggingClient() *http.Client {
	return &http.Client{
		Transport: LoggingRoundTripper{Proxied: http.DefaultTransport},
		Timeout:   10 * time.Second,
	}
}

// NewLoggingClientWithTimeout bounds every request with the given timeout.
// Geocoding vendors get a short leash so a slow provider doesn't stall the
// whole fallback chain.
func NewLoggingClientWithTimeout(timeout time.Duration) *http.Client {
	c := NewLoggingClient()
	c.Timeout = timeout
	return c
}
