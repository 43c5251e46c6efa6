package httputil

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a whole product download, body included.
	DefaultTimeout = 5 * time.Minute
	UserAgent      = "hyplot/1.0"
)

type userAgentTransport struct {
	base http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	return t.base.RoundTrip(req)
}

// NewClient returns the HTTP client used to download products.
func NewClient() *http.Client {
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: userAgentTransport{base: http.DefaultTransport},
	}
}
