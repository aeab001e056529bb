// Package httputil provides HTTP client utilities with standard configurations.
package httputil

import (
	"net/http"
	"time"
)

const (
	// Default timeout for HTTP requests
	defaultTimeout = 5 * time.Second

	// Transport configuration constants
	maxIdleConns        = 20
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 30 * time.Second
)

// HeaderFunc decorates an outgoing request before it is sent.
type HeaderFunc func(req *http.Request) error

// NewHTTPClient creates a new HTTP client with the specified timeout.
// The client is configured with connection pooling and idle connection management.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(),
	}
}

// NewInterceptingClient creates an HTTP client whose transport runs fn on a clone
// of every request before handing it to the pooled transport.
func NewInterceptingClient(timeout time.Duration, fn HeaderFunc) *http.Client {
	c := NewHTTPClient(timeout)
	c.Transport = &interceptor{base: c.Transport, fn: fn}
	return c
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
	}
}

type interceptor struct {
	base http.RoundTripper
	fn   HeaderFunc
}

func (t *interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	r := req.Clone(req.Context())
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if t.fn != nil {
		if err := t.fn(r); err != nil {
			return nil, err
		}
	}
	return t.base.RoundTrip(r)
}
