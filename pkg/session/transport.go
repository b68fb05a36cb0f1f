package session

import (
	"net/http"
	"strings"
)

// Transport extracts the session token from a request.
type Transport interface {
	GetToken(r *http.Request) (string, error)
}

// HeaderTransport reads the token from a request header.
type HeaderTransport struct {
	headerName string
	prefix     string
}

// HeaderOption is a functional option for HeaderTransport.
type HeaderOption func(*HeaderTransport)

// WithHeaderPrefix sets a custom prefix for the header value. Default is "Bearer ".
func WithHeaderPrefix(prefix string) HeaderOption {
	return func(t *HeaderTransport) {
		t.prefix = prefix
	}
}

// NewHeaderTransport creates a header-based transport.
func NewHeaderTransport(headerName string, opts ...HeaderOption) *HeaderTransport {
	t := &HeaderTransport{
		headerName: headerName,
		prefix:     "Bearer ",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetToken returns ErrNoToken when the header is missing or has the wrong scheme.
func (t *HeaderTransport) GetToken(r *http.Request) (string, error) {
	value := strings.TrimSpace(r.Header.Get(t.headerName))
	if value == "" {
		return "", ErrNoToken
	}
	if t.prefix != "" {
		if len(value) < len(t.prefix) || !strings.EqualFold(value[:len(t.prefix)], t.prefix) {
			return "", ErrNoToken
		}
		value = strings.TrimSpace(value[len(t.prefix):])
	}
	if value == "" {
		return "", ErrNoToken
	}
	return value, nil
}
