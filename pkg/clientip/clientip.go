package clientip

import (
	"net"
	"net/http"
	"strings"
)

// DefaultHeaders is the proxy header priority used by GetIP.
var DefaultHeaders = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// Resolver extracts the client IP from a request, trusting only the
// configured proxy headers and falling back to RemoteAddr.
type Resolver struct {
	headers []string
}

// NewResolver creates a resolver that trusts the given headers in order.
// With no headers only RemoteAddr is used.
func NewResolver(headers ...string) *Resolver {
	clean := make([]string, 0, len(headers))
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			clean = append(clean, http.CanonicalHeaderKey(h))
		}
	}
	return &Resolver{headers: clean}
}

// NewFromConfig creates a resolver from Config.
func NewFromConfig(cfg Config) *Resolver {
	return NewResolver(cfg.TrustedHeaders...)
}

// IP returns the normalized client IP, or "" when nothing parses.
func (res *Resolver) IP(r *http.Request) string {
	for _, h := range res.headers {
		value := r.Header.Get(h)
		if value == "" {
			continue
		}
		// X-Forwarded-For style lists: the first valid entry is the client.
		for ip := range strings.SplitSeq(value, ",") {
			if parsed := parseIP(ip); parsed != "" {
				return parsed
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

var defaultResolver = NewResolver(DefaultHeaders...)

// GetIP returns the client's IP address using DefaultHeaders.
// Only use it behind a proxy that overwrites those headers.
func GetIP(r *http.Request) string {
	return defaultResolver.IP(r)
}

// parseIP validates and normalizes an IP address string.
// Returns empty string if the IP is invalid.
func parseIP(ipStr string) string {
	ipStr = strings.TrimSpace(ipStr)
	if ipStr == "" {
		return ""
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}
	return ip.String()
}
