package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/dmitrymomot/subgate/pkg/clientip"
	"github.com/dmitrymomot/subgate/pkg/session"
)

// maxKeyLength is the longest client key stored verbatim.
const maxKeyLength = 64

// KeyFunc extracts the client identity from a request.
// An empty result means the client cannot be identified.
type KeyFunc func(*http.Request) string

// ByIP identifies clients by address.
func ByIP(res *clientip.Resolver) KeyFunc {
	return func(r *http.Request) string {
		if ip := clientip.IPFromContext(r.Context()); ip != "" {
			return "ip:" + ip
		}
		if ip := res.IP(r); ip != "" {
			return "ip:" + ip
		}
		return ""
	}
}

// ByAccount identifies authenticated clients by account and anonymous ones
// by address. Use it after the session middleware.
func ByAccount(res *clientip.Resolver) KeyFunc {
	byIP := ByIP(res)
	return func(r *http.Request) string {
		if id, ok := session.AccountIDFromContext(r.Context()); ok {
			return "acct:" + id.String()
		}
		return byIP(r)
	}
}

// Composite combines multiple key extraction functions into a single key.
// Keys longer than 64 characters are replaced by a 128-bit SHA-256 prefix.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}
		if len(parts) == 0 {
			return ""
		}

		combined := strings.Join(parts, ":")
		if len(combined) > maxKeyLength {
			hash := sha256.Sum256([]byte(combined))
			return hex.EncodeToString(hash[:16])
		}
		return combined
	}
}
