package clientip

import "net/http"

// Middleware stores the client IP resolved by res in the request context.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithIP(r.Context(), res.IP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Middleware creates HTTP middleware that extracts and stores client IP in context
// using the default header priority.
func Middleware(next http.Handler) http.Handler {
	return defaultResolver.Middleware(next)
}
