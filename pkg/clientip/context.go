package clientip

import "context"

type ipContextKey struct{}

// WithIP stores the resolved client address in ctx.
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipContextKey{}, ip)
}

// IPFromContext returns the address stored by Resolver.Middleware, or "".
func IPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ipContextKey{}).(string)
	return ip
}
