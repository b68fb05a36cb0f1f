// Package clientip resolves the client IP address of an HTTP request.
//
// Proxy headers are trivially spoofable by anybody who can reach the service
// directly, so a Resolver only looks at the headers it was told to trust:
//
//	res := clientip.NewResolver("CF-Connecting-IP", "X-Forwarded-For")
//	ip := res.IP(r)
//
// With no trusted headers the address comes from RemoteAddr. GetIP and the
// package level Middleware use DefaultHeaders, suitable behind Cloudflare or
// DigitalOcean App Platform.
//
// Resolved addresses are normalized with net.ParseIP; invalid values yield "".
package clientip
