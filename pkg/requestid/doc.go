// Package requestid attaches a correlation id to every HTTP request.
//
// Middleware reuses a well-formed X-Request-ID header from the caller and
// generates a UUID otherwise. The id is echoed in the response header, stored
// in the request context and picked up by the logger through
// LoggerExtractor, so webhook deliveries and API calls can be traced across
// log records:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware)
package requestid
