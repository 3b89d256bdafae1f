// Package middleware holds the HTTP middleware chain: request-id
// correlation, request-scoped logging, CORS/secure/recover, and the global
// error handler that translates internal error envelopes into API responses.
package middleware
