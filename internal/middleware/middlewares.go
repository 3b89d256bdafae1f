package middleware

import (
	"github.com/statloop/fplsync/internal/server"
)

// Middlewares groups all middleware components used by the HTTP server, so
// router setup receives one wired object.
type Middlewares struct {
	// Global holds the app-wide middleware: CORS, request logging, recovery,
	// secure headers, and the global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer enriches each request with a request-scoped logger.
	ContextEnhancer *ContextEnhancer
}

// NewMiddlewares constructs all middleware components from the app container.
func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
	}
}
