package handler

import (
	"github.com/statloop/fplsync/internal/server"
)

// Handlers groups all HTTP handlers so router setup passes one object around.
type Handlers struct {
	Health *HealthHandler
	Stats  *StatsHandler
	Sync   *SyncHandler
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(s),
		Stats:  NewStatsHandler(s),
		Sync:   NewSyncHandler(s),
	}
}
