// Package router initializes the HTTP router (using Echo).
//
// It registers the middleware chain and defines the API route groups,
// mapping paths to their corresponding handlers.
package router

import (
	"net/http"

	"github.com/statloop/fplsync/internal/handler"
	"github.com/statloop/fplsync/internal/middleware"
	"github.com/statloop/fplsync/internal/server"

	"github.com/labstack/echo/v4"
)

// New builds the echo router with the full middleware chain and all routes
// registered. Order matters: request-id first so the context enhancer and the
// request logger see the correlation id.
func New(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	middlewares := middleware.NewMiddlewares(s)
	handlers := handler.NewHandlers(s)

	e.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middlewares.ContextEnhancer.EnhanceContext())
	e.Use(middlewares.Global.RequestLogger())
	e.Use(middlewares.Global.Recover())
	e.Use(middlewares.Global.Secure())
	e.Use(middlewares.Global.CORS())

	registerSystemRoutes(e, handlers)
	registerAPIRoutes(e, handlers)

	return e
}

// registerAPIRoutes maps the versioned API surface.
func registerAPIRoutes(e *echo.Echo, h *handler.Handlers) {
	api := e.Group("/api/v1")

	api.GET("/events", handler.Handle(h.Stats.ListEvents, http.StatusOK, newNoParams))
	api.GET("/events/current", handler.Handle(h.Stats.GetCurrentEvent, http.StatusOK, newNoParams))
	api.GET("/events/:event_id", handler.Handle(h.Stats.GetEvent, http.StatusOK,
		func() *handler.EventPathRequest { return &handler.EventPathRequest{} }))
	api.GET("/teams", handler.Handle(h.Stats.ListTeams, http.StatusOK, newNoParams))
	api.GET("/teams/:team_id", handler.Handle(h.Stats.GetTeam, http.StatusOK,
		func() *handler.TeamPathRequest { return &handler.TeamPathRequest{} }))
	api.GET("/players", handler.Handle(h.Stats.ListPlayers, http.StatusOK, newNoParams))
	api.GET("/players/:player_id", handler.Handle(h.Stats.GetPlayer, http.StatusOK,
		func() *handler.PlayerPathRequest { return &handler.PlayerPathRequest{} }))

	api.GET("/fixtures", handler.Handle(h.Stats.ListFixtures, http.StatusOK,
		func() *handler.ListFixturesRequest { return &handler.ListFixturesRequest{} }))
	api.GET("/events/:event_id/live", handler.Handle(h.Stats.ListLiveStats, http.StatusOK,
		func() *handler.EventPathRequest { return &handler.EventPathRequest{} }))
	api.GET("/events/:event_id/values", handler.Handle(h.Stats.ListPlayerValues, http.StatusOK,
		func() *handler.EventPathRequest { return &handler.EventPathRequest{} }))

	api.GET("/tournaments/:tournament_id/entries", handler.Handle(h.Stats.ListEntries, http.StatusOK,
		func() *handler.ListEntriesRequest { return &handler.ListEntriesRequest{} }))
	api.GET("/entries/:entry_id/picks", handler.Handle(h.Stats.ListPicks, http.StatusOK,
		func() *handler.ListPicksRequest { return &handler.ListPicksRequest{} }))
	api.GET("/entries/:entry_id/results", handler.Handle(h.Stats.ListResults, http.StatusOK,
		func() *handler.ListResultsRequest { return &handler.ListResultsRequest{} }))

	api.POST("/sync", handler.Handle(h.Sync.TriggerSync, http.StatusAccepted,
		func() *handler.SyncRequest { return &handler.SyncRequest{} }))
	api.GET("/sync/jobs/:id", handler.Handle(h.Sync.GetJobStatus, http.StatusOK,
		func() *handler.JobStatusRequest { return &handler.JobStatusRequest{} }))
}

func newNoParams() *handler.NoParams { return &handler.NoParams{} }
