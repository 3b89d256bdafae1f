package handler

import (
	"time"

	"github.com/statloop/fplsync/internal/middleware"
	"github.com/statloop/fplsync/internal/server"
	"github.com/statloop/fplsync/internal/validation"

	"github.com/labstack/echo/v4"
)

// Handler is the base handler type holding shared application dependencies.
// Concrete handlers embed it to reach config, services, and the job client
// through *server.Server.
type Handler struct {
	server *server.Server
}

// NewHandler constructs a base Handler. Returned by value: the struct only
// holds a pointer, so copies share the same Server.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// listResponse is the collection envelope: `{"data": [...], "count": n}`.
type listResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

func newListResponse[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Data: items, Count: len(items)}
}

// dataResponse is the singular envelope: `{"data": {...}}`.
type dataResponse[T any] struct {
	Data T `json:"data"`
}

// HandlerFunc is a typed endpoint function: it receives a bound and validated
// request payload and returns the response body or an error. Req is a pointer
// type so echo's Bind can populate it.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// ResponseHandler decides how a successful handler result is written.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	GetOperation() string
}

// JSONResponseHandler writes JSON responses with a fixed status code.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

// NoContentResponseHandler writes responses with no body.
type NoContentResponseHandler struct {
	status int
}

func (h NoContentResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.NoContent(h.status)
}

func (h NoContentResponseHandler) GetOperation() string {
	return "handler_no_content"
}

// handleRequest is the shared execution pipeline for every endpoint:
// bind + validate, run the typed handler, log timings, write the response.
// Errors are returned to echo so the global error handler formats them.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", c.Request().Method).
		Str("route", c.Path()).
		Logger()

	if err := validation.BindAndValidate(c, req); err != nil {
		logger.Warn().Err(err).Msg("request validation failed")
		return err
	}

	result, err := handler(c, req)
	if err != nil {
		logger.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("handler execution failed")
		return err
	}

	logger.Debug().
		Dur("duration", time.Since(start)).
		Msg("request completed")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed handler into an echo.HandlerFunc with the shared
// pipeline, writing the result as JSON with the given status. newReq builds a
// fresh payload per request; binding into a shared instance would race under
// concurrent requests.
func Handle[Req validation.Validatable, Res any](
	handler HandlerFunc[Req, Res],
	status int,
	newReq func() Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newReq(), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleNoContent wraps a typed handler for endpoints that return no body.
func HandleNoContent[Req validation.Validatable](
	handler func(c echo.Context, req Req) error,
	status int,
	newReq func() Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newReq(), func(c echo.Context, req Req) (interface{}, error) {
			return nil, handler(c, req)
		}, NoContentResponseHandler{status: status})
	}
}
