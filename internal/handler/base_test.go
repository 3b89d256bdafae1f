package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/statloop/fplsync/internal/errs"
	"github.com/statloop/fplsync/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteRequest struct {
	Name string `json:"name" validate:"required"`
	Note string `json:"note"`
}

func (r *noteRequest) Validate() error { return validation.Struct(r) }

func newNoteRequest() *noteRequest { return &noteRequest{} }

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleWritesJSONWithStatus(t *testing.T) {
	e := echo.New()
	e.POST("/notes", Handle(func(c echo.Context, req *noteRequest) (dataResponse[string], error) {
		return dataResponse[string]{Data: req.Name}, nil
	}, http.StatusCreated, newNoteRequest))

	rec := postJSON(e, "/notes", `{"name":"saka"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":"saka"}`, rec.Body.String())
}

func TestHandleBindsFreshPayloadPerRequest(t *testing.T) {
	e := echo.New()
	e.POST("/notes", Handle(func(c echo.Context, req *noteRequest) (dataResponse[string], error) {
		return dataResponse[string]{Data: req.Note}, nil
	}, http.StatusOK, newNoteRequest))

	first := postJSON(e, "/notes", `{"name":"a","note":"stale"}`)
	assert.JSONEq(t, `{"data":"stale"}`, first.Body.String())

	// The second request omits note; nothing from the first may leak into it.
	second := postJSON(e, "/notes", `{"name":"b"}`)
	assert.JSONEq(t, `{"data":""}`, second.Body.String())
}

func TestHandleValidationFailureIsBadRequest(t *testing.T) {
	fn := Handle(func(c echo.Context, req *noteRequest) (dataResponse[string], error) {
		t.Fatal("handler must not run on invalid input")
		return dataResponse[string]{}, nil
	}, http.StatusOK, newNoteRequest)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := fn(e.NewContext(req, httptest.NewRecorder()))

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
}

func TestHandleNoContentWritesEmptyBody(t *testing.T) {
	e := echo.New()
	e.POST("/notes", HandleNoContent(func(c echo.Context, req *noteRequest) error {
		return nil
	}, http.StatusNoContent, newNoteRequest))

	rec := postJSON(e, "/notes", `{"name":"saka"}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestNewListResponseNilBecomesEmptySlice(t *testing.T) {
	resp := newListResponse[string](nil)

	assert.NotNil(t, resp.Data)
	assert.Zero(t, resp.Count)
}
