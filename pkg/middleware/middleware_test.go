package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/Ramsey-B/fern/pkg/context"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getTestLogger() ectologger.Logger {
	return zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
}

func newTestServer(handler echo.HandlerFunc) *echo.Echo {
	logger := getTestLogger()
	e := echo.New()
	e.HTTPErrorHandler = Error(logger)
	e.Use(Context())
	e.Use(Logger(logger))
	e.GET("/test", handler)
	return e
}

func serve(e *echo.Echo, header map[string]string) (*httptest.ResponseRecorder, ErrorResponse) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestContextSetsRequestID(t *testing.T) {
	var seen string
	e := newTestServer(func(c echo.Context) error {
		seen = context.RequestID(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	rec, _ := serve(e, map[string]string{echo.HeaderXRequestID: "req-1"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", rec.Header().Get(echo.HeaderXRequestID))

	rec, _ = serve(e, nil)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestErrorRendersDataSourceError(t *testing.T) {
	e := newTestServer(func(c echo.Context) error {
		return apperrors.NewDataSourceError("query", "action", assert.AnError)
	})

	rec, body := serve(e, map[string]string{echo.HeaderXRequestID: "req-2"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body.Message, "error reading table 'action'")
	assert.NotContains(t, body.Message, assert.AnError.Error())
	assert.Equal(t, "req-2", body.RequestID)
	assert.Equal(t, "action", body.Meta["table"])
}

func TestErrorRendersHTTPError(t *testing.T) {
	e := newTestServer(func(c echo.Context) error {
		return httperror.NewHTTPError(http.StatusServiceUnavailable, "cache offline")
	})

	rec, body := serve(e, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, body.Message, "cache offline")
}

func TestErrorRendersEchoError(t *testing.T) {
	e := newTestServer(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad input")
	})

	rec, body := serve(e, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad input", body.Message)
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	e := newTestServer(func(c echo.Context) error {
		return assert.AnError
	})

	rec, body := serve(e, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", body.Message)
}
