package action

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger/zapadapter"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeService struct {
	doc []byte
	err error
}

func (f fakeService) Document(ctx context.Context) ([]byte, error) {
	return f.doc, f.err
}

func serve(service ActionService) *httptest.ResponseRecorder {
	logger := zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logger)
	NewHandler(service, logger).Register(e.Group("/action"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/action", nil))
	return rec
}

func TestList(t *testing.T) {
	rec := serve(fakeService{doc: []byte(`[{"id":1,"inputs":[],"outputs":[],"sources":[]}]`)})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	assert.JSONEq(t, `[{"id":1,"inputs":[],"outputs":[],"sources":[]}]`, rec.Body.String())
}

func TestListMalformedRow(t *testing.T) {
	rec := serve(fakeService{err: apperrors.NewMalformedRowError("action", "id", 0, "is null")})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed row 0 in table 'action'")
}
