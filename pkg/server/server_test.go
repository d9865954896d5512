package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/Ramsey-B/fern/pkg/health"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCatalog struct{}

func (fakeCatalog) Document(ctx context.Context) ([]byte, error) {
	return []byte(`[{"id":1,"inputs":[],"outputs":[],"sources":[]}]`), nil
}

func (fakeCatalog) Items(ctx context.Context) ([]models.Row, error) {
	return []models.Row{models.RowOf("id", "ore")}, nil
}

func (fakeCatalog) Ping(ctx context.Context) error {
	return nil
}

func newTestServer() *Server {
	logger := zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
	checker := health.NewChecker(fakeCatalog{}, nil, "test")
	return New(Config{
		AppName:         "fern-test",
		Address:         "127.0.0.1:0",
		AllowOrigins:    []string{"*"},
		ShutdownTimeout: time.Second,
	}, fakeCatalog{}, checker, logger)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		path string
		body string
	}{
		{"/", `{"status":"ok","message":"API alive","links":["/health","/item","/action"]}`},
		{"/health", `{"status":"ok"}`},
		{"/item", `[{"id":"ore"}]`},
		{"/action", `[{"id":1,"inputs":[],"outputs":[],"sources":[]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s, tt.path)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer()
	get(t, s, "/item")

	rec := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fern_http_server_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	rec := get(t, newTestServer(), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/item", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
