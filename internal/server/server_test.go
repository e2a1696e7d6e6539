// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/admin-console/internal/config"
	"github.com/carterperez-dev/templates/admin-console/internal/health"
)

func newTestServer() (*Server, *health.Handler) {
	h := health.NewHandler("test")
	srv := New(Config{
		ServerConfig:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		HealthHandler: h,
	})
	h.RegisterRoutes(srv.Router())
	return srv, h
}

func TestUnknownRouteReturnsJSON(t *testing.T) {
	srv, _ := newTestServer()

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer()

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPanicIsRecovered(t *testing.T) {
	srv, _ := newTestServer()
	srv.Router().Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestShutdownMarksHealthFailing(t *testing.T) {
	srv, _ := newTestServer()

	require.NoError(t, srv.Shutdown(context.Background(), 0))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
