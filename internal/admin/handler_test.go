// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[string]int64

func (f fakeUsers) CountByRole(context.Context) (map[string]int64, error) {
	return f, nil
}

type fakeProjects struct {
	projects    int64
	assignments int64
	err         error
}

func (f fakeProjects) Count(context.Context) (int64, error) {
	return f.projects, f.err
}

func (f fakeProjects) CountAssignments(context.Context) (int64, error) {
	return f.assignments, f.err
}

func newRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestSystemStats(t *testing.T) {
	h := NewHandler(HandlerConfig{
		DBStats: func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25, InUse: 2} },
		DBPing:  func(context.Context) error { return nil },
		RedisPing: func(context.Context) error {
			return errors.New("connection refused")
		},
		Directory: NewDirectory(
			fakeUsers{"Admin": 1, "Developer": 3, "Tester": 2, "Customer Support": 0},
			fakeProjects{projects: 4, assignments: 7},
		),
	})

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body SystemStatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	require.NotNil(t, body.Directory)
	assert.Equal(t, int64(6), body.Directory.Users)
	assert.Equal(t, int64(3), body.Directory.UsersByRole["Developer"])
	assert.Equal(t, int64(4), body.Directory.Projects)
	assert.Equal(t, int64(7), body.Directory.Assignments)

	assert.True(t, body.Database.Healthy)
	require.NotNil(t, body.Database.Stats)
	assert.Equal(t, 25, body.Database.Stats.MaxOpenConnections)
	assert.False(t, body.Redis.Healthy)
	assert.Nil(t, body.Redis.Stats)
	assert.NotEmpty(t, body.Runtime.GoVersion)
}

func TestDirectoryStatsFailure(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Directory: NewDirectory(
			fakeUsers{},
			fakeProjects{err: errors.New("relation does not exist")},
		),
	})

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/directory", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation does not exist")
}

func TestRuntimeStats(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(NewHandler(HandlerConfig{})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/runtime", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body RuntimeStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Positive(t, body.NumCPU)
	assert.Positive(t, body.NumGoroutine)
}
