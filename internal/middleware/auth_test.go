// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/admin-console/internal/core"
)

type fakeVerifier struct {
	tokens map[string]*AccessTokenClaims
	err    map[string]error
}

func (f *fakeVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	if err, ok := f.err[token]; ok {
		return nil, err
	}
	if claims, ok := f.tokens[token]; ok {
		return claims, nil
	}
	return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
}

func newVerifier() *fakeVerifier {
	return &fakeVerifier{
		tokens: map[string]*AccessTokenClaims{
			"admin-token": {UserID: 1, Username: "root", Role: RoleAdmin},
			"dev-token":   {UserID: 2, Username: "dev", Role: "Developer"},
		},
		err: map[string]error{
			"expired-token": fmt.Errorf("verify token: %w", core.ErrTokenExpired),
		},
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) core.ErrorResponse {
	t.Helper()
	var body core.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAuthenticator(t *testing.T) {
	var seen *AccessTokenClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticator(newVerifier())(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "no header",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "MISSING_TOKEN",
			wantMsg:    "Access denied, token missing",
		},
		{
			name:       "not a bearer scheme",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOKEN_INVALID",
			wantMsg:    "Access denied, invalid token format",
		},
		{
			name:       "bearer without token",
			header:     "Bearer ",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOKEN_INVALID",
		},
		{
			name:       "malformed token",
			header:     "Bearer garbage",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOKEN_INVALID",
			wantMsg:    "Invalid token",
		},
		{
			name:       "expired token",
			header:     "Bearer expired-token",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOKEN_EXPIRED",
			wantMsg:    "Token expired",
		},
		{
			name:       "valid token",
			header:     "bearer dev-token",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/profile/2", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, int64(2), seen.UserID)
				assert.Equal(t, "dev", seen.Username)
				return
			}

			assert.Nil(t, seen)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, []string{tt.wantMsg}, body.Errors)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gated := Authenticator(newVerifier())(RequireAdmin(ok))

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "no token", wantStatus: http.StatusUnauthorized},
		{name: "developer", token: "dev-token", wantStatus: http.StatusForbidden},
		{name: "admin", token: "admin-token", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/all-users", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			gated.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireRoleWithoutAuthenticator(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()

	RequireAdmin(ok).ServeHTTP(
		rec,
		httptest.NewRequest(http.MethodGet, "/admin/projects", nil),
	)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContextAccessors(t *testing.T) {
	ctx := WithClaims(context.Background(), &AccessTokenClaims{
		UserID:   9,
		Username: "alice",
		Role:     RoleAdmin,
	})

	assert.Equal(t, int64(9), GetUserID(ctx))
	assert.Equal(t, "alice", GetUsername(ctx))
	assert.True(t, IsAdmin(ctx))

	empty := context.Background()
	assert.Zero(t, GetUserID(empty))
	assert.Empty(t, GetUserRole(empty))
	assert.Nil(t, GetClaims(empty))
	assert.False(t, IsAdmin(empty))
}
