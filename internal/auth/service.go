// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/admin-console/internal/core"
	"github.com/carterperez-dev/templates/admin-console/internal/middleware"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is the slice of a user row needed to authenticate.
type Credentials struct {
	UserID       int64
	Username     string
	FullName     string
	Role         string
	PasswordHash string
}

type CredentialStore interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

type TokenIssuer interface {
	CreateAccessToken(claims middleware.AccessTokenClaims) (string, time.Time, error)
}

type Service struct {
	store  CredentialStore
	tokens TokenIssuer
}

func NewService(store CredentialStore, tokens TokenIssuer) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
	}
}

// Login exchanges an email and password for a signed access token. Unknown
// email and wrong password are indistinguishable to the caller, in both the
// error returned and the time spent.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)

	creds, err := s.store.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&creds.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.store.UpdatePasswordHash(ctx, creds.UserID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash failed",
				"user_id", creds.UserID,
				"error", err,
			)
		}
	}

	token, expiresAt, err := s.tokens.CreateAccessToken(
		middleware.AccessTokenClaims{
			UserID:   creds.UserID,
			Username: creds.Username,
			Role:     creds.Role,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	core.AddSpanEvent(ctx, "user.login",
		attribute.Int64("user.id", creds.UserID),
		attribute.String("user.role", creds.Role),
	)

	return &LoginResponse{
		Message:     "Logged in successfully",
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User: LoginUser{
			UserID:   creds.UserID,
			Username: creds.Username,
			FullName: creds.FullName,
			Role:     creds.Role,
		},
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
