package ports

import (
	"context"

	"github.com/promptforge/platform-api/internal/core/domain"
)

// AuthService implements account registration and credential login.
type AuthService interface {
	Register(ctx context.Context, email, password, firstName string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// TokenAuthenticator resolves an inbound bearer token to a Principal.
// A nil error with a non-nil Principal is the only success outcome; every
// failure mode surfaces as domain.ErrInvalidToken so callers cannot
// distinguish bad signatures from unknown users.
type TokenAuthenticator interface {
	Resolve(ctx context.Context, token string) (*domain.Principal, error)
}
