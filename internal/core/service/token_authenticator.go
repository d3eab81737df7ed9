package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/promptforge/platform-api/internal/core/domain"
	"github.com/promptforge/platform-api/internal/core/ports"
)

// Shortcut-token prefixes recognised in development deployments only.
const (
	DemoTokenPrefix  = "demo-token-"
	AdminTokenPrefix = "admin-token-"
)

// AuthenticatorConfig carries the startup-resolved settings of the token
// authenticator. Production and AllowUnverifiedDecode are fixed at
// construction; nothing re-reads the environment per request.
type AuthenticatorConfig struct {
	// Production hard-disables every development-only resolution path.
	Production bool
	// LocalSecret verifies tokens this service issued itself.
	LocalSecret string
	// ExternalSecret verifies tokens issued by the external identity
	// provider. When empty in development, LocalSecret is used instead;
	// production never reuses the local secret for external tokens.
	ExternalSecret string
	// AllowUnverifiedDecode enables the signature-less decode fallback.
	// Ignored in production.
	AllowUnverifiedDecode bool
}

// tokenStrategy attempts to resolve a bearer token. Returning (nil, nil)
// means "not mine, try the next strategy"; a non-nil error stops the chain
// immediately.
type tokenStrategy struct {
	name    string
	resolve func(ctx context.Context, token string) (*domain.Principal, error)
}

// TokenAuthenticator resolves bearer tokens through an ordered list of
// strategies: development shortcut tokens, locally signed tokens, external
// identity provider tokens, and (development only, behind a flag) an
// unverified decode. The first strategy to produce a principal wins.
type TokenAuthenticator struct {
	users      ports.UserRepository
	cfg        AuthenticatorConfig
	strategies []tokenStrategy
	log        zerolog.Logger
}

func NewTokenAuthenticator(users ports.UserRepository, cfg AuthenticatorConfig, log zerolog.Logger) *TokenAuthenticator {
	a := &TokenAuthenticator{users: users, cfg: cfg, log: log}
	a.strategies = []tokenStrategy{
		{name: "shortcut", resolve: a.resolveShortcut},
		{name: "local", resolve: a.resolveLocal},
		{name: "external", resolve: a.resolveExternal},
		{name: "unverified", resolve: a.resolveUnverified},
	}
	return a
}

// Resolve runs the strategy chain for the given token. All terminal
// authentication failures surface as domain.ErrInvalidToken so callers
// cannot tell a bad signature from an unknown user.
func (a *TokenAuthenticator) Resolve(ctx context.Context, token string) (*domain.Principal, error) {
	for _, s := range a.strategies {
		principal, err := s.resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		if principal != nil {
			a.log.Debug().Str("strategy", s.name).Str("user_id", principal.UserID).Msg("token resolved")
			return principal, nil
		}
	}
	return nil, domain.ErrInvalidToken
}

// resolveShortcut handles the fixed demo/admin tokens. In production a token
// carrying either prefix is rejected outright rather than passed along the
// chain.
func (a *TokenAuthenticator) resolveShortcut(_ context.Context, token string) (*domain.Principal, error) {
	isDemo := strings.HasPrefix(token, DemoTokenPrefix)
	isAdmin := strings.HasPrefix(token, AdminTokenPrefix)
	if !isDemo && !isAdmin {
		return nil, nil
	}

	if a.cfg.Production {
		a.log.Warn().Msg("shortcut token presented in production")
		return nil, domain.ErrInvalidToken
	}

	if isAdmin {
		return &domain.Principal{
			UserID: "shortcut-admin",
			Email:  "admin@promptforge.local",
			Role:   domain.RoleAdmin,
		}, nil
	}
	return &domain.Principal{
		UserID: "shortcut-user",
		Email:  "demo@promptforge.local",
		Role:   domain.RoleUser,
	}, nil
}

// resolveLocal verifies the token against the service's own signing secret.
// A valid signature whose subject no longer exists locally falls through to
// the external strategy; users migrated to the external identity provider
// still carry old local tokens.
func (a *TokenAuthenticator) resolveLocal(ctx context.Context, token string) (*domain.Principal, error) {
	claims, ok := parseHMAC(token, a.cfg.LocalSecret)
	if !ok {
		return nil, nil
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, nil
	}

	user, err := a.users.FindByID(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve local token: %w", err)
	}

	// Role comes from the stored record, never from token claims.
	return &domain.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   domain.NormalizeRole(user.Role),
	}, nil
}

// resolveExternal verifies the token against the external identity
// provider's secret and runs find-or-create on the embedded identity.
func (a *TokenAuthenticator) resolveExternal(ctx context.Context, token string) (*domain.Principal, error) {
	secret := a.cfg.ExternalSecret
	if secret == "" {
		if a.cfg.Production {
			// Never reuse the local secret for external tokens in production.
			return nil, nil
		}
		secret = a.cfg.LocalSecret
	}

	claims, ok := parseHMAC(token, secret)
	if !ok {
		return nil, nil
	}

	return a.findOrCreate(ctx, claims)
}

// resolveUnverified decodes the token without checking its signature. It is
// reachable only when explicitly enabled and never in production.
func (a *TokenAuthenticator) resolveUnverified(ctx context.Context, token string) (*domain.Principal, error) {
	if a.cfg.Production || !a.cfg.AllowUnverifiedDecode {
		return nil, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, nil
	}

	a.log.Warn().Msg("INSECURE: accepting token without signature verification (ALLOW_UNVERIFIED_TOKENS)")

	return a.findOrCreate(ctx, claims)
}

// findOrCreate resolves an externally asserted identity to a local account,
// creating one on first sight. A concurrent create for the same email is
// treated as success followed by a fresh read.
func (a *TokenAuthenticator) findOrCreate(ctx context.Context, claims jwt.MapClaims) (*domain.Principal, error) {
	sub, _ := claims.GetSubject()
	email, _ := claims["email"].(string)
	if sub == "" || !strings.Contains(email, "@") {
		return nil, nil
	}
	roleClaim, _ := claims["role"].(string)

	user, err := a.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		now := time.Now().UTC()
		user, err = a.users.Create(ctx, &domain.User{
			ID:           sub,
			Email:        email,
			FirstName:    firstNameFromEmail(email),
			PasswordHash: "",
			Role:         domain.NormalizeRole(roleClaim),
			Plan:         domain.PlanFree,
			TokenBalance: domain.DefaultTokenBalance,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if errors.Is(err, domain.ErrUserExists) {
			// Lost the race against an identical concurrent create.
			user, err = a.users.FindByEmail(ctx, email)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("resolve external identity: %w", err)
	}

	return &domain.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   domain.NormalizeRole(user.Role),
	}, nil
}

// parseHMAC verifies an HS256 token against secret and returns its claims.
// Any parse or signature failure reports !ok so the caller can fall through.
func parseHMAC(token, secret string) (jwt.MapClaims, bool) {
	if secret == "" {
		return nil, false
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, false
	}
	return claims, true
}

// firstNameFromEmail derives a display name from the email local-part.
func firstNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
