package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/promptforge/platform-api/internal/api/metrics"
	"github.com/promptforge/platform-api/internal/core/domain"
	"github.com/promptforge/platform-api/internal/core/ports"
)

const principalContextKey = "principal"

// Authenticate resolves the request's bearer token and attaches the
// resulting Principal. Requests without a valid credential are rejected
// with 401; the response never reveals which resolution step failed.
func Authenticate(auth ports.TokenAuthenticator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				metrics.AuthAttemptsTotal.WithLabelValues("rejected").Inc()
				return reject(c, http.StatusUnauthorized, CodeInvalidToken, "invalid token")
			}

			principal, err := auth.Resolve(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) {
					metrics.AuthAttemptsTotal.WithLabelValues("rejected").Inc()
					return reject(c, http.StatusUnauthorized, CodeInvalidToken, "invalid token")
				}
				metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
				log.Error().Err(err).Str("path", c.Path()).Msg("token resolution failed")
				return reject(c, http.StatusInternalServerError, CodeAuthError, "authentication failed")
			}

			metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
			c.Set(principalContextKey, principal)
			return next(c)
		}
	}
}

// AuthenticateOptional resolves the bearer token when one is present but
// never rejects: requests without a usable credential proceed as guests
// with no principal attached.
func AuthenticateOptional(auth ports.TokenAuthenticator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				return next(c)
			}

			principal, err := auth.Resolve(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("optional auth: proceeding as guest")
				return next(c)
			}

			c.Set(principalContextKey, principal)
			return next(c)
		}
	}
}

// Authorize enforces role-based access. It must run after Authenticate: a
// missing principal yields 401, a principal outside allowedRoles yields 403.
func Authorize(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[domain.NormalizeRole(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := PrincipalFrom(c)
			if principal == nil {
				return reject(c, http.StatusUnauthorized, CodeNotAuthenticated, "authentication required")
			}
			if _, ok := allowed[principal.Role]; !ok {
				return reject(c, http.StatusForbidden, CodeForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the authenticated principal attached to the
// request, or nil for guests.
func PrincipalFrom(c echo.Context) *domain.Principal {
	principal, _ := c.Get(principalContextKey).(*domain.Principal)
	return principal
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Any other scheme, or an absent header, counts as no credential.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
