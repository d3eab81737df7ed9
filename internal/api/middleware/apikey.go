package middleware

import (
	"errors"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/promptforge/platform-api/internal/api/metrics"
	"github.com/promptforge/platform-api/internal/core/domain"
	"github.com/promptforge/platform-api/internal/core/ports"
)

const agentContextKey = "service_agent"

// AuthenticateAPIKey validates the service credential supplied via the
// X-API-Key header or the api_key query parameter, enforces origin and
// rate-limit policy, and attaches the resolved ServiceAgent.
func AuthenticateAPIKey(svc ports.APIKeyService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawKey := c.Request().Header.Get("X-API-Key")
			if rawKey == "" {
				rawKey = c.QueryParam("api_key")
			}
			if rawKey == "" {
				metrics.APIKeyRequestsTotal.WithLabelValues(CodeMissingAPIKey).Inc()
				return reject(c, http.StatusUnauthorized, CodeMissingAPIKey, "api key required")
			}

			origin := c.Request().Header.Get("Origin")
			agent, err := svc.Authorize(c.Request().Context(), rawKey, origin)
			if err != nil {
				return rejectAPIKey(c, err, log)
			}

			metrics.APIKeyRequestsTotal.WithLabelValues("ok").Inc()
			c.Set(agentContextKey, agent)
			return next(c)
		}
	}
}

// RequirePermission gates a route on a named permission. It must run after
// AuthenticateAPIKey.
func RequirePermission(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			agent := AgentFrom(c)
			if agent == nil {
				return reject(c, http.StatusUnauthorized, CodeNotAuthenticated, "api key authentication required")
			}
			if !agent.HasPermission(name) {
				return reject(c, http.StatusForbidden, CodePermissionDenied, "permission denied: "+name)
			}
			return next(c)
		}
	}
}

// AgentFrom returns the service agent attached to the request, or nil when
// the request was not API-key authenticated.
func AgentFrom(c echo.Context) *domain.ServiceAgent {
	agent, _ := c.Get(agentContextKey).(*domain.ServiceAgent)
	return agent
}

func rejectAPIKey(c echo.Context, err error, log zerolog.Logger) error {
	var rle *domain.RateLimitError
	switch {
	case errors.Is(err, domain.ErrKeyNotFound):
		metrics.APIKeyRequestsTotal.WithLabelValues(CodeInvalidAPIKey).Inc()
		return reject(c, http.StatusUnauthorized, CodeInvalidAPIKey, "invalid api key")

	case errors.Is(err, domain.ErrOriginNotAllowed):
		metrics.APIKeyRequestsTotal.WithLabelValues(CodeOriginNotAllowed).Inc()
		return reject(c, http.StatusForbidden, CodeOriginNotAllowed, "origin not allowed")

	case errors.As(err, &rle):
		metrics.APIKeyRequestsTotal.WithLabelValues(CodeRateLimitExceeded).Inc()
		metrics.RateLimitRejectionsTotal.WithLabelValues(rle.Window).Inc()
		retryAfter := int(math.Ceil(rle.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		return c.JSON(http.StatusTooManyRequests, rejectionResponse{
			Success:    false,
			Error:      rle.Error(),
			Code:       CodeRateLimitExceeded,
			RetryAfter: retryAfter,
		})

	default:
		metrics.APIKeyRequestsTotal.WithLabelValues(CodeAuthError).Inc()
		log.Error().Err(err).Str("path", c.Path()).Msg("api key authorization failed")
		return reject(c, http.StatusInternalServerError, CodeAuthError, "authentication failed")
	}
}
