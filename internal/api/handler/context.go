package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/promptforge/platform-api/internal/api/middleware"
	"github.com/promptforge/platform-api/internal/core/domain"
)

// currentPrincipal extracts the principal injected by the Authenticate
// middleware. Its presence proves the middleware ran; handlers behind
// Authenticate treat absence as a wiring error and reject with 401.
func currentPrincipal(c echo.Context) (*domain.Principal, error) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return principal, nil
}

// currentAgent extracts the service agent injected by AuthenticateAPIKey.
func currentAgent(c echo.Context) (*domain.ServiceAgent, error) {
	agent := middleware.AgentFrom(c)
	if agent == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing api key authentication")
	}
	return agent, nil
}
