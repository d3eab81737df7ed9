package middleware

import "github.com/labstack/echo/v4"

// Rejection codes shared by the authentication middleware.
const (
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeNotAuthenticated  = "NOT_AUTHENTICATED"
	CodeForbidden         = "FORBIDDEN"
	CodeMissingAPIKey     = "MISSING_API_KEY"
	CodeInvalidAPIKey     = "INVALID_API_KEY"
	CodeOriginNotAllowed  = "ORIGIN_NOT_ALLOWED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeAuthError         = "AUTH_ERROR"
)

// rejectionResponse is the envelope for every middleware rejection.
type rejectionResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

func reject(c echo.Context, status int, code, message string) error {
	return c.JSON(status, rejectionResponse{Success: false, Error: message, Code: code})
}
