package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrKeyNotFound        = errors.New("api key not found")
	ErrOriginNotAllowed   = errors.New("origin not allowed")
	ErrTemplateNotFound   = errors.New("template not found")
	ErrForbidden          = errors.New("forbidden")
)

// RateLimitError reports a fixed-window ceiling hit. RetryAfter is the time
// remaining until the offending window resets.
type RateLimitError struct {
	Window     string // "minute" or "day"
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d per %s", e.Limit, e.Window)
}
