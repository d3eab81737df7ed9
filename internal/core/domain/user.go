package domain

import (
	"strings"
	"time"
)

const (
	RoleUser      = "USER"
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
)

const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// DefaultTokenBalance is granted to accounts provisioned through external
// identity resolution (find-or-create).
const DefaultTokenBalance = 10000

// NormalizeRole maps an arbitrary role string onto the role whitelist.
// Unknown, empty, or malformed values collapse to RoleUser. The function is
// total and idempotent: applying it twice yields the same result as once.
func NormalizeRole(role string) string {
	switch strings.ToUpper(strings.TrimSpace(role)) {
	case RoleAdmin:
		return RoleAdmin
	case RoleModerator:
		return RoleModerator
	default:
		return RoleUser
	}
}

// User models a persisted account. PasswordHash is empty for accounts
// created through an external identity provider.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Plan         string    `json:"plan"`
	TokenBalance int       `json:"token_balance"`
	LastLoginAt  time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
