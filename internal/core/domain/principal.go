package domain

// Principal is the identity attached to a request after successful bearer
// authentication. It lives for the duration of that request only.
type Principal struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// ServiceAgent is the non-human principal attached to a request after
// successful API-key authentication.
type ServiceAgent struct {
	APIKeyID           string              `json:"api_key_id"`
	UserID             string              `json:"user_id"`
	AgentID            string              `json:"agent_id"`
	Permissions        map[string]struct{} `json:"-"`
	RateLimitPerMinute int                 `json:"rate_limit_per_minute"`
	RateLimitPerDay    int                 `json:"rate_limit_per_day"`
}

// HasPermission reports whether the agent holds the named permission.
func (a *ServiceAgent) HasPermission(name string) bool {
	_, ok := a.Permissions[name]
	return ok
}
