package domain

import "time"

// Permission names grantable to service agents.
const (
	PermTemplatesRead  = "templates:read"
	PermTemplatesWrite = "templates:write"
	PermPromptsRead    = "prompts:read"
	PermPromptsWrite   = "prompts:write"
)

// Default per-key rate limits applied when a key is provisioned without
// explicit ceilings.
const (
	DefaultRateLimitPerMinute = 60
	DefaultRateLimitPerDay    = 10000
)

// APIKey is a persisted service credential. The raw key exists only at
// generation time; only its SHA-256 digest and a short non-secret prefix
// are stored.
type APIKey struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	AgentID            string     `json:"agent_id"`
	KeyHash            string     `json:"-"`
	KeyPrefix          string     `json:"key_prefix"`
	Name               string     `json:"name"`
	Permissions        []string   `json:"permissions"`
	AllowedOrigins     []string   `json:"allowed_origins,omitempty"`
	RateLimitPerMinute int        `json:"rate_limit_per_minute"`
	RateLimitPerDay    int        `json:"rate_limit_per_day"`
	IsActive           bool       `json:"is_active"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	LastUsedAt         *time.Time `json:"last_used_at,omitempty"`
	UsageCount         int64      `json:"usage_count"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Eligible reports whether the key may authenticate a request at the given
// instant: it must be active and either carry no expiry or not yet have
// passed it.
func (k *APIKey) Eligible(now time.Time) bool {
	if !k.IsActive {
		return false
	}
	return k.ExpiresAt == nil || k.ExpiresAt.After(now)
}
