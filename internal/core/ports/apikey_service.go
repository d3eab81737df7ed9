package ports

import (
	"context"
	"time"

	"github.com/promptforge/platform-api/internal/core/domain"
)

// ProvisionKeyInput carries the owner-supplied attributes of a new key.
type ProvisionKeyInput struct {
	UserID             string
	AgentID            string
	Name               string
	Permissions        []string
	AllowedOrigins     []string
	RateLimitPerMinute int
	RateLimitPerDay    int
	ExpiresAt          *time.Time
}

// ProvisionKeyResult returns the raw key exactly once; callers must persist
// only the prefix (for display) and rely on the stored hash thereafter.
type ProvisionKeyResult struct {
	Key    *domain.APIKey
	RawKey string
}

// APIKeyService provisions, authorizes, and manages service credentials.
type APIKeyService interface {
	Provision(ctx context.Context, in ProvisionKeyInput) (*ProvisionKeyResult, error)

	// Authorize validates a presented raw key against the stored digests,
	// enforces the key's origin allow-list and both rate-limit windows, and
	// returns the resolved agent on success. Failures surface as
	// domain.ErrKeyNotFound, domain.ErrOriginNotAllowed, or
	// *domain.RateLimitError.
	Authorize(ctx context.Context, rawKey, origin string) (*domain.ServiceAgent, error)

	List(ctx context.Context, userID string) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id, userID string) error
	Usage(ctx context.Context, id, userID string) (*domain.APIKey, error)
}
