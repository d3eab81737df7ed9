package ports

import (
	"context"

	"github.com/promptforge/platform-api/internal/core/domain"
)

// APIKeyRepository defines the persistence contract for service credentials.
// Keys are deactivated on revocation, never deleted.
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error)
	FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	FindByID(ctx context.Context, id string) (*domain.APIKey, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error)
	Deactivate(ctx context.Context, id, userID string) error
	IncrementUsage(ctx context.Context, id string) error
}
