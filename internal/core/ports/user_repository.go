package ports

import (
	"context"

	"github.com/promptforge/platform-api/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts.
// Create must return domain.ErrUserExists on a unique-constraint violation
// so find-or-create callers can fall back to a fresh read.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}
