package ports

import (
	"context"

	"github.com/promptforge/platform-api/internal/core/domain"
)

// TemplateRepository defines the persistence contract for prompt templates.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.PromptTemplate) (*domain.PromptTemplate, error)
	FindByID(ctx context.Context, id, userID string) (*domain.PromptTemplate, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.PromptTemplate, error)
}
