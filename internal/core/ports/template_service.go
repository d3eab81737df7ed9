package ports

import (
	"context"

	"github.com/promptforge/platform-api/internal/core/domain"
)

// CreateTemplateInput carries a new template's attributes.
type CreateTemplateInput struct {
	UserID string
	Name   string
	Body   string
	Tags   []string
}

// TemplateService implements prompt-template reads and writes for the
// agent-facing API.
type TemplateService interface {
	Create(ctx context.Context, in CreateTemplateInput) (*domain.PromptTemplate, error)
	Get(ctx context.Context, id, userID string) (*domain.PromptTemplate, error)
	List(ctx context.Context, userID string) ([]*domain.PromptTemplate, error)
}
