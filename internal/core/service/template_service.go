package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/promptforge/platform-api/internal/core/domain"
	"github.com/promptforge/platform-api/internal/core/ports"
)

// TemplateService implements prompt-template reads and writes.
type TemplateService struct {
	templates ports.TemplateRepository
}

func NewTemplateService(templates ports.TemplateRepository) *TemplateService {
	return &TemplateService{templates: templates}
}

func (s *TemplateService) Create(ctx context.Context, in ports.CreateTemplateInput) (*domain.PromptTemplate, error) {
	now := time.Now().UTC()
	return s.templates.Create(ctx, &domain.PromptTemplate{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Name:      in.Name,
		Body:      in.Body,
		Tags:      in.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *TemplateService) Get(ctx context.Context, id, userID string) (*domain.PromptTemplate, error) {
	return s.templates.FindByID(ctx, id, userID)
}

func (s *TemplateService) List(ctx context.Context, userID string) ([]*domain.PromptTemplate, error) {
	return s.templates.ListByUser(ctx, userID)
}
