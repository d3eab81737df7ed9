package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/promptforge/platform-api/internal/core/domain"
)

const templatesCollection = "prompt_templates"

// TemplateRepository persists prompt templates in MongoDB.
type TemplateRepository struct {
	coll *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	return &TemplateRepository{coll: db.Collection(templatesCollection)}
}

type mongoTemplate struct {
	ID        string   `bson:"_id"`
	UserID    string   `bson:"user_id"`
	Name      string   `bson:"name"`
	Body      string   `bson:"body"`
	Tags      []string `bson:"tags,omitempty"`
	CreatedAt int64    `bson:"created_at"`
	UpdatedAt int64    `bson:"updated_at"`
}

func (r *TemplateRepository) Create(ctx context.Context, tpl *domain.PromptTemplate) (*domain.PromptTemplate, error) {
	doc := mongoTemplate{
		ID:        tpl.ID,
		UserID:    tpl.UserID,
		Name:      tpl.Name,
		Body:      tpl.Body,
		Tags:      tpl.Tags,
		CreatedAt: tpl.CreatedAt.Unix(),
		UpdatedAt: tpl.UpdatedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return r.FindByID(ctx, tpl.ID, tpl.UserID)
}

func (r *TemplateRepository) FindByID(ctx context.Context, id, userID string) (*domain.PromptTemplate, error) {
	var mt mongoTemplate
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&mt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("find template: %w", err)
	}
	return toDomainTemplate(&mt), nil
}

func (r *TemplateRepository) ListByUser(ctx context.Context, userID string) ([]*domain.PromptTemplate, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer cursor.Close(ctx)

	var templates []*domain.PromptTemplate
	for cursor.Next(ctx) {
		var mt mongoTemplate
		if err := cursor.Decode(&mt); err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
		templates = append(templates, toDomainTemplate(&mt))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

func toDomainTemplate(mt *mongoTemplate) *domain.PromptTemplate {
	return &domain.PromptTemplate{
		ID:        mt.ID,
		UserID:    mt.UserID,
		Name:      mt.Name,
		Body:      mt.Body,
		Tags:      mt.Tags,
		CreatedAt: unixToTime(mt.CreatedAt),
		UpdatedAt: unixToTime(mt.UpdatedAt),
	}
}
