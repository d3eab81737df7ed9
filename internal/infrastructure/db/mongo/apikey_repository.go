package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/promptforge/platform-api/internal/core/domain"
)

const apiKeysCollection = "api_keys"

// APIKeyRepository persists service credentials in MongoDB. Only the key
// digest is ever stored.
type APIKeyRepository struct {
	coll *mongo.Collection
}

func NewAPIKeyRepository(db *mongo.Database) *APIKeyRepository {
	return &APIKeyRepository{coll: db.Collection(apiKeysCollection)}
}

type mongoAPIKey struct {
	ID                 string   `bson:"_id"`
	UserID             string   `bson:"user_id"`
	AgentID            string   `bson:"agent_id"`
	KeyHash            string   `bson:"key_hash"`
	KeyPrefix          string   `bson:"key_prefix"`
	Name               string   `bson:"name"`
	Permissions        []string `bson:"permissions"`
	AllowedOrigins     []string `bson:"allowed_origins,omitempty"`
	RateLimitPerMinute int      `bson:"rate_limit_per_minute"`
	RateLimitPerDay    int      `bson:"rate_limit_per_day"`
	IsActive           bool     `bson:"is_active"`
	ExpiresAt          int64    `bson:"expires_at,omitempty"`
	LastUsedAt         int64    `bson:"last_used_at,omitempty"`
	UsageCount         int64    `bson:"usage_count"`
	CreatedAt          int64    `bson:"created_at"`
}

func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error) {
	doc := mongoAPIKey{
		ID:                 key.ID,
		UserID:             key.UserID,
		AgentID:            key.AgentID,
		KeyHash:            key.KeyHash,
		KeyPrefix:          key.KeyPrefix,
		Name:               key.Name,
		Permissions:        key.Permissions,
		AllowedOrigins:     key.AllowedOrigins,
		RateLimitPerMinute: key.RateLimitPerMinute,
		RateLimitPerDay:    key.RateLimitPerDay,
		IsActive:           key.IsActive,
		UsageCount:         key.UsageCount,
		CreatedAt:          key.CreatedAt.Unix(),
	}
	if key.ExpiresAt != nil {
		doc.ExpiresAt = key.ExpiresAt.Unix()
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert api key: %w", err)
	}
	return r.FindByID(ctx, key.ID)
}

func (r *APIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	return r.findOne(ctx, bson.M{"key_hash": keyHash})
}

func (r *APIKeyRepository) FindByID(ctx context.Context, id string) (*domain.APIKey, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *APIKeyRepository) ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []*domain.APIKey
	for cursor.Next(ctx) {
		var mk mongoAPIKey
		if err := cursor.Decode(&mk); err != nil {
			return nil, fmt.Errorf("decode api key: %w", err)
		}
		keys = append(keys, toDomainKey(&mk))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// Deactivate revokes a key owned by userID. Records are never deleted.
func (r *APIKeyRepository) Deactivate(ctx context.Context, id, userID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return fmt.Errorf("deactivate api key: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrKeyNotFound
	}
	return nil
}

// IncrementUsage bumps the usage counter and last-used timestamp in a
// single atomic update.
func (r *APIKeyRepository) IncrementUsage(ctx context.Context, id string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"usage_count": 1},
			"$set": bson.M{"last_used_at": time.Now().UTC().Unix()},
		},
	)
	if err != nil {
		return fmt.Errorf("increment api key usage: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) findOne(ctx context.Context, filter bson.M) (*domain.APIKey, error) {
	var mk mongoAPIKey
	if err := r.coll.FindOne(ctx, filter).Decode(&mk); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("find api key: %w", err)
	}
	return toDomainKey(&mk), nil
}

func toDomainKey(mk *mongoAPIKey) *domain.APIKey {
	key := &domain.APIKey{
		ID:                 mk.ID,
		UserID:             mk.UserID,
		AgentID:            mk.AgentID,
		KeyHash:            mk.KeyHash,
		KeyPrefix:          mk.KeyPrefix,
		Name:               mk.Name,
		Permissions:        mk.Permissions,
		AllowedOrigins:     mk.AllowedOrigins,
		RateLimitPerMinute: mk.RateLimitPerMinute,
		RateLimitPerDay:    mk.RateLimitPerDay,
		IsActive:           mk.IsActive,
		UsageCount:         mk.UsageCount,
		CreatedAt:          unixToTime(mk.CreatedAt),
	}
	if mk.ExpiresAt != 0 {
		t := unixToTime(mk.ExpiresAt)
		key.ExpiresAt = &t
	}
	if mk.LastUsedAt != 0 {
		t := unixToTime(mk.LastUsedAt)
		key.LastUsedAt = &t
	}
	return key
}
