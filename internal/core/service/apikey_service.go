package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/promptforge/platform-api/internal/core/domain"
	"github.com/promptforge/platform-api/internal/core/ports"
	"github.com/promptforge/platform-api/internal/core/ratelimit"
)

const (
	keyPrefixBytes = 4
	keySecretBytes = 24
)

// UsageRecorder receives the fire-and-forget usage bump for a fully
// authorized key. Implementations must not block the caller.
type UsageRecorder interface {
	Record(keyID string)
}

// GeneratedKey is the one-time output of key generation. RawKey is never
// stored and cannot be re-derived; persist only Prefix and Hash.
type GeneratedKey struct {
	RawKey string
	Prefix string
	Hash   string
}

// HashKey returns the hex-encoded SHA-256 digest of a raw key. It is the
// single digest function used both at generation and at validation time.
func HashKey(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// GenerateKey produces a new raw key of the form pf_<prefix>_<secret>. The
// prefix doubles as a non-secret display label.
func GenerateKey() (*GeneratedKey, error) {
	prefix, err := randomToken(keyPrefixBytes)
	if err != nil {
		return nil, fmt.Errorf("generate key prefix: %w", err)
	}
	secret, err := randomToken(keySecretBytes)
	if err != nil {
		return nil, fmt.Errorf("generate key secret: %w", err)
	}

	raw := "pf_" + prefix + "_" + secret
	return &GeneratedKey{
		RawKey: raw,
		Prefix: "pf_" + prefix,
		Hash:   HashKey(raw),
	}, nil
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// APIKeyService provisions and authorizes service credentials.
type APIKeyService struct {
	keys    ports.APIKeyRepository
	limiter *ratelimit.Limiter
	usage   UsageRecorder
	log     zerolog.Logger
}

func NewAPIKeyService(keys ports.APIKeyRepository, limiter *ratelimit.Limiter, usage UsageRecorder, log zerolog.Logger) *APIKeyService {
	return &APIKeyService{keys: keys, limiter: limiter, usage: usage, log: log}
}

// Provision creates a new key for the given owner and returns the raw key
// exactly once.
func (s *APIKeyService) Provision(ctx context.Context, in ports.ProvisionKeyInput) (*ports.ProvisionKeyResult, error) {
	gen, err := GenerateKey()
	if err != nil {
		return nil, err
	}

	perMinute := in.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = domain.DefaultRateLimitPerMinute
	}
	perDay := in.RateLimitPerDay
	if perDay <= 0 {
		perDay = domain.DefaultRateLimitPerDay
	}

	key := &domain.APIKey{
		ID:                 uuid.NewString(),
		UserID:             in.UserID,
		AgentID:            in.AgentID,
		KeyHash:            gen.Hash,
		KeyPrefix:          gen.Prefix,
		Name:               in.Name,
		Permissions:        in.Permissions,
		AllowedOrigins:     in.AllowedOrigins,
		RateLimitPerMinute: perMinute,
		RateLimitPerDay:    perDay,
		IsActive:           true,
		ExpiresAt:          in.ExpiresAt,
		CreatedAt:          time.Now().UTC(),
	}

	created, err := s.keys.Create(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("provision key: %w", err)
	}

	s.log.Info().Str("key_id", created.ID).Str("prefix", created.KeyPrefix).Str("user_id", created.UserID).Msg("api key provisioned")
	return &ports.ProvisionKeyResult{Key: created, RawKey: gen.RawKey}, nil
}

// Authorize validates a raw key and enforces origin and rate-limit policy.
// Check order is fixed: key lookup, eligibility, origin, minute window, day
// window. On success the usage counter is bumped off the request path.
func (s *APIKeyService) Authorize(ctx context.Context, rawKey, origin string) (*domain.ServiceAgent, error) {
	key, err := s.keys.FindByHash(ctx, HashKey(rawKey))
	if err != nil {
		return nil, err
	}
	if !key.Eligible(time.Now()) {
		// Revoked and expired keys are indistinguishable from unknown ones.
		return nil, domain.ErrKeyNotFound
	}

	if origin != "" && !originAllowed(origin, key.AllowedOrigins) {
		return nil, domain.ErrOriginNotAllowed
	}

	if err := s.limiter.Allow(ctx, key.ID, key.RateLimitPerMinute, key.RateLimitPerDay); err != nil {
		return nil, err
	}

	s.usage.Record(key.ID)

	perms := make(map[string]struct{}, len(key.Permissions))
	for _, p := range key.Permissions {
		perms[p] = struct{}{}
	}
	return &domain.ServiceAgent{
		APIKeyID:           key.ID,
		UserID:             key.UserID,
		AgentID:            key.AgentID,
		Permissions:        perms,
		RateLimitPerMinute: key.RateLimitPerMinute,
		RateLimitPerDay:    key.RateLimitPerDay,
	}, nil
}

func (s *APIKeyService) List(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	return s.keys.ListByUser(ctx, userID)
}

// Revoke deactivates a key. The record is kept for audit.
func (s *APIKeyService) Revoke(ctx context.Context, id, userID string) error {
	if err := s.keys.Deactivate(ctx, id, userID); err != nil {
		return err
	}
	s.log.Info().Str("key_id", id).Str("user_id", userID).Msg("api key revoked")
	return nil
}

func (s *APIKeyService) Usage(ctx context.Context, id, userID string) (*domain.APIKey, error) {
	key, err := s.keys.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if key.UserID != userID {
		return nil, domain.ErrKeyNotFound
	}
	return key, nil
}

// originAllowed matches an Origin header value against the allow-list. An
// empty list permits every origin. A "*.suffix" pattern requires the dot
// boundary, so "*.example.com" matches "https://a.example.com" but neither
// "https://example.com" nor "https://evilexample.com".
func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		switch {
		case a == "*":
			return true
		case strings.HasPrefix(a, "*."):
			if strings.HasSuffix(origin, a[1:]) {
				return true
			}
		case origin == a:
			return true
		}
	}
	return false
}
