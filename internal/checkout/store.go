package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/redis"
)

// ContextStore persists in-flight checkout attempts.
type ContextStore interface {
	Load(ctx context.Context, attemptID string) (*Attempt, error)
	Save(ctx context.Context, attempt *Attempt) error
	Delete(ctx context.Context, attemptID string) error
}

// Cache is the redis surface the store needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CheckoutContextKey(attemptID string) string
}

// RedisContextStore keeps attempts in redis under a bounded TTL, so an
// abandoned checkout can never hold state forever.
type RedisContextStore struct {
	cache Cache
	ttl   time.Duration
}

// NewRedisContextStore builds the store.
func NewRedisContextStore(cache Cache, ttl time.Duration) *RedisContextStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisContextStore{cache: cache, ttl: ttl}
}

// Load returns the attempt, or NOT_FOUND when it never existed or expired.
func (s *RedisContextStore) Load(ctx context.Context, attemptID string) (*Attempt, error) {
	raw, err := s.cache.Get(ctx, s.cache.CheckoutContextKey(attemptID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout attempt not found or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attempt")
	}
	var attempt Attempt
	if err := json.Unmarshal([]byte(raw), &attempt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout attempt")
	}
	return &attempt, nil
}

// Save writes the attempt back, refreshing the TTL.
func (s *RedisContextStore) Save(ctx context.Context, attempt *Attempt) error {
	payload, err := json.Marshal(attempt)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout attempt")
	}
	if err := s.cache.Set(ctx, s.cache.CheckoutContextKey(attempt.ID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout attempt")
	}
	return nil
}

// Delete drops the attempt.
func (s *RedisContextStore) Delete(ctx context.Context, attemptID string) error {
	if err := s.cache.Del(ctx, s.cache.CheckoutContextKey(attemptID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete checkout attempt")
	}
	return nil
}
