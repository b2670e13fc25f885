package service

import (
	"context"
	"encoding/json"
	"time"

	"userauth/internal/model"
)

const userCacheTTL = 5 * time.Minute

// Cache is the key/value store used to cache public user profiles.
// *cache.Client satisfies it; a nil *cache.Client is an always-empty cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func userCacheKey(id string) string {
	return "user:" + id
}

func cachedUser(ctx context.Context, c Cache, id string) *model.User {
	if c == nil {
		return nil
	}
	data, _ := c.Get(ctx, userCacheKey(id))
	if data == nil {
		return nil
	}
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil
	}
	return &user
}

func cacheUser(ctx context.Context, c Cache, user *model.User) {
	if c == nil {
		return
	}
	if payload, err := json.Marshal(user); err == nil {
		_ = c.Set(ctx, userCacheKey(user.ID), payload, userCacheTTL)
	}
}

func evictUser(ctx context.Context, c Cache, id string) {
	if c == nil {
		return
	}
	_ = c.Delete(ctx, userCacheKey(id))
}
