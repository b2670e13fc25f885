package auth

import (
	"context"
	"time"
)

const (
	accessTokenKeyPrefix = "revoked:access_token:"
	resetTokenKeyPrefix  = "used:reset_token:"
)

// KeyValueStore is the subset of the cache client the token store needs.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	RevokeAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	ConsumeResetToken(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
	ReleaseResetToken(ctx context.Context, tokenID string) error
}

// TokenStore keeps revoked session tokens and consumed reset tokens in Redis.
// Entries expire together with the tokens they describe.
type TokenStore struct {
	cache KeyValueStore
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache KeyValueStore) *TokenStore {
	return &TokenStore{cache: cache}
}

// RevokeAccessToken adds a session token to the denylist until it expires.
func (s *TokenStore) RevokeAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, nothing to remember.
		return nil
	}
	return s.cache.Set(ctx, accessTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsAccessTokenRevoked checks if a session token is on the denylist.
func (s *TokenStore) IsAccessTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, accessTokenKeyPrefix+tokenID)
	if err != nil {
		return false, nil // Not revoked if error (fail safe)
	}
	return data != nil, nil
}

// ConsumeResetToken marks a reset token as used. It reports false when the
// token was already consumed.
func (s *TokenStore) ConsumeResetToken(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	return s.cache.SetIfAbsent(ctx, resetTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// ReleaseResetToken makes a consumed reset token usable again. It is called
// when the password change it guarded did not go through.
func (s *TokenStore) ReleaseResetToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, resetTokenKeyPrefix+tokenID)
}
