package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore persists one fleet API bearer token per browser session.
// Key format: session:token:<session_id>
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore creates a TokenStore whose entries expire after ttl, matching
// the session cookie lifetime.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Save stores the token, replacing any previous value and resetting the TTL.
func (s *TokenStore) Save(ctx context.Context, sessionID, token string) error {
	if err := s.client.Set(ctx, s.key(sessionID), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	return nil
}

// Find returns the stored token, or "" when none exists.
func (s *TokenStore) Find(ctx context.Context, sessionID string) (string, error) {
	token, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session token: %w", err)
	}
	return token, nil
}

// Delete removes the stored token. Deleting a missing token is not an error.
func (s *TokenStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}
	return nil
}

func (s *TokenStore) key(sessionID string) string {
	return "session:token:" + sessionID
}
