// Package passwordreset issues single-use reset tokens kept in Redis.
package passwordreset

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenTTL is how long a reset link stays valid.
const TokenTTL = time.Hour

var ErrInvalidToken = errors.New("invalid or expired reset token")

// Key is the Redis key holding a subscriber's current token.
func Key(subscriberID uint) string {
	return fmt.Sprintf("password_reset:%d", subscriberID)
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client, ttl: TokenTTL}
}

// Issue creates a token for the subscriber, replacing any earlier one.
func (s *Store) Issue(ctx context.Context, subscriberID uint) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	if err := s.client.Set(ctx, Key(subscriberID), token, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// Verify checks token without consuming it.
func (s *Store) Verify(ctx context.Context, subscriberID uint, token string) error {
	stored, err := s.client.Get(ctx, Key(subscriberID)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if token == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		return ErrInvalidToken
	}
	return nil
}

// Consume deletes the subscriber's token.
func (s *Store) Consume(ctx context.Context, subscriberID uint) error {
	return s.client.Del(ctx, Key(subscriberID)).Err()
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}
