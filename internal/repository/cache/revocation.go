package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked_token:"

// TokenBlocklist remembers revoked token ids until the tokens would have expired.
type TokenBlocklist struct {
	client redis.Cmdable
}

func NewTokenBlocklist(client redis.Cmdable) *TokenBlocklist {
	return &TokenBlocklist{
		client: client,
	}
}

func (b *TokenBlocklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := b.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("b.client.Set -> %w", err)
	}

	return nil
}

func (b *TokenBlocklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("b.client.Exists -> %w", err)
	}

	return n > 0, nil
}
