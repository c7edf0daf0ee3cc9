package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// PreferenceCache stores each visitor's language selection in Redis.
type PreferenceCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewPreferenceCache(client *redisv9.Client, ttl time.Duration) *PreferenceCache {
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}
	return &PreferenceCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *PreferenceCache) Load(ctx context.Context, visitorID string) (string, bool, error) {
	lang, err := c.client.Get(ctx, c.preferenceKey(visitorID)).Result()
	if errors.Is(err, redisv9.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get language preference failed: %w", err)
	}
	return lang, true, nil
}

// Save stores lang and restarts the expiry window.
func (c *PreferenceCache) Save(ctx context.Context, visitorID, lang string) error {
	if err := c.client.Set(ctx, c.preferenceKey(visitorID), lang, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set language preference failed: %w", err)
	}
	return nil
}

func (c *PreferenceCache) Delete(ctx context.Context, visitorID string) error {
	if err := c.client.Del(ctx, c.preferenceKey(visitorID)).Err(); err != nil {
		return fmt.Errorf("redis delete language preference failed: %w", err)
	}
	return nil
}

func (c *PreferenceCache) preferenceKey(visitorID string) string {
	return "i18n:preference:" + visitorID
}
