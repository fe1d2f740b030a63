package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"restaurant-pos/models"

	"github.com/redis/go-redis/v9"
)

const availableMenuKey = "menu:available"

// MenuCache keeps the public menu in Redis. A nil *MenuCache or a nil client
// behaves as an always-empty cache.
type MenuCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMenuCache(rdb *redis.Client, ttl time.Duration) *MenuCache {
	return &MenuCache{rdb: rdb, ttl: ttl}
}

func (m *MenuCache) enabled() bool {
	return m != nil && m.rdb != nil
}

// GetAvailable returns ok=false on a miss.
func (m *MenuCache) GetAvailable(ctx context.Context) ([]models.MenuItemView, bool, error) {
	if !m.enabled() {
		return nil, false, nil
	}

	raw, err := m.rdb.Get(ctx, availableMenuKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read menu cache: %w", err)
	}

	var items []models.MenuItemView
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("decode menu cache: %w", err)
	}
	return items, true, nil
}

func (m *MenuCache) SetAvailable(ctx context.Context, items []models.MenuItemView) error {
	if !m.enabled() {
		return nil
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode menu cache: %w", err)
	}
	if err := m.rdb.Set(ctx, availableMenuKey, raw, m.ttl).Err(); err != nil {
		return fmt.Errorf("write menu cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached menu; called after every menu or category write.
func (m *MenuCache) Invalidate(ctx context.Context) error {
	if !m.enabled() {
		return nil
	}
	if err := m.rdb.Del(ctx, availableMenuKey).Err(); err != nil {
		return fmt.Errorf("invalidate menu cache: %w", err)
	}
	return nil
}
