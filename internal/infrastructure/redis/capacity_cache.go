package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// CapacityCache はクラスの空き枠数キャッシュを管理する
// 予約の作成・キャンセルで必ず無効化されるため、読み取り系の
// 定員照会を高速化する目的でのみ使用する
type CapacityCache struct {
	client *redis.Client
}

// NewCapacityCache は新しいCapacityCacheインスタンスを作成する
func NewCapacityCache(client *redis.Client) *CapacityCache {
	return &CapacityCache{client: client}
}

// GetOccupied はクラスの有効予約数をキャッシュから取得する
func (c *CapacityCache) GetOccupied(ctx context.Context, classID string) (int, error) {
	key := c.occupiedKey(classID)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetOccupied はクラスの有効予約数をキャッシュに保存する
func (c *CapacityCache) SetOccupied(ctx context.Context, classID string, count int, ttl time.Duration) error {
	key := c.occupiedKey(classID)
	if err := c.client.Set(ctx, key, count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はクラスのキャッシュを無効化する
func (c *CapacityCache) Invalidate(ctx context.Context, classID string) error {
	key := c.occupiedKey(classID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *CapacityCache) occupiedKey(classID string) string {
	return fmt.Sprintf("class:occupied:%s", classID)
}
