package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"LrcSync/logger"
	"LrcSync/model"

	"github.com/go-redis/redis/v8"
)

const lyricKey = "lyric:%s" // String: LyricRecord JSON

// LyricCache 歌词原文缓存
type LyricCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLyricCache 创建歌词缓存，client 为 nil 时使用全局 RedisClient
func NewLyricCache(client *redis.Client, ttl time.Duration) *LyricCache {
	if client == nil {
		client = RedisClient
	}
	return &LyricCache{client: client, ttl: ttl}
}

// LyricKey 返回 Redis 键
func LyricKey(trackKey string) string {
	return fmt.Sprintf(lyricKey, trackKey)
}

// Get 未命中时返回 (nil, nil)
func (c *LyricCache) Get(ctx context.Context, trackKey string) (*model.LyricRecord, error) {
	if c.client == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := c.client.Get(ctx, LyricKey(trackKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var record model.LyricRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// 缓存内容损坏，删除后按未命中处理
		logger.Warn("歌词缓存解析失败",
			logger.String("trackKey", trackKey),
			logger.ErrorField(err))
		_ = c.client.Del(ctx, LyricKey(trackKey)).Err()
		return nil, nil
	}
	return &record, nil
}

func (c *LyricCache) Set(ctx context.Context, record *model.LyricRecord) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal lyric record: %w", err)
	}
	return c.client.Set(ctx, LyricKey(record.TrackKey), data, c.ttl).Err()
}

func (c *LyricCache) Delete(ctx context.Context, trackKey string) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return c.client.Del(ctx, LyricKey(trackKey)).Err()
}
