package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/internal/pkg/textutil"
	"github.com/kart-io/iwac-chat/pkg/utils/json"
)

// AnswerCacheConfig 回答缓存配置。
type AnswerCacheConfig struct {
	// Enabled 是否启用缓存。
	Enabled bool
	// TTL 缓存过期时间。
	TTL time.Duration
	// KeyPrefix 缓存键前缀。
	KeyPrefix string
}

// AnswerCache 以问题加历史为键缓存非降级回答，读写失败都按未命中处理。
type AnswerCache struct {
	redis  *goredis.Client
	config AnswerCacheConfig
}

// NewAnswerCache 创建回答缓存实例。redis 为 nil 时缓存不生效。
func NewAnswerCache(redis *goredis.Client, config AnswerCacheConfig) *AnswerCache {
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "iwac-chat:answer:"
	}
	return &AnswerCache{redis: redis, config: config}
}

// Enabled 报告缓存是否可用。
func (c *AnswerCache) Enabled() bool {
	return c != nil && c.config.Enabled && c.redis != nil
}

// Key 返回 prefix + sha256(question + history)。
func (c *AnswerCache) Key(question string, history []model.ConversationTurn) string {
	material := question
	if len(history) > 0 {
		if data, err := json.Marshal(history); err == nil {
			material += string(data)
		}
	}
	return c.config.KeyPrefix + textutil.HashString(material)
}

// Get 读取缓存，未命中或出错时返回 false。
func (c *AnswerCache) Get(ctx context.Context, question string, history []model.ConversationTurn) (*model.ChatResponse, bool) {
	if !c.Enabled() {
		return nil, false
	}

	key := c.Key(question, history)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Warnw("failed to get answer from cache", "error", err.Error(), "key", key)
		}
		return nil, false
	}

	var resp model.ChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Warnw("failed to unmarshal cached answer", "error", err.Error(), "key", key)
		// 删除损坏的缓存
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}

	logger.Debugw("answer cache hit", "key", key)
	return &resp, true
}

// Set 写入缓存，失败只记录日志。
func (c *AnswerCache) Set(ctx context.Context, question string, history []model.ConversationTurn, resp *model.ChatResponse) {
	if !c.Enabled() {
		return
	}

	key := c.Key(question, history)
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Warnw("failed to marshal answer for caching", "error", err.Error())
		return
	}
	if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		logger.Warnw("failed to set answer cache", "error", err.Error(), "key", key)
		return
	}
	logger.Debugw("cached answer", "key", key, "ttl", c.config.TTL.String())
}

// Clear 删除所有带前缀的缓存键，返回删除数量。
func (c *AnswerCache) Clear(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}

	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+"*", 0).Iterator()
	deleted := 0
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("failed to delete cache key", "error", err.Error(), "key", iter.Val())
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	return deleted, nil
}
