package biz

import (
	"context"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/internal/pkg/textutil"
)

func TestAnswerCacheKey(t *testing.T) {
	c := NewAnswerCache(nil, AnswerCacheConfig{})
	history := []model.ConversationTurn{{Role: model.RoleUser, Text: "hadj ?"}}

	k1 := c.Key("Et Kérékou ?", nil)
	k2 := c.Key("Et Kérékou ?", history)
	assert.True(t, strings.HasPrefix(k1, "iwac-chat:answer:"))
	assert.Len(t, strings.TrimPrefix(k1, "iwac-chat:answer:"), 64)
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k2, c.Key("Et Kérékou ?", history))
	assert.Equal(t, "iwac-chat:answer:"+textutil.HashString("Et Kérékou ?"), k1)
}

func TestAnswerCacheDisabled(t *testing.T) {
	var nilCache *AnswerCache
	assert.False(t, nilCache.Enabled())

	c := NewAnswerCache(nil, AnswerCacheConfig{Enabled: true})
	assert.False(t, c.Enabled())
	_, ok := c.Get(context.Background(), "q", nil)
	assert.False(t, ok)
	c.Set(context.Background(), "q", nil, &model.ChatResponse{Answer: "a"})
	n, err := c.Clear(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, n)
}

// redisClient 连接本地 Redis，不可用时跳过测试。
func redisClient(t *testing.T) *goredis.Client {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:6379", DialTimeout: 200 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAnswerCacheRoundTrip(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	c := NewAnswerCache(client, AnswerCacheConfig{Enabled: true, TTL: time.Minute, KeyPrefix: "iwac-chat-test:" + t.Name() + ":"})
	t.Cleanup(func() { _, _ = c.Clear(ctx) })

	resp := &model.ChatResponse{Answer: "oui", Sources: []model.Source{{Title: "Hajj", URL: "http://a"}}}
	c.Set(ctx, "hadj ?", nil, resp)

	got, ok := c.Get(ctx, "hadj ?", nil)
	require.True(t, ok)
	assert.Equal(t, resp, got)

	n, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok = c.Get(ctx, "hadj ?", nil)
	assert.False(t, ok)
}

func TestAnswerCacheDropsCorruptEntry(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	c := NewAnswerCache(client, AnswerCacheConfig{Enabled: true, KeyPrefix: "iwac-chat-test:" + t.Name() + ":"})

	key := c.Key("hadj ?", nil)
	require.NoError(t, client.Set(ctx, key, "{not json", time.Minute).Err())

	_, ok := c.Get(ctx, "hadj ?", nil)
	assert.False(t, ok)
	assert.Equal(t, int64(0), client.Exists(ctx, key).Val())
}

func TestPipelineServesCachedAnswer(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	p := &fakeProvider{keywords: `["hadj"]`, answer: "oui"}
	pl := newTestPipeline(t, p, hadjDocs, pipelineOpts{})
	pl.cache = NewAnswerCache(client, AnswerCacheConfig{Enabled: true, KeyPrefix: "iwac-chat-test:" + t.Name() + ":"})
	t.Cleanup(func() { _, _ = pl.cache.Clear(ctx) })

	first := pl.Run(ctx, "hadj ?", nil)
	require.False(t, first.Degraded)
	second := pl.Run(ctx, "hadj ?", nil)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Response, second.Response)

	_, chatCalls := p.calls()
	assert.Equal(t, 1, chatCalls)
	snap := pl.Metrics().Snapshot()
	assert.Equal(t, float64(1), snap.CacheHits)
	assert.Equal(t, float64(1), snap.CacheMisses)
}
