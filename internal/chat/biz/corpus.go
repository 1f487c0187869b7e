package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/kart-io/iwac-chat/internal/chat/metrics"
	"github.com/kart-io/iwac-chat/internal/chat/store"
	"github.com/kart-io/iwac-chat/internal/model"
)

// CorpusManager 负责语料查询与重载，重载成功后清空回答缓存。
type CorpusManager struct {
	holder  *store.Holder
	cache   *AnswerCache
	metrics *metrics.ChatMetrics
}

// NewCorpusManager creates a corpus manager. cache may be nil.
func NewCorpusManager(holder *store.Holder, cache *AnswerCache, m *metrics.ChatMetrics) *CorpusManager {
	m = orDefault(m)
	m.SetCorpusDocuments(holder.Current().Len())
	return &CorpusManager{holder: holder, cache: cache, metrics: m}
}

// Current 返回当前语料快照，可能为 nil。
func (c *CorpusManager) Current() *store.Corpus {
	return c.holder.Current()
}

// Document 按 ID 查找文档。
func (c *CorpusManager) Document(id string) (*model.Document, error) {
	return c.holder.Current().Get(id)
}

// Reloads 返回语料替换次数。
func (c *CorpusManager) Reloads() int64 {
	return c.holder.Reloads()
}

// Reload 重新加载语料。失败时旧语料继续服务。
func (c *CorpusManager) Reload(ctx context.Context) (*store.Corpus, error) {
	corpus, err := c.holder.Reload(ctx)
	c.metrics.RecordReload(err)
	if err != nil {
		return nil, err
	}
	c.metrics.SetCorpusDocuments(corpus.Len())

	// 旧回答引用的文档可能已不存在
	if n, err := c.cache.Clear(ctx); err != nil {
		logger.Warnw("failed to clear answer cache after reload", "error", err.Error())
	} else if n > 0 {
		logger.Infow("Answer cache cleared after reload", "keys", n)
	}
	return corpus, nil
}
