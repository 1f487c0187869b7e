package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kart-io/logger"

	"github.com/kart-io/iwac-chat/pkg/infra/pool"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
)

// Holder 持有当前语料快照，重新加载时整体原子替换。
// 请求在开始时取一次 Current()，之后一直使用该快照。
type Holder struct {
	current atomic.Pointer[Corpus]
	loader  Loader
	pool    *pool.Pool

	// reloadMu 串行化重新加载
	reloadMu sync.Mutex
	reloads  atomic.Int64
}

// NewHolder 首次加载语料，失败时返回 ErrCorpusLoad。
func NewHolder(ctx context.Context, loader Loader, p *pool.Pool) (*Holder, error) {
	corpus, err := Load(ctx, loader, p)
	if err != nil {
		return nil, err
	}
	h := &Holder{loader: loader, pool: p}
	h.current.Store(corpus)
	return h, nil
}

// NewStaticHolder 包装一个已加载的语料，没有 loader 时 Reload 不可用。
func NewStaticHolder(corpus *Corpus) *Holder {
	h := &Holder{}
	h.current.Store(corpus)
	return h
}

// Current 返回当前语料快照。
func (h *Holder) Current() *Corpus {
	return h.current.Load()
}

// Swap 替换当前语料并返回旧语料。
func (h *Holder) Swap(corpus *Corpus) *Corpus {
	old := h.current.Swap(corpus)
	h.reloads.Add(1)
	return old
}

// Reload 从 loader 重新加载。失败时保留旧语料并返回 ErrCorpusReload。
func (h *Holder) Reload(ctx context.Context) (*Corpus, error) {
	if h.loader == nil {
		return nil, errors.ErrCorpusReload.WithMessage("Corpus has no reloadable source")
	}

	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	corpus, err := Load(ctx, h.loader, h.pool)
	if err != nil {
		logger.Errorw("Corpus reload failed, keeping previous corpus",
			"source", h.loader.Describe(),
			"documents", h.Current().Len(),
			"error", err.Error(),
		)
		return nil, errors.ErrCorpusReload.WithCause(err)
	}

	old := h.Swap(corpus)
	logger.Infow("Corpus swapped",
		"source", corpus.Source(),
		"previous_documents", old.Len(),
		"documents", corpus.Len(),
	)
	return corpus, nil
}

// Reloads 返回成功替换的次数。
func (h *Holder) Reloads() int64 {
	return h.reloads.Load()
}
