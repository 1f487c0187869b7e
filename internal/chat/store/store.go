// Package store holds the IWAC document corpus and its lexical index.
package store

import (
	"fmt"
	"time"

	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/pkg/infra/pool"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
)

// Corpus 是加载完成的只读语料及其索引。
// 多个请求可以不加锁地并发读取同一个 Corpus。
type Corpus struct {
	docs     []model.Document
	byID     map[string]int
	index    *Index
	source   string
	loadedAt time.Time
}

// New 校验文档 ID 唯一并构建索引。
func New(source string, docs []model.Document, p *pool.Pool) (*Corpus, error) {
	byID := make(map[string]int, len(docs))
	for i := range docs {
		id := docs[i].ID
		if id == "" {
			return nil, errors.ErrCorpusLoad.WithCause(fmt.Errorf("record %d has no id", i+1))
		}
		if prev, dup := byID[id]; dup {
			return nil, errors.ErrCorpusLoad.WithCause(fmt.Errorf("duplicate id %q at records %d and %d", id, prev+1, i+1))
		}
		byID[id] = i
	}

	return &Corpus{
		docs:     docs,
		byID:     byID,
		index:    BuildIndex(docs, p),
		source:   source,
		loadedAt: time.Now(),
	}, nil
}

// Get 按 ID 返回文档副本，不存在时返回 ErrDocumentNotFound。
func (c *Corpus) Get(id string) (*model.Document, error) {
	if c == nil {
		return nil, errors.ErrDocumentNotFound.WithCause(fmt.Errorf("id %q: no corpus loaded", id))
	}
	i, ok := c.byID[id]
	if !ok {
		return nil, errors.ErrDocumentNotFound.WithCause(fmt.Errorf("id %q", id))
	}
	doc := c.docs[i].Clone()
	return &doc, nil
}

// All 按加载顺序返回全部文档的副本。
func (c *Corpus) All() []model.Document {
	out := make([]model.Document, c.Len())
	for i := range out {
		out[i] = c.docs[i].Clone()
	}
	return out
}

// At 返回第 i 篇文档，指向语料内部数据，调用方不得修改。
func (c *Corpus) At(i int) *model.Document {
	return &c.docs[i]
}

// Len 返回文档数量，nil 语料为 0。
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// Index 返回语料索引。
func (c *Corpus) Index() *Index {
	return c.index
}

// Source 描述语料来源，例如文件路径。
func (c *Corpus) Source() string {
	return c.source
}

// LoadedAt 返回加载时间。
func (c *Corpus) LoadedAt() time.Time {
	return c.loadedAt
}
