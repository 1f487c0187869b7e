package biz

import (
	"sort"

	"github.com/kart-io/iwac-chat/internal/chat/store"
	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
)

// ScoredDocument 是检索结果中的一项。
type ScoredDocument struct {
	Document *model.Document
	// Position 文档在语料中的加载顺序。
	Position int
	Score    float64
}

// RetrievalResult 按分数降序排列，同分时按语料顺序。
type RetrievalResult struct {
	Items []ScoredDocument
}

// Relevant 返回分数大于零的前缀。
func (r *RetrievalResult) Relevant() []ScoredDocument {
	for i, item := range r.Items {
		if item.Score <= 0 {
			return r.Items[:i]
		}
	}
	return r.Items
}

// Retriever 在语料索引上做余弦相似度排序。
type Retriever struct {
	topK int
}

// NewRetriever creates a retriever returning at most topK documents.
func NewRetriever(topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{topK: topK}
}

// TopK 返回检索宽度。
func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve 对全部文档打分并返回前 k 篇。
// 零分文档只在非零分文档不足 k 篇时按语料顺序补齐。语料为空时返回 ErrRetrievalEmptyCorpus。
func (r *Retriever) Retrieve(corpus *store.Corpus, keywords []string) (*RetrievalResult, error) {
	if corpus == nil || corpus.Len() == 0 {
		return nil, errors.ErrRetrievalEmptyCorpus
	}

	scores := corpus.Index().Scores(keywords)
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	k := min(r.topK, len(order))
	items := make([]ScoredDocument, k)
	for i, pos := range order[:k] {
		items[i] = ScoredDocument{
			Document: corpus.At(pos),
			Position: pos,
			Score:    scores[pos],
		}
	}
	return &RetrievalResult{Items: items}, nil
}
