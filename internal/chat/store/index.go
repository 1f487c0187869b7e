package store

import (
	"math"
	"slices"
	"strings"

	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/internal/pkg/textutil"
	"github.com/kart-io/iwac-chat/pkg/infra/pool"
)

// Index 是语料的 TF-IDF 词项向量索引，构建后只读。
type Index struct {
	idf     map[string]float64
	vectors []map[string]float64
}

// FeatureText 返回参与索引的文本: 标题、主题、地点与正文。
func FeatureText(doc *model.Document) string {
	parts := make([]string, 0, 3+len(doc.Subject)+len(doc.Spatial))
	parts = append(parts, doc.Title)
	parts = append(parts, doc.Subject...)
	parts = append(parts, doc.Spatial...)
	parts = append(parts, doc.FullText)
	return strings.Join(parts, " ")
}

// BuildIndex 为文档构建平滑 TF-IDF 向量并做 L2 归一化。
// p 为 nil 时在当前 goroutine 中构建。
func BuildIndex(docs []model.Document, p *pool.Pool) *Index {
	n := len(docs)
	tfs := make([]map[string]float64, n)
	forEach(p, n, func(i int) {
		tf := make(map[string]float64)
		for _, tok := range textutil.Tokenize(FeatureText(&docs[i])) {
			tf[tok]++
		}
		tfs[i] = tf
	})

	df := make(map[string]int)
	for _, tf := range tfs {
		for term := range tf {
			df[term]++
		}
	}

	idx := &Index{
		idf:     make(map[string]float64, len(df)),
		vectors: tfs,
	}
	for term, d := range df {
		idx.idf[term] = math.Log(float64(1+n)/float64(1+d)) + 1
	}

	forEach(p, n, func(i int) {
		vec := tfs[i]
		for term, tf := range vec {
			vec[term] = tf * idx.idf[term]
		}
		normalize(vec)
	})
	return idx
}

// Len 返回索引中的文档数。
func (x *Index) Len() int {
	return len(x.vectors)
}

// VocabularySize 返回词表大小。
func (x *Index) VocabularySize() int {
	return len(x.idf)
}

// QueryVector 将关键词转换为归一化的查询向量，词表外的词被忽略。
func (x *Index) QueryVector(keywords []string) map[string]float64 {
	q := make(map[string]float64)
	for _, kw := range keywords {
		for _, tok := range textutil.Tokenize(kw) {
			if _, ok := x.idf[tok]; ok {
				q[tok]++
			}
		}
	}
	for term, tf := range q {
		q[term] = tf * x.idf[term]
	}
	normalize(q)
	return q
}

// Scores 返回每篇文档与关键词的余弦相似度，下标与语料顺序一致。
func (x *Index) Scores(keywords []string) []float64 {
	q := x.QueryVector(keywords)
	terms := sortedTerms(q)

	scores := make([]float64, len(x.vectors))
	if len(terms) == 0 {
		return scores
	}
	for i, vec := range x.vectors {
		var s float64
		for _, term := range terms {
			s += q[term] * vec[term]
		}
		scores[i] = s
	}
	return scores
}

// 按词项排序求和，保证浮点结果与 map 遍历顺序无关。
func normalize(vec map[string]float64) {
	var sum float64
	for _, term := range sortedTerms(vec) {
		sum += vec[term] * vec[term]
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for term, w := range vec {
		vec[term] = w / norm
	}
}

func sortedTerms(vec map[string]float64) []string {
	terms := make([]string, 0, len(vec))
	for term := range vec {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return terms
}

func forEach(p *pool.Pool, n int, fn func(i int)) {
	if p == nil {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	p.ForEach(n, fn)
}
