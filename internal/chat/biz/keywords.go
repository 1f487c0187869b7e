package biz

import (
	"context"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/iwac-chat/internal/chat/metrics"
	"github.com/kart-io/iwac-chat/internal/pkg/textutil"
	"github.com/kart-io/iwac-chat/pkg/llm"
	"github.com/kart-io/iwac-chat/pkg/llm/resilience"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
)

// ExtractionStatus 区分模型解析结果与启发式回退。
type ExtractionStatus int

const (
	// ExtractionParsed 关键词来自模型输出。
	ExtractionParsed ExtractionStatus = iota
	// ExtractionFallback 关键词由问题文本直接推导。
	ExtractionFallback
)

func (s ExtractionStatus) String() string {
	if s == ExtractionParsed {
		return "parsed"
	}
	return "fallback"
}

// FallbackReason 说明为何使用了启发式关键词。
type FallbackReason string

const (
	FallbackEmpty      FallbackReason = "empty"
	FallbackUnparsable FallbackReason = "unparsable"
	FallbackLLMError   FallbackReason = "llm_error"
)

// Extraction 是关键词提取的结果，Keywords 总是非空（问题非空时）。
type Extraction struct {
	Keywords []string
	Status   ExtractionStatus
	Reason   FallbackReason
	// Err 在 FallbackLLMError 时记录原因，不会向调用方传播。
	Err error
}

// Parsed 报告关键词是否来自模型。
func (e Extraction) Parsed() bool {
	return e.Status == ExtractionParsed
}

// KeywordExtractor 通过一次 LLM 调用从问题中提取检索词。
type KeywordExtractor struct {
	provider    llm.ChatProvider
	retry       *resilience.RetryConfig
	maxKeywords int
	metrics     *metrics.ChatMetrics
}

// NewKeywordExtractor creates a keyword extractor.
func NewKeywordExtractor(provider llm.ChatProvider, retry *resilience.RetryConfig, maxKeywords int, m *metrics.ChatMetrics) *KeywordExtractor {
	if maxKeywords <= 0 {
		maxKeywords = 8
	}
	m = orDefault(m)
	return &KeywordExtractor{
		provider:    provider,
		retry:       withRetryHook(retry, m, "keywords"),
		maxKeywords: maxKeywords,
		metrics:     m,
	}
}

// Extract 返回去重后的关键词，顺序与提取顺序一致。
// 模型调用失败或输出不可用时回退到问题中的非停用词。
func (x *KeywordExtractor) Extract(ctx context.Context, question string) Extraction {
	var resp *llm.GenerateResponse
	err := resilience.RetryWithBackoff(ctx, x.retry, func(ctx context.Context) error {
		var callErr error
		resp, callErr = x.provider.Generate(ctx, keywordPrompt(question, x.maxKeywords), keywordSystemPrompt)
		x.metrics.RecordLLMCall("keywords", callErr)
		return callErr
	})
	if err != nil {
		return x.fallback(question, FallbackLLMError, errors.ErrKeywordExtraction.WithCause(err))
	}

	keywords, parsed := ParseKeywords(resp.Content, x.maxKeywords)
	switch {
	case !parsed:
		return x.fallback(question, FallbackUnparsable, nil)
	case len(keywords) == 0:
		return x.fallback(question, FallbackEmpty, nil)
	}

	logger.Debugw("Keywords extracted", "keywords", keywords)
	return Extraction{Keywords: keywords, Status: ExtractionParsed}
}

func (x *KeywordExtractor) fallback(question string, reason FallbackReason, err error) Extraction {
	keywords := FallbackKeywords(question, x.maxKeywords)
	x.metrics.RecordKeywordFallback(string(reason))

	fields := []any{"reason", string(reason), "keywords", keywords}
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	logger.Warnw("Keyword extraction fell back to question terms", fields...)

	return Extraction{Keywords: keywords, Status: ExtractionFallback, Reason: reason, Err: err}
}

// ParseKeywords 解析模型输出。优先取 JSON 数组，否则按行或逗号切分。
// 第二个返回值为 false 表示输出含有无法解析的数组。
func ParseKeywords(output string, maxKeywords int) ([]string, bool) {
	if strings.TrimSpace(output) == "" {
		return nil, true
	}
	candidates, err := textutil.ParseJSONArray(output)
	if err != nil {
		if strings.Contains(output, "[") {
			return nil, false
		}
		candidates = textutil.SplitByLines(output)
	}
	return dedupeKeywords(candidates, maxKeywords), true
}

// FallbackKeywords 从问题中推导关键词，问题非空时结果非空。
func FallbackKeywords(question string, maxKeywords int) []string {
	words := textutil.SignificantWords(question)
	if len(words) == 0 {
		words = strings.Fields(question)
	}
	return dedupeKeywords(words, maxKeywords)
}

// dedupeKeywords 按归一化形式去重并截断到 maxKeywords。
func dedupeKeywords(candidates []string, maxKeywords int) []string {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		key := textutil.Normalize(c)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if maxKeywords > 0 && len(out) == maxKeywords {
			break
		}
	}
	return out
}
