// Package metrics 提供问答服务的业务指标收集。
package metrics

import (
	"time"

	"github.com/kart-io/iwac-chat/pkg/observability/metrics"
)

// 问答结果类型。
const (
	OutcomeAnswered = "answered"
	OutcomeDegraded = "degraded"
	OutcomeCached   = "cached"
)

// ChatMetrics 问答服务业务指标。
type ChatMetrics struct {
	registry *metrics.Registry

	questions        metrics.CounterVec
	degraded         metrics.CounterVec
	keywordFallbacks metrics.CounterVec
	llmCalls         metrics.CounterVec
	llmRetries       metrics.CounterVec
	stageDuration    metrics.HistogramVec
	contextTokens    metrics.Histogram
	cacheHits        metrics.Counter
	cacheMisses      metrics.Counter
	corpusDocuments  metrics.Gauge
	corpusReloads    metrics.CounterVec
	startTime        metrics.Gauge

	started time.Time
}

// Snapshot 是 /api/stats 返回的指标快照。
type Snapshot struct {
	Questions        float64 `json:"questions"`
	Answered         float64 `json:"answered"`
	Degraded         float64 `json:"degraded"`
	Cached           float64 `json:"cached"`
	KeywordFallbacks float64 `json:"keyword_fallbacks"`
	LLMRetries       float64 `json:"llm_retries"`
	CacheHits        float64 `json:"cache_hits"`
	CacheMisses      float64 `json:"cache_misses"`
	CorpusDocuments  float64 `json:"corpus_documents"`
	CorpusReloads    float64 `json:"corpus_reloads"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

// New 创建指标集合，指标名以 namespace 为前缀。
func New(namespace string) *ChatMetrics {
	p := namespace + "_"
	m := &ChatMetrics{
		registry:         metrics.NewRegistry(),
		questions:        metrics.NewCounterVec(p+"questions_total", "Questions answered, by outcome."),
		degraded:         metrics.NewCounterVec(p+"degraded_answers_total", "Degraded answers, by reason."),
		keywordFallbacks: metrics.NewCounterVec(p+"keyword_fallbacks_total", "Keyword extractions that used the heuristic fallback, by reason."),
		llmCalls:         metrics.NewCounterVec(p+"llm_calls_total", "LLM calls, by operation and status."),
		llmRetries:       metrics.NewCounterVec(p+"llm_retries_total", "LLM call retries, by operation."),
		stageDuration:    metrics.NewHistogramVec(p+"stage_duration_seconds", "Pipeline stage duration in seconds.", nil),
		contextTokens:    metrics.NewHistogram(p+"context_tokens", "Estimated tokens of assembled context blocks.", []float64{250, 500, 1000, 2000, 3000, 4000, 8000}),
		cacheHits:        metrics.NewCounter(p+"cache_hits_total", "Answer cache hits."),
		cacheMisses:      metrics.NewCounter(p+"cache_misses_total", "Answer cache misses."),
		corpusDocuments:  metrics.NewGauge(p+"corpus_documents", "Documents in the current corpus."),
		corpusReloads:    metrics.NewCounterVec(p+"corpus_reloads_total", "Corpus reloads, by result."),
		startTime:        metrics.NewGauge(p+"process_start_time_seconds", "Start time of the process since unix epoch in seconds."),
		started:          time.Now(),
	}
	m.startTime.Set(float64(m.started.Unix()))

	m.registry.Register(
		m.questions, m.degraded, m.keywordFallbacks, m.llmCalls, m.llmRetries,
		m.stageDuration, m.contextTokens, m.cacheHits, m.cacheMisses,
		m.corpusDocuments, m.corpusReloads, m.startTime,
	)
	return m
}

// Registry 返回底层注册表，HTTP 中间件指标可注册到同一处导出。
func (m *ChatMetrics) Registry() *metrics.Registry {
	return m.registry
}

// RecordQuestion 记录一次问答及其结果。
func (m *ChatMetrics) RecordQuestion(outcome string) {
	m.questions.With(map[string]string{"outcome": outcome}).Inc()
}

// RecordDegraded 记录降级回答的原因。
func (m *ChatMetrics) RecordDegraded(reason string) {
	m.degraded.With(map[string]string{"reason": reason}).Inc()
}

// RecordKeywordFallback 记录关键词提取回退。
func (m *ChatMetrics) RecordKeywordFallback(reason string) {
	m.keywordFallbacks.With(map[string]string{"reason": reason}).Inc()
}

// RecordLLMCall 记录一次 LLM 调用。
func (m *ChatMetrics) RecordLLMCall(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.llmCalls.With(map[string]string{"operation": operation, "status": status}).Inc()
}

// RecordLLMRetry 记录一次 LLM 重试。
func (m *ChatMetrics) RecordLLMRetry(operation string) {
	m.llmRetries.With(map[string]string{"operation": operation}).Inc()
}

// ObserveStage 记录流水线阶段耗时。
func (m *ChatMetrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.With(map[string]string{"stage": stage}).Observe(d.Seconds())
}

// ObserveContextTokens 记录上下文块的 token 数。
func (m *ChatMetrics) ObserveContextTokens(tokens int) {
	m.contextTokens.Observe(float64(tokens))
}

// RecordCache 记录缓存命中或未命中。
func (m *ChatMetrics) RecordCache(hit bool) {
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

// SetCorpusDocuments 更新当前语料文档数。
func (m *ChatMetrics) SetCorpusDocuments(n int) {
	m.corpusDocuments.Set(float64(n))
}

// RecordReload 记录一次语料重新加载。
func (m *ChatMetrics) RecordReload(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.corpusReloads.With(map[string]string{"result": result}).Inc()
}

// Export 导出 Prometheus 文本格式。
func (m *ChatMetrics) Export() string {
	return m.registry.Export()
}

// Snapshot 返回当前统计信息。
func (m *ChatMetrics) Snapshot() Snapshot {
	answered := m.questions.With(map[string]string{"outcome": OutcomeAnswered}).Get()
	degraded := m.questions.With(map[string]string{"outcome": OutcomeDegraded}).Get()
	cached := m.questions.With(map[string]string{"outcome": OutcomeCached}).Get()
	return Snapshot{
		Questions:        answered + degraded + cached,
		Answered:         answered,
		Degraded:         degraded,
		Cached:           cached,
		KeywordFallbacks: m.keywordFallbacks.Sum(),
		LLMRetries:       m.llmRetries.Sum(),
		CacheHits:        m.cacheHits.Get(),
		CacheMisses:      m.cacheMisses.Get(),
		CorpusDocuments:  m.corpusDocuments.Get(),
		CorpusReloads:    m.corpusReloads.With(map[string]string{"result": "success"}).Get(),
		UptimeSeconds:    time.Since(m.started).Seconds(),
	}
}
