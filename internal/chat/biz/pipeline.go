package biz

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/iwac-chat/internal/chat/metrics"
	"github.com/kart-io/iwac-chat/internal/chat/store"
	"github.com/kart-io/iwac-chat/internal/model"
	ctxlog "github.com/kart-io/iwac-chat/pkg/infra/logger"
	"github.com/kart-io/iwac-chat/pkg/infra/tracing"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
)

const tracerName = "iwac-chat/biz"

// 降级原因。
const (
	ReasonEmptyQuestion       = "empty_question"
	ReasonEmptyCorpus         = "empty_corpus"
	ReasonGenerationTransient = "generation_transient"
	ReasonGenerationTerminal  = "generation_terminal"
)

// PipelineConfig 流水线配置。
type PipelineConfig struct {
	// NoInformationMessage 语料为空时的回答，为空时使用 DefaultNoInformationMessage。
	NoInformationMessage string
	// UnavailableMessage 生成失败时的回答，为空时使用 DefaultUnavailableMessage。
	UnavailableMessage string
	// RequestTimeout 单次问答的超时，<=0 表示只受调用方 context 约束。
	RequestTimeout time.Duration
}

// Pipeline 依次执行关键词提取、检索、上下文组装、回答生成与来源归属。
type Pipeline struct {
	holder    *store.Holder
	extractor *KeywordExtractor
	retriever *Retriever
	assembler *Assembler
	generator *Generator
	cache     *AnswerCache
	metrics   *metrics.ChatMetrics
	config    PipelineConfig
}

// NewPipeline 组装流水线，cache 可为 nil。
func NewPipeline(
	holder *store.Holder,
	extractor *KeywordExtractor,
	retriever *Retriever,
	assembler *Assembler,
	generator *Generator,
	cache *AnswerCache,
	m *metrics.ChatMetrics,
	config PipelineConfig,
) *Pipeline {
	if config.NoInformationMessage == "" {
		config.NoInformationMessage = DefaultNoInformationMessage
	}
	if config.UnavailableMessage == "" {
		config.UnavailableMessage = DefaultUnavailableMessage
	}
	return &Pipeline{
		holder:    holder,
		extractor: extractor,
		retriever: retriever,
		assembler: assembler,
		generator: generator,
		cache:     cache,
		metrics:   orDefault(m),
		config:    config,
	}
}

// Result 是一次问答的完整结果，供日志、CLI 和测试使用。
type Result struct {
	Response   *model.ChatResponse
	Extraction Extraction
	Retrieval  *RetrievalResult
	Context    *ContextBlock
	Cached     bool
	Degraded   bool
	// Reason 仅在降级时非空。
	Reason string
	// Err 是导致降级的内部错误，不会返回给最终用户。
	Err error
}

// Answer 返回回答及其来源，从不返回错误。
func (p *Pipeline) Answer(ctx context.Context, question string, history []model.ConversationTurn) *model.ChatResponse {
	return p.Run(ctx, question, history).Response
}

// Run 执行一次问答。内部错误都被转换为降级回答。
func (p *Pipeline) Run(ctx context.Context, question string, history []model.ConversationTurn) *Result {
	if p.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.RequestTimeout)
		defer cancel()
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "chat.answer")
	defer span.End()
	ctx = ctxlog.WithTraceContext(ctx)

	question = strings.TrimSpace(question)
	if question == "" {
		return p.degrade(ctx, &Result{}, ReasonEmptyQuestion, errors.ErrEmptyQuestion)
	}

	if resp, ok := p.cache.Get(ctx, question, history); ok {
		p.metrics.RecordCache(true)
		p.metrics.RecordQuestion(metrics.OutcomeCached)
		tracing.AddSpanAttributes(ctx, attribute.Bool("chat.cached", true))
		return &Result{Response: resp, Cached: true}
	}
	if p.cache.Enabled() {
		p.metrics.RecordCache(false)
	}

	// 整个请求使用同一个语料快照
	corpus := p.holder.Current()
	res := &Result{}
	if corpus == nil || corpus.Len() == 0 {
		return p.degrade(ctx, res, ReasonEmptyCorpus, errors.ErrRetrievalEmptyCorpus)
	}

	start := time.Now()
	res.Extraction = p.extractor.Extract(ctx, question)
	p.metrics.ObserveStage("keywords", time.Since(start))
	tracing.AddSpanAttributes(ctx,
		attribute.StringSlice("chat.keywords", res.Extraction.Keywords),
		attribute.String("chat.keywords.status", res.Extraction.Status.String()),
	)

	start = time.Now()
	retrieval, err := p.retriever.Retrieve(corpus, res.Extraction.Keywords)
	p.metrics.ObserveStage("retrieve", time.Since(start))
	if err != nil {
		return p.degrade(ctx, res, ReasonEmptyCorpus, err)
	}
	res.Retrieval = retrieval

	res.Context = p.assembler.Assemble(retrieval.Relevant())
	p.metrics.ObserveContextTokens(res.Context.Tokens)
	tracing.AddSpanAttributes(ctx,
		attribute.Int("chat.retrieved", len(retrieval.Items)),
		attribute.Int("chat.context.documents", len(res.Context.Documents)),
		attribute.Int("chat.context.tokens", res.Context.Tokens),
	)
	ctxlog.L(ctx).Debugw("Context assembled",
		"keywords", res.Extraction.Keywords,
		"retrieved", len(retrieval.Items),
		"relevant", len(retrieval.Relevant()),
		"included", len(res.Context.Documents),
		"tokens", res.Context.Tokens,
		"truncated", res.Context.Truncated,
	)

	start = time.Now()
	answer, err := p.generator.Generate(ctx, question, res.Context, history)
	p.metrics.ObserveStage("generate", time.Since(start))
	if err != nil {
		reason := ReasonGenerationTransient
		if stderrors.Is(err, errors.ErrGenerationTerminal) {
			reason = ReasonGenerationTerminal
		}
		return p.degrade(ctx, res, reason, err)
	}

	res.Response = &model.ChatResponse{
		Answer:  answer,
		Sources: Attribute(res.Context),
	}
	p.metrics.RecordQuestion(metrics.OutcomeAnswered)
	p.cache.Set(ctx, question, history, res.Response)
	return res
}

// degrade 生成降级回答: 固定文案且不附带来源。
func (p *Pipeline) degrade(ctx context.Context, res *Result, reason string, err error) *Result {
	msg := p.config.UnavailableMessage
	if reason == ReasonEmptyCorpus || reason == ReasonEmptyQuestion {
		msg = p.config.NoInformationMessage
	}

	res.Response = &model.ChatResponse{Answer: msg, Sources: []model.Source{}}
	res.Degraded = true
	res.Reason = reason
	res.Err = err

	p.metrics.RecordQuestion(metrics.OutcomeDegraded)
	p.metrics.RecordDegraded(reason)
	tracing.RecordError(ctx, err)
	tracing.AddSpanAttributes(ctx, attribute.String("chat.degraded", reason))

	fields := []any{"reason", reason, "error", err.Error()}
	var e *errors.Errno
	if stderrors.As(err, &e) {
		fields = append(fields, "code", e.Code)
	}
	if reason == ReasonEmptyCorpus || reason == ReasonEmptyQuestion {
		ctxlog.L(ctx).Warnw("Returning degraded answer", fields...)
	} else {
		ctxlog.L(ctx).Errorw("Returning degraded answer", fields...)
	}
	return res
}

// Corpus 返回当前语料快照。
func (p *Pipeline) Corpus() *store.Corpus {
	return p.holder.Current()
}

// Cache 返回回答缓存，可能为 nil。
func (p *Pipeline) Cache() *AnswerCache {
	return p.cache
}

// Metrics 返回业务指标。
func (p *Pipeline) Metrics() *metrics.ChatMetrics {
	return p.metrics
}
