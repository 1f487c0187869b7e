package biz

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/internal/chat/metrics"
	"github.com/kart-io/iwac-chat/internal/chat/store"
	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
)

type pipelineOpts struct {
	budget  int
	timeout time.Duration
}

func newTestPipeline(t *testing.T, p *fakeProvider, docs []model.Document, opts pipelineOpts) *Pipeline {
	t.Helper()
	if opts.budget == 0 {
		opts.budget = 3000
	}
	var holder *store.Holder
	if len(docs) > 0 {
		holder = store.NewStaticHolder(newCorpus(t, docs))
	} else {
		holder = store.NewStaticHolder(nil)
	}
	m := metrics.New("test")
	return NewPipeline(
		holder,
		NewKeywordExtractor(p, fastRetry(3), 8, m),
		NewRetriever(5),
		NewAssembler(opts.budget, 500),
		NewGenerator(p, fastRetry(3), GeneratorConfig{}, m),
		nil,
		m,
		PipelineConfig{RequestTimeout: opts.timeout},
	)
}

func TestPipelineAnswersWithSources(t *testing.T) {
	p := &fakeProvider{keywords: `["hadj", "Kérékou"]`, answer: "Sous Kérékou, le hadj était organisé par l'État."}
	pl := newTestPipeline(t, p, hadjDocs, pipelineOpts{})

	res := pl.Run(context.Background(), "Comment le hadj était-il organisé sous Kérékou ?", nil)
	require.False(t, res.Degraded, "unexpected degradation: %v", res.Err)
	assert.Equal(t, "Sous Kérékou, le hadj était organisé par l'État.", res.Response.Answer)
	require.Len(t, res.Response.Sources, 1)
	assert.Equal(t, model.Source{Title: "Hajj under Kérékou", URL: "http://a", Publisher: "X", Date: "1996"}, res.Response.Sources[0])

	// 上下文只包含相关文档
	assert.Contains(t, p.lastMessages[len(p.lastMessages)-1].Content, "Hajj under Kérékou")
	assert.NotContains(t, p.lastMessages[len(p.lastMessages)-1].Content, "Secularism views")

	snap := pl.Metrics().Snapshot()
	assert.Equal(t, float64(1), snap.Answered)
	assert.Zero(t, snap.Degraded)
}

func TestPipelineEmptyCorpus(t *testing.T) {
	p := &fakeProvider{keywords: `["hadj"]`, answer: "x"}
	pl := newTestPipeline(t, p, nil, pipelineOpts{})

	res := pl.Run(context.Background(), "hadj ?", nil)
	assert.True(t, res.Degraded)
	assert.Equal(t, ReasonEmptyCorpus, res.Reason)
	assert.Equal(t, DefaultNoInformationMessage, res.Response.Answer)
	assert.NotNil(t, res.Response.Sources)
	assert.Empty(t, res.Response.Sources)
	assert.True(t, stderrors.Is(res.Err, errors.ErrRetrievalEmptyCorpus))

	keywordCalls, chatCalls := p.calls()
	assert.Zero(t, keywordCalls)
	assert.Zero(t, chatCalls)
}

func TestPipelineSmallBudgetKeepsOneTruncatedSource(t *testing.T) {
	docs := []model.Document{
		{ID: "1", Title: "Hajj long", FullText: strings.Repeat("hadj Kérékou pèlerinage ", 200), URL: "http://long"},
		{ID: "2", Title: "Hajj court", FullText: "hadj", URL: "http://short"},
	}
	p := &fakeProvider{keywords: `["hadj", "Kérékou"]`, answer: "réponse"}
	pl := newTestPipeline(t, p, docs, pipelineOpts{budget: 80})

	res := pl.Run(context.Background(), "hadj sous Kérékou ?", nil)
	require.False(t, res.Degraded)
	assert.True(t, res.Context.Truncated)
	assert.LessOrEqual(t, res.Context.Tokens, 80)
	require.Len(t, res.Response.Sources, 1)
	assert.Equal(t, "http://long", res.Response.Sources[0].URL)
}

func TestPipelineGenerationFailureDegrades(t *testing.T) {
	tests := []struct {
		name   string
		errs   []error
		reason string
	}{
		{"transient", []error{statusErr(503), statusErr(503), statusErr(503)}, ReasonGenerationTransient},
		{"terminal", []error{statusErr(400)}, ReasonGenerationTerminal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{keywords: `["hadj"]`, answerErrs: tt.errs}
			pl := newTestPipeline(t, p, hadjDocs, pipelineOpts{})

			res := pl.Run(context.Background(), "hadj ?", nil)
			assert.True(t, res.Degraded)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, DefaultUnavailableMessage, res.Response.Answer)
			assert.NotNil(t, res.Response.Sources)
			assert.Empty(t, res.Response.Sources)
			assert.Equal(t, float64(1), pl.Metrics().Snapshot().Degraded)
		})
	}
}

func TestPipelineKeywordFailureStillAnswers(t *testing.T) {
	p := &fakeProvider{keywordErrs: []error{statusErr(401)}, answer: "réponse"}
	pl := newTestPipeline(t, p, hadjDocs, pipelineOpts{})

	res := pl.Run(context.Background(), "Le hadj sous Kérékou ?", nil)
	require.False(t, res.Degraded)
	assert.False(t, res.Extraction.Parsed())
	assert.Equal(t, FallbackLLMError, res.Extraction.Reason)
	assert.Equal(t, "réponse", res.Response.Answer)
	require.Len(t, res.Response.Sources, 1)
	assert.Equal(t, "http://a", res.Response.Sources[0].URL)
}

func TestPipelineNoRelevantDocument(t *testing.T) {
	p := &fakeProvider{keywords: `["tabaski"]`, answer: "Je ne sais pas."}
	pl := newTestPipeline(t, p, hadjDocs, pipelineOpts{})

	res := pl.Run(context.Background(), "Et la tabaski ?", nil)
	require.False(t, res.Degraded)
	assert.Empty(t, res.Response.Sources)
	assert.Contains(t, p.lastMessages[len(p.lastMessages)-1].Content, noContextNotice)
}

func TestPipelineEmptyQuestion(t *testing.T) {
	p := &fakeProvider{}
	pl := newTestPipeline(t, p, hadjDocs, pipelineOpts{})

	res := pl.Run(context.Background(), "   ", nil)
	assert.True(t, res.Degraded)
	assert.Equal(t, ReasonEmptyQuestion, res.Reason)
	assert.True(t, stderrors.Is(res.Err, errors.ErrEmptyQuestion))
	keywordCalls, chatCalls := p.calls()
	assert.Zero(t, keywordCalls+chatCalls)
}

func TestPipelineTimeout(t *testing.T) {
	p := &fakeProvider{keywords: `["hadj"]`, answer: "trop tard", answerDelay: time.Second}
	pl := newTestPipeline(t, p, hadjDocs, pipelineOpts{timeout: 30 * time.Millisecond})

	start := time.Now()
	res := pl.Run(context.Background(), "hadj ?", nil)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, res.Degraded)
	assert.Equal(t, ReasonGenerationTransient, res.Reason)
	assert.True(t, stderrors.Is(res.Err, errors.ErrRequestTimeout))
}

func TestPipelineHistoryIsForwarded(t *testing.T) {
	p := &fakeProvider{keywords: `["hadj"]`, answer: "oui"}
	pl := newTestPipeline(t, p, hadjDocs, pipelineOpts{})

	history := []model.ConversationTurn{
		{Role: model.RoleUser, Text: "Parle-moi du hadj."},
		{Role: model.RoleAssistant, Text: "Le hadj est le pèlerinage."},
	}
	res := pl.Run(context.Background(), "Et sous Kérékou ?", history)
	require.False(t, res.Degraded)
	require.Len(t, p.lastMessages, 4)
	assert.Equal(t, "Parle-moi du hadj.", p.lastMessages[1].Content)
	assert.Equal(t, "Le hadj est le pèlerinage.", p.lastMessages[2].Content)
}
