package biz

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/internal/chat/store"
	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/pkg/llm"
	"github.com/kart-io/iwac-chat/pkg/llm/resilience"
)

// fakeProvider 按脚本返回关键词（Generate）和回答（Chat）。
type fakeProvider struct {
	mu sync.Mutex

	keywords     string
	keywordErrs  []error
	answer       string
	answerErrs   []error
	answerDelay  time.Duration
	keywordCalls int
	chatCalls    int
	lastMessages []llm.Message
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, _, _ string) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.keywordCalls
	f.keywordCalls++
	if i < len(f.keywordErrs) && f.keywordErrs[i] != nil {
		return nil, f.keywordErrs[i]
	}
	return &llm.GenerateResponse{Content: f.keywords}, nil
}

func (f *fakeProvider) Chat(ctx context.Context, messages []llm.Message) (*llm.GenerateResponse, error) {
	if f.answerDelay > 0 {
		select {
		case <-time.After(f.answerDelay):
		case <-ctx.Done():
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.chatCalls
	f.chatCalls++
	f.lastMessages = messages
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i < len(f.answerErrs) && f.answerErrs[i] != nil {
		return nil, f.answerErrs[i]
	}
	return &llm.GenerateResponse{Content: f.answer, TokenUsage: &llm.TokenUsage{PromptTokens: 10, CompletionTokens: 5}}, nil
}

func (f *fakeProvider) calls() (keywords, chat int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keywordCalls, f.chatCalls
}

func fastRetry(attempts int) *resilience.RetryConfig {
	return &resilience.RetryConfig{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func statusErr(code int) error {
	return &llm.StatusError{StatusCode: code}
}

var hadjDocs = []model.Document{
	{ID: "1", Title: "Hajj under Kérékou", FullText: "Le hadj des musulmans béninois sous Kérékou.", Publisher: "X", Date: "1996", URL: "http://a"},
	{ID: "2", Title: "Secularism views", FullText: "Débats sur la laïcité au Bénin.", Publisher: "Y", Date: "2001", URL: "http://b"},
}

func newCorpus(t *testing.T, docs []model.Document) *store.Corpus {
	t.Helper()
	c, err := store.New("test", docs, nil)
	require.NoError(t, err)
	return c
}
