package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/pkg/llm"
)

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(map[string]any{})
	assert.Error(t, err, "api_key is required")

	p, err := llm.NewChatProvider(ProviderName, map[string]any{
		"api_key":     "sk-ant",
		"model":       "claude-test",
		"temperature": 0.0,
		"max_tokens":  256,
	})
	require.NoError(t, err)
	cfg := p.(*Provider).config
	assert.Equal(t, "claude-test", cfg.Model)
	assert.Equal(t, 256, cfg.MaxTokens)
}

func TestProviderChat(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, APIVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{
			"model": "claude-3-5-sonnet-20240620",
			"content": [{"type": "text", "text": "Sous Kérékou, "}, {"type": "text", "text": "le hadj était encadré."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 30, "output_tokens": 10}
		}`))
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{BaseURL: server.URL, APIKey: "sk-ant", Model: "m", Timeout: 5 * time.Second, MaxTokens: 1000})
	resp, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "IWAC assistant"},
		{Role: llm.RoleUser, Content: "Bonjour"},
		{Role: llm.RoleAssistant, Content: "Bonjour !"},
		{Role: llm.RoleUser, Content: "Le hadj ?"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Sous Kérékou, le hadj était encadré.", resp.Content)
	assert.Equal(t, 40, resp.TokenUsage.TotalTokens)
	assert.Equal(t, "IWAC assistant", got.System)
	assert.Len(t, got.Messages, 3)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, 1000, got.MaxTokens)
}

func TestProviderRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{BaseURL: server.URL, APIKey: "k", Timeout: 5 * time.Second})
	_, err := p.Generate(context.Background(), "q", "")

	var se *llm.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, 3*time.Second, se.RetryAfter)
}

func TestProviderRequiresUserMessage(t *testing.T) {
	p := NewProviderWithConfig(DefaultConfig())
	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleSystem, Content: "only system"}})
	assert.Error(t, err)
}
