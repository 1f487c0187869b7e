package ollama

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

func TestNewProviderDefaults(t *testing.T) {
	p, err := NewProvider(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, ProviderName, p.Name())

	cfg := p.(*Provider).config
	assert.Equal(t, "http://localhost:11434", cfg.BaseURL)
	assert.Equal(t, 1000, cfg.MaxTokens)
}

func TestProviderChat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3.1:8b","message":{"role":"assistant","content":"[\"hadj\"]"},"done":true,"prompt_eval_count":5,"eval_count":3}`))
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{BaseURL: server.URL, Model: "llama3.1:8b", Timeout: 5 * time.Second, MaxTokens: 64})
	resp, err := p.Generate(context.Background(), "keywords?", "system")
	require.NoError(t, err)

	assert.Equal(t, `["hadj"]`, resp.Content)
	assert.Equal(t, 8, resp.TokenUsage.TotalTokens)
	assert.False(t, got.Stream)
	assert.Equal(t, 64, got.Options.NumPredict)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, string(llm.RoleSystem), got.Messages[0].Role)
}

func TestProviderChatServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})

	var se *llm.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
}
