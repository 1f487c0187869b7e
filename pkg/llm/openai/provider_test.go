package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kart-io/iwac-chat/pkg/llm"
)

const testAPIKey = "test-key"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected BaseURL https://api.openai.com/v1, got %s", cfg.BaseURL)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("expected Model gpt-4o-mini, got %s", cfg.Model)
	}
	if cfg.Timeout != 120*time.Second {
		t.Errorf("expected Timeout 120s, got %v", cfg.Timeout)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name      string
		config    map[string]any
		wantError bool
	}{
		{name: "valid config", config: map[string]any{"api_key": testAPIKey}},
		{
			name: "custom config",
			config: map[string]any{
				"api_key":      testAPIKey,
				"base_url":     "https://example.test/v1",
				"model":        "gpt-4o",
				"organization": "org-123",
				"timeout":      "30s",
			},
		},
		{name: "missing api_key", config: map[string]any{}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			if tt.wantError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if provider.Name() != ProviderName {
				t.Errorf("expected provider name %s, got %s", ProviderName, provider.Name())
			}
		})
	}
}

func TestRegistered(t *testing.T) {
	p, err := llm.NewChatProvider(ProviderName, map[string]any{"api_key": testAPIKey})
	if err != nil {
		t.Fatalf("NewChatProvider failed: %v", err)
	}
	if p.Name() != ProviderName {
		t.Errorf("unexpected name %s", p.Name())
	}
}

func TestProviderChat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("expected Authorization Bearer test-key")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Le hadj était organisé par l'État."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20}
		}`))
	}))
	defer server.Close()

	provider := NewProviderWithConfig(&Config{
		BaseURL:   server.URL,
		APIKey:    testAPIKey,
		Model:     "gpt-4o-mini",
		Timeout:   5 * time.Second,
		MaxTokens: 1000,
	})

	resp, err := provider.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "Comment se déroulait le hadj?"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "Le hadj était organisé par l'État." {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.TokenUsage == nil || resp.TokenUsage.TotalTokens != 20 {
		t.Errorf("unexpected usage %+v", resp.TokenUsage)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("unexpected messages %+v", got.Messages)
	}
	if got.MaxTokens != 1000 || got.Temperature != 0 {
		t.Errorf("unexpected generation params %+v", got)
	}
}

func TestProviderChatStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer server.Close()

	provider := NewProviderWithConfig(&Config{BaseURL: server.URL, APIKey: "bad", Timeout: 5 * time.Second})
	_, err := provider.Generate(context.Background(), "q", "")

	var se *llm.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", se.StatusCode)
	}
}

func TestProviderChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	provider := NewProviderWithConfig(&Config{BaseURL: server.URL, APIKey: testAPIKey, Timeout: 5 * time.Second})
	if _, err := provider.Generate(context.Background(), "q", "s"); err == nil {
		t.Error("expected error for empty choices")
	}
}
