// Package llm 提供统一的 Chat 供应商抽象层。
// 供应商在各自包的 init() 中按名称注册，调用方通过 NewChatProvider 创建实例。
package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kart-io/iwac-chat/pkg/utils/httpclient"
)

// ChatProvider 定义 Chat 供应商接口。
type ChatProvider interface {
	// Chat 进行多轮对话，messages 中可包含 system 消息。
	Chat(ctx context.Context, messages []Message) (*GenerateResponse, error)

	// Generate 根据提示生成文本（单轮）。
	Generate(ctx context.Context, prompt string, systemPrompt string) (*GenerateResponse, error)

	// Name 返回供应商名称。
	Name() string
}

// Message 表示对话中的一条消息。
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role 定义消息角色。
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// GenerateResponse 是一次生成调用的结果。
type GenerateResponse struct {
	Content    string      `json:"content"`
	Model      string      `json:"model,omitempty"`
	TokenUsage *TokenUsage `json:"token_usage,omitempty"`
}

// TokenUsage 记录供应商上报的 token 用量。
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StatusError 是供应商返回的 HTTP 错误。
type StatusError = httpclient.StatusError

// SplitSystem 拆分出 system 消息（多条合并）与其余对话消息。
func SplitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

// PromptMessages 构造单轮调用的消息列表。
func PromptMessages(prompt, systemPrompt string) []Message {
	messages := make([]Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})
	}
	return append(messages, Message{Role: RoleUser, Content: prompt})
}

// ChatProviderFactory Chat 供应商工厂函数类型。
type ChatProviderFactory func(config map[string]any) (ChatProvider, error)

var registry = &providerRegistry{
	chatProviders: make(map[string]ChatProviderFactory),
}

type providerRegistry struct {
	mu            sync.RWMutex
	chatProviders map[string]ChatProviderFactory
}

// RegisterChatProvider 注册 Chat 供应商工厂。
func RegisterChatProvider(name string, factory ChatProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.chatProviders[name] = factory
}

// NewChatProvider 根据名称创建 Chat 供应商实例。
func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	registry.mu.RLock()
	factory, ok := registry.chatProviders[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown chat provider: %s", name)
	}
	return factory(config)
}

// ListProviders 按名称排序列出所有已注册的供应商。
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.chatProviders))
	for name := range registry.chatProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// 供应商配置 map 的通用键。
const (
	ConfigBaseURL     = "base_url"
	ConfigAPIKey      = "api_key"
	ConfigModel       = "model"
	ConfigTimeout     = "timeout"
	ConfigTemperature = "temperature"
	ConfigMaxTokens   = "max_tokens"
)

// ConfigString 读取非空字符串配置项。
func ConfigString(config map[string]any, key string) (string, bool) {
	v, ok := config[key].(string)
	return v, ok && v != ""
}

// ConfigDuration 读取正的时长配置项，兼容 "30s" 形式的字符串。
func ConfigDuration(config map[string]any, key string) (time.Duration, bool) {
	switch v := config[key].(type) {
	case time.Duration:
		return v, v > 0
	case string:
		d, err := time.ParseDuration(v)
		return d, err == nil && d > 0
	}
	return 0, false
}

// ConfigFloat 读取浮点配置项。
func ConfigFloat(config map[string]any, key string) (float64, bool) {
	switch v := config[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// ConfigInt 读取正整数配置项。
func ConfigInt(config map[string]any, key string) (int, bool) {
	switch v := config[key].(type) {
	case int:
		return v, v > 0
	case int64:
		return int(v), v > 0
	case float64:
		return int(v), v > 0
	}
	return 0, false
}
