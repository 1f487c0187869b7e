// Package anthropic 提供 Anthropic Messages API 的 Chat 供应商实现。
//
//	import _ "github.com/kart-io/iwac-chat/pkg/llm/anthropic"
//
//	provider, err := llm.NewChatProvider("anthropic", map[string]any{
//	    "api_key": os.Getenv("ANTHROPIC_API_KEY"),
//	})
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/iwac-chat/pkg/llm"
	"github.com/kart-io/iwac-chat/pkg/utils/httpclient"
)

// ProviderName 是 Anthropic 供应商的名称标识符。
const ProviderName = "anthropic"

// APIVersion 是 anthropic-version 请求头的取值。
const APIVersion = "2023-06-01"

func init() {
	llm.RegisterChatProvider(ProviderName, NewProvider)
}

// Config Anthropic 供应商配置。
type Config struct {
	// BaseURL API 基础地址。
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// APIKey API 密钥，通过 x-api-key 头发送。
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// Model 用于对话的模型。
	Model string `json:"model" mapstructure:"model"`

	// Timeout 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// Temperature 采样温度。
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// MaxTokens 最大生成 token 数，Messages API 要求必填。
	MaxTokens int `json:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "https://api.anthropic.com/v1",
		Model:     "claude-3-5-sonnet-20240620",
		Timeout:   120 * time.Second,
		MaxTokens: 1000,
	}
}

// Provider Anthropic 供应商实现。
type Provider struct {
	config *Config
	client *httpclient.Client
}

// NewProvider 从配置 map 创建 Anthropic 供应商。
func NewProvider(configMap map[string]any) (llm.ChatProvider, error) {
	cfg := DefaultConfig()

	if v, ok := llm.ConfigString(configMap, llm.ConfigBaseURL); ok {
		cfg.BaseURL = v
	}
	if v, ok := llm.ConfigString(configMap, llm.ConfigAPIKey); ok {
		cfg.APIKey = v
	}
	if v, ok := llm.ConfigString(configMap, llm.ConfigModel); ok {
		cfg.Model = v
	}
	if v, ok := llm.ConfigDuration(configMap, llm.ConfigTimeout); ok {
		cfg.Timeout = v
	}
	if v, ok := llm.ConfigFloat(configMap, llm.ConfigTemperature); ok {
		cfg.Temperature = v
	}
	if v, ok := llm.ConfigInt(configMap, llm.ConfigMaxTokens); ok {
		cfg.MaxTokens = v
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: api_key 是必需的")
	}

	return NewProviderWithConfig(cfg), nil
}

// NewProviderWithConfig 使用结构化配置创建 Anthropic 供应商。
func NewProviderWithConfig(cfg *Config) *Provider {
	return &Provider{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
	}
}

// Name 返回供应商名称。
func (p *Provider) Name() string {
	return ProviderName
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagesResponse struct {
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Chat 进行多轮对话。system 消息放入顶层 system 字段。
func (p *Provider) Chat(ctx context.Context, messages []llm.Message) (*llm.GenerateResponse, error) {
	system, rest := llm.SplitSystem(messages)
	if len(rest) == 0 {
		return nil, fmt.Errorf("anthropic: 至少需要一条非 system 消息")
	}

	msgs := make([]message, len(rest))
	for i, m := range rest {
		msgs[i] = message{Role: string(m.Role), Content: m.Content}
	}

	maxTokens := p.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultConfig().MaxTokens
	}

	reqBody := messagesRequest{
		Model:       p.config.Model,
		MaxTokens:   maxTokens,
		System:      system,
		Messages:    msgs,
		Temperature: p.config.Temperature,
	}
	headers := map[string]string{
		"x-api-key":         p.config.APIKey,
		"anthropic-version": APIVersion,
	}

	var resp messagesResponse
	if err := p.client.PostJSON(ctx, p.config.BaseURL+"/messages", headers, reqBody, &resp); err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("anthropic: 未返回文本内容 (stop_reason=%s)", resp.StopReason)
	}

	return &llm.GenerateResponse{
		Content: sb.String(),
		Model:   resp.Model,
		TokenUsage: &llm.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

// Generate 根据提示生成文本。
func (p *Provider) Generate(ctx context.Context, prompt string, systemPrompt string) (*llm.GenerateResponse, error) {
	return p.Chat(ctx, llm.PromptMessages(prompt, systemPrompt))
}
