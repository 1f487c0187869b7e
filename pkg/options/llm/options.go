// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/iwac-chat/pkg/llm"
	"github.com/kart-io/iwac-chat/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// apiKeyEnv 各供应商的 API 密钥环境变量。
var apiKeyEnv = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
}

// ProviderOptions 定义 LLM 供应商配置。
type ProviderOptions struct {
	// Provider 供应商名称（anthropic, openai, ollama）。
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL API 基础地址，为空时使用供应商默认地址。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey API 密钥，为空时从供应商对应的环境变量读取。
	APIKey string `json:"-" mapstructure:"api-key"`

	// Model 使用的模型名称，为空时使用供应商默认模型。
	Model string `json:"model" mapstructure:"model"`

	// Timeout 单次请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// Temperature 采样温度。
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// MaxTokens 最大输出 token 数。
	MaxTokens int `json:"max-tokens" mapstructure:"max-tokens"`

	// Organization 组织 ID（OpenAI 可选）。
	Organization string `json:"organization" mapstructure:"organization"`
}

// NewProviderOptions 创建默认 LLM 供应商配置。
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:    "anthropic",
		Timeout:     120 * time.Second,
		Temperature: 0,
		MaxTokens:   1000,
	}
}

// ToConfigMap 转换为配置 map，用于供应商工厂。
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		llm.ConfigBaseURL:     o.BaseURL,
		llm.ConfigAPIKey:      o.APIKey,
		llm.ConfigModel:       o.Model,
		llm.ConfigTimeout:     o.Timeout,
		llm.ConfigTemperature: o.Temperature,
		llm.ConfigMaxTokens:   o.MaxTokens,
		"organization":        o.Organization,
	}
}

// NewChatProvider 按配置创建已注册的 Chat Provider。
func (o *ProviderOptions) NewChatProvider() (llm.ChatProvider, error) {
	return llm.NewChatProvider(o.Provider, o.ToConfigMap())
}

// AddFlags adds flags for LLM provider options to the specified FlagSet.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "llm."
	fs.StringVar(&o.Provider, p+"provider", o.Provider, "LLM provider (anthropic, openai, ollama).")
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "LLM API base URL. Empty uses the provider default.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "LLM API key (prefer ANTHROPIC_API_KEY / OPENAI_API_KEY).")
	fs.StringVar(&o.Model, p+"model", o.Model, "LLM model name. Empty uses the provider default.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "LLM request timeout.")
	fs.Float64Var(&o.Temperature, p+"temperature", o.Temperature, "Sampling temperature.")
	fs.IntVar(&o.MaxTokens, p+"max-tokens", o.MaxTokens, "Maximum number of output tokens.")
	fs.StringVar(&o.Organization, p+"organization", o.Organization, "LLM organization ID (optional).")
}

// Complete 从环境变量补全 API 密钥。
func (o *ProviderOptions) Complete() error {
	if o.APIKey == "" {
		if env, ok := apiKeyEnv[o.Provider]; ok {
			o.APIKey = os.Getenv(env)
		}
	}
	return nil
}

// Validate validates the LLM provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("llm.provider is required"))
	}
	if env, ok := apiKeyEnv[o.Provider]; ok && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("llm.api-key is required for %s provider (or set %s)", o.Provider, env))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm.timeout must be positive"))
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be between 0 and 2"))
	}
	if o.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max-tokens must be positive"))
	}
	return errs
}
