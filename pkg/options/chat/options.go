// Package chat provides the retrieval and answering options of the chat pipeline.
package chat

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/iwac-chat/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains chat pipeline configuration.
type Options struct {
	// TopK 检索返回的文档数量。
	TopK int `json:"top-k" mapstructure:"top-k"`

	// TokenBudget 上下文块的 token 上限。
	TokenBudget int `json:"token-budget" mapstructure:"token-budget"`

	// MaxExcerptTokens 单篇文档正文摘录的 token 上限，0 表示不限。
	MaxExcerptTokens int `json:"max-excerpt-tokens" mapstructure:"max-excerpt-tokens"`

	// MaxKeywords 关键词提取的最大数量。
	MaxKeywords int `json:"max-keywords" mapstructure:"max-keywords"`

	// MaxHistoryTurns 传给模型的历史轮数上限，0 表示不限。
	MaxHistoryTurns int `json:"max-history-turns" mapstructure:"max-history-turns"`

	// SystemPrompt 回答生成的系统提示词，为空时使用内置提示词。
	SystemPrompt string `json:"system-prompt" mapstructure:"system-prompt"`

	// NoInformationMessage 语料为空或无相关文档时的降级回答，为空时使用内置文案。
	NoInformationMessage string `json:"no-information-message" mapstructure:"no-information-message"`

	// UnavailableMessage LLM 不可用时的降级回答，为空时使用内置文案。
	UnavailableMessage string `json:"unavailable-message" mapstructure:"unavailable-message"`

	// RequestTimeout 单次问答的超时时间。
	RequestTimeout time.Duration `json:"request-timeout" mapstructure:"request-timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		TopK:             5,
		TokenBudget:      3000,
		MaxExcerptTokens: 500,
		MaxKeywords:      8,
		MaxHistoryTurns:  10,
		RequestTimeout:   60 * time.Second,
	}
}

// AddFlags adds flags for chat options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "chat."
	fs.IntVar(&o.TopK, p+"top-k", o.TopK, "Number of documents returned by retrieval.")
	fs.IntVar(&o.TokenBudget, p+"token-budget", o.TokenBudget, "Token budget of the assembled context.")
	fs.IntVar(&o.MaxExcerptTokens, p+"max-excerpt-tokens", o.MaxExcerptTokens, "Token cap of a single document excerpt (0 = unlimited).")
	fs.IntVar(&o.MaxKeywords, p+"max-keywords", o.MaxKeywords, "Maximum number of extracted keywords.")
	fs.IntVar(&o.MaxHistoryTurns, p+"max-history-turns", o.MaxHistoryTurns, "Maximum conversation turns sent to the model (0 = all).")
	fs.StringVar(&o.SystemPrompt, p+"system-prompt", o.SystemPrompt, "System prompt for answer generation.")
	fs.StringVar(&o.NoInformationMessage, p+"no-information-message", o.NoInformationMessage, "Answer returned when no document is available.")
	fs.StringVar(&o.UnavailableMessage, p+"unavailable-message", o.UnavailableMessage, "Answer returned when the model cannot be reached.")
	fs.DurationVar(&o.RequestTimeout, p+"request-timeout", o.RequestTimeout, "Timeout of a single chat request.")
}

// Validate validates the chat options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("chat.top-k must be positive"))
	}
	if o.TokenBudget <= 0 {
		errs = append(errs, fmt.Errorf("chat.token-budget must be positive"))
	}
	if o.MaxExcerptTokens < 0 {
		errs = append(errs, fmt.Errorf("chat.max-excerpt-tokens must not be negative"))
	}
	if o.MaxKeywords <= 0 {
		errs = append(errs, fmt.Errorf("chat.max-keywords must be positive"))
	}
	if o.MaxHistoryTurns < 0 {
		errs = append(errs, fmt.Errorf("chat.max-history-turns must not be negative"))
	}
	if o.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("chat.request-timeout must be positive"))
	}
	return errs
}

// Complete completes the chat options with defaults.
func (o *Options) Complete() error {
	return nil
}
