// Package retry provides retry, rate limit and circuit breaker options for LLM calls.
package retry

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/kart-io/iwac-chat/pkg/llm/resilience"
	"github.com/kart-io/iwac-chat/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options LLM 调用的韧性配置。
type Options struct {
	// MaxAttempts 最大尝试次数（包括首次调用）。
	MaxAttempts int `json:"max-attempts" mapstructure:"max-attempts"`
	// InitialDelay 首次重试前的等待时间。
	InitialDelay time.Duration `json:"initial-delay" mapstructure:"initial-delay"`
	// MaxDelay 单次等待上限。
	MaxDelay time.Duration `json:"max-delay" mapstructure:"max-delay"`
	// Multiplier 指数退避倍数。
	Multiplier float64 `json:"multiplier" mapstructure:"multiplier"`

	// RateLimit 每秒允许的 LLM 请求数，0 表示不限流。
	RateLimit float64 `json:"rate-limit" mapstructure:"rate-limit"`
	// RateBurst 限流突发量。
	RateBurst int `json:"rate-burst" mapstructure:"rate-burst"`

	// BreakerMaxFailures 触发熔断的连续瞬时失败次数。
	BreakerMaxFailures int `json:"breaker-max-failures" mapstructure:"breaker-max-failures"`
	// BreakerTimeout 熔断打开后进入半开前的等待时间。
	BreakerTimeout time.Duration `json:"breaker-timeout" mapstructure:"breaker-timeout"`
}

// NewOptions 创建默认韧性配置。
func NewOptions() *Options {
	return &Options{
		MaxAttempts:        3,
		InitialDelay:       500 * time.Millisecond,
		MaxDelay:           10 * time.Second,
		Multiplier:         2,
		RateBurst:          1,
		BreakerMaxFailures: 5,
		BreakerTimeout:     60 * time.Second,
	}
}

// AddFlags adds flags for retry options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "retry."
	fs.IntVar(&o.MaxAttempts, p+"max-attempts", o.MaxAttempts, "Maximum LLM call attempts, first call included.")
	fs.DurationVar(&o.InitialDelay, p+"initial-delay", o.InitialDelay, "Delay before the first retry.")
	fs.DurationVar(&o.MaxDelay, p+"max-delay", o.MaxDelay, "Upper bound of a single backoff delay.")
	fs.Float64Var(&o.Multiplier, p+"multiplier", o.Multiplier, "Exponential backoff multiplier.")
	fs.Float64Var(&o.RateLimit, p+"rate-limit", o.RateLimit, "Client side LLM requests per second (0 disables).")
	fs.IntVar(&o.RateBurst, p+"rate-burst", o.RateBurst, "Client side rate limit burst.")
	fs.IntVar(&o.BreakerMaxFailures, p+"breaker-max-failures", o.BreakerMaxFailures, "Consecutive transient failures that open the circuit breaker.")
	fs.DurationVar(&o.BreakerTimeout, p+"breaker-timeout", o.BreakerTimeout, "Time the circuit breaker stays open.")
}

// Validate validates the retry options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max-attempts must be at least 1"))
	}
	if o.InitialDelay < 0 {
		errs = append(errs, fmt.Errorf("retry.initial-delay must not be negative"))
	}
	if o.MaxDelay < o.InitialDelay {
		errs = append(errs, fmt.Errorf("retry.max-delay must not be lower than retry.initial-delay"))
	}
	if o.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("retry.multiplier must be >= 1"))
	}
	if o.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("retry.rate-limit must not be negative"))
	}
	if o.BreakerMaxFailures < 1 {
		errs = append(errs, fmt.Errorf("retry.breaker-max-failures must be at least 1"))
	}
	return errs
}

// Complete completes the retry options with defaults.
func (o *Options) Complete() error {
	if o.RateBurst < 1 {
		o.RateBurst = 1
	}
	if o.BreakerTimeout <= 0 {
		o.BreakerTimeout = 60 * time.Second
	}
	return nil
}

// RetryConfig 转换为重试策略。
func (o *Options) RetryConfig() *resilience.RetryConfig {
	return &resilience.RetryConfig{
		MaxAttempts:     o.MaxAttempts,
		InitialDelay:    o.InitialDelay,
		MaxDelay:        o.MaxDelay,
		Multiplier:      o.Multiplier,
		RetryableErrors: resilience.IsRetryableError,
	}
}

// CircuitBreakerConfig 转换为熔断器配置。
func (o *Options) CircuitBreakerConfig() *resilience.CircuitBreakerConfig {
	return &resilience.CircuitBreakerConfig{
		MaxFailures:      o.BreakerMaxFailures,
		Timeout:          o.BreakerTimeout,
		HalfOpenMaxCalls: 1,
	}
}

// Limiter 创建客户端限流器，未启用时返回 nil。
func (o *Options) Limiter() *rate.Limiter {
	return resilience.NewLimiter(o.RateLimit, o.RateBurst)
}
